package minilux

import (
	"reflect"
	"strings"
	"testing"

	"github.com/minilux-lang/minilux/pkg/minilux/evaluator"
	"github.com/minilux-lang/minilux/pkg/minilux/lexer"
	"github.com/minilux-lang/minilux/pkg/minilux/parser"
)

func runWithLogger(t *testing.T, input string, logger Logger) {
	t.Helper()
	l := lexer.New(input)
	p := parser.New(l)
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	env := evaluator.NewEnvironment()
	env.Logger = logger
	if result := evaluator.Eval(program, env); result != nil {
		if errObj, ok := result.(*evaluator.Error); ok {
			t.Fatalf("runtime error: %s", errObj.Err.String())
		}
	}
}

// TestBufferedLoggerCapture tests capturing program output
func TestBufferedLoggerCapture(t *testing.T) {
	logger := NewBufferedLogger()
	runWithLogger(t, `printf "a: ", 1
printf "b: ", 2`, logger)

	want := "a: 1\nb: 2\n"
	if logger.String() != want {
		t.Errorf("expected %q, got %q", want, logger.String())
	}

	wantLines := []string{"a: 1", "b: 2"}
	if !reflect.DeepEqual(logger.Lines(), wantLines) {
		t.Errorf("expected %v, got %v", wantLines, logger.Lines())
	}
}

// TestBufferedLoggerReset tests clearing captured output
func TestBufferedLoggerReset(t *testing.T) {
	logger := NewBufferedLogger()
	logger.Print("hello\n")
	logger.Reset()

	if logger.String() != "" {
		t.Errorf("expected empty buffer after reset, got %q", logger.String())
	}
	if logger.Lines() != nil {
		t.Errorf("expected nil lines after reset, got %v", logger.Lines())
	}
}

// TestWriterLogger tests routing output to an io.Writer
func TestWriterLogger(t *testing.T) {
	var sb strings.Builder
	runWithLogger(t, `printf "hello ", "world"`, WriterLogger(&sb))

	if sb.String() != "hello world\n" {
		t.Errorf("expected %q, got %q", "hello world\n", sb.String())
	}
}

// TestNullLogger tests that output is discarded without error
func TestNullLogger(t *testing.T) {
	runWithLogger(t, `printf "discarded"`, NullLogger())
}

// TestStdoutLoggerIsDefault tests the default logger identity
func TestStdoutLoggerIsDefault(t *testing.T) {
	if StdoutLogger() != evaluator.DefaultLogger {
		t.Error("expected StdoutLogger to return the package default")
	}
}
