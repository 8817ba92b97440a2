package errors

import (
	"strings"
	"testing"
)

// TestCatalogRendering tests template rendering from the catalog
func TestCatalogRendering(t *testing.T) {
	err := New("FMT-0001", map[string]any{
		"Pattern": "ca(t",
		"GoError": "missing closing )",
	})
	if err.Class != ClassFormat {
		t.Errorf("expected format class, got %s", err.Class)
	}
	if err.Code != "FMT-0001" {
		t.Errorf("expected code FMT-0001, got %s", err.Code)
	}
	if !strings.Contains(err.Message, "ca(t") {
		t.Errorf("expected pattern in message, got %q", err.Message)
	}
	if !strings.Contains(err.Message, "missing closing )") {
		t.Errorf("expected cause in message, got %q", err.Message)
	}
}

// TestUnknownCodeFallsBack tests that unknown codes still produce an error
func TestUnknownCodeFallsBack(t *testing.T) {
	err := New("NOPE-9999", map[string]any{"message": "custom text"})
	if err.Message != "custom text" {
		t.Errorf("expected fallback message, got %q", err.Message)
	}
}

// TestPositionFormatting tests line/column in String output
func TestPositionFormatting(t *testing.T) {
	err := NewWithPosition("PARSE-0002", 3, 7, map[string]any{"Token": "@"})
	s := err.String()
	if !strings.Contains(s, "line 3") || !strings.Contains(s, "column 7") {
		t.Errorf("expected position in output, got %q", s)
	}
}

// TestWithFileReturnsCopy tests that WithFile does not mutate the original
func TestWithFileReturnsCopy(t *testing.T) {
	orig := NewSimple(ClassIO, "boom")
	withFile := orig.WithFile("script.lux")
	if orig.File != "" {
		t.Errorf("original mutated: %q", orig.File)
	}
	if withFile.File != "script.lux" {
		t.Errorf("expected file set on copy, got %q", withFile.File)
	}
}

// TestPrettyStringClasses tests header selection by class
func TestPrettyStringClasses(t *testing.T) {
	parseErr := NewSimple(ClassParse, "bad syntax")
	if !strings.HasPrefix(parseErr.PrettyString(), "Parser error") {
		t.Errorf("expected parser header, got %q", parseErr.PrettyString())
	}
	runtimeErr := NewSimple(ClassNetwork, "no route")
	if !strings.HasPrefix(runtimeErr.PrettyString(), "Runtime error") {
		t.Errorf("expected runtime header, got %q", runtimeErr.PrettyString())
	}
}

// TestLevenshteinDistance tests the edit-distance primitives
func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"cat", "cat", 0},
		{"cat", "cut", 1},
		{"cat", "cats", 1},
		{"kitten", "sitting", 3},
	}

	for _, tt := range tests {
		if got := levenshteinDistance(tt.a, tt.b); got != tt.expected {
			t.Errorf("distance(%q, %q): expected %d, got %d", tt.a, tt.b, tt.expected, got)
		}
	}
}

// TestFindClosestMatch tests threshold behavior by word length
func TestFindClosestMatch(t *testing.T) {
	candidates := []string{"printf", "push", "pop", "shift"}

	tests := []struct {
		input    string
		expected string
	}{
		{"printv", "printf"}, // one substitution
		{"pusj", "push"},     // one substitution
		{"pp", "pop"},        // short word, one insertion away
		{"qqqqqqqq", ""},     // nothing close
		{"printf", ""},       // exact matches are not suggested
	}

	for _, tt := range tests {
		got := FindClosestMatch(tt.input, candidates)
		if got != tt.expected {
			t.Errorf("input %q: expected %q, got %q", tt.input, tt.expected, got)
		}
	}
}

// TestNewUnknownFunction tests the hint attachment
func TestNewUnknownFunction(t *testing.T) {
	err := NewUnknownFunction("gret", []string{"greet", "leave"})
	if !strings.Contains(err.Message, "gret") {
		t.Errorf("expected name in message, got %q", err.Message)
	}
	if len(err.Hints) != 1 || !strings.Contains(err.Hints[0], "greet") {
		t.Errorf("expected a greet hint, got %v", err.Hints)
	}

	err = NewUnknownFunction("zzz", []string{"greet"})
	if len(err.Hints) != 0 {
		t.Errorf("expected no hints for distant name, got %v", err.Hints)
	}
}
