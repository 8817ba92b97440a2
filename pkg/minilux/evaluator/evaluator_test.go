package evaluator

import (
	"strings"
	"testing"

	perrors "github.com/minilux-lang/minilux/pkg/minilux/errors"
	"github.com/minilux-lang/minilux/pkg/minilux/lexer"
	"github.com/minilux-lang/minilux/pkg/minilux/parser"
)

// Helper to parse and evaluate Minilux code
func testEval(input string) Object {
	return testEvalEnv(input, NewEnvironment())
}

func testEvalEnv(input string, env *Environment) Object {
	l := lexer.New(input)
	p := parser.New(l)
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		return &Error{Err: perrors.NewSimple(perrors.ClassParse, errs[0])}
	}
	return Eval(program, env)
}

// captureLogger collects printf output for assertions
type captureLogger struct {
	out strings.Builder
}

func (l *captureLogger) Print(s string) { l.out.WriteString(s) }

func testRun(t *testing.T, input string) string {
	t.Helper()
	logger := &captureLogger{}
	env := NewEnvironment()
	env.Logger = logger
	result := testEvalEnv(input, env)
	if errObj, ok := result.(*Error); ok {
		t.Fatalf("unexpected error for %q: %s", input, errObj.Err.Message)
	}
	return logger.out.String()
}

func assertInteger(t *testing.T, obj Object, expected int64, input string) {
	t.Helper()
	intObj, ok := obj.(*Integer)
	if !ok {
		t.Fatalf("expected INTEGER, got %s for input %q", obj.Type(), input)
	}
	if intObj.Value != expected {
		t.Errorf("expected %d, got %d for input %q", expected, intObj.Value, input)
	}
}

func assertString(t *testing.T, obj Object, expected string, input string) {
	t.Helper()
	strObj, ok := obj.(*String)
	if !ok {
		t.Fatalf("expected STRING, got %s for input %q", obj.Type(), input)
	}
	if strObj.Value != expected {
		t.Errorf("expected %q, got %q for input %q", expected, strObj.Value, input)
	}
}

// TestEvalIntegerExpressions tests arithmetic with coercion
func TestEvalIntegerExpressions(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"42", 42},
		{"-5", -5},
		{"1 + 2 * 3", 7},
		{"(1 + 2) * 3", 9},
		{"10 / 3", 3},
		{"10 % 3", 1},
		{"10 / 0", 0},
		{"10 % 0", 0},
		{`"12abc" + 1`, 13},
		{`"abc" + 1`, 1},
		{`" -4 " + 0`, -4},
		{`"3" * "4"`, 12},
		{"-[1, 2]", 0},
	}

	for _, tt := range tests {
		assertInteger(t, testEval(tt.input), tt.expected, tt.input)
	}
}

// TestEvalComparisons tests equality, ordering, and unordered pairs
func TestEvalComparisons(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"1 == 1", 1},
		{"1 != 1", 0},
		{`"a" == "a"`, 1},
		{`"a" == "b"`, 0},
		{`"5" == 5`, 1},
		{"2 < 3", 1},
		{"3 <= 3", 1},
		{"4 > 5", 0},
		{`"10" > "9"`, 1},
		{`"apple" < "banana"`, 1},
		{`"apple" < 5`, 0},
		{`"apple" >= 5`, 0},
		{"[1] < [2]", 0},
		{"!0", 1},
		{"!3", 0},
		{`!""`, 1},
		{"1 && 2", 1},
		{"1 && 0", 0},
		{"0 || 3", 1},
		{"0 || 0", 0},
	}

	for _, tt := range tests {
		assertInteger(t, testEval(tt.input), tt.expected, tt.input)
	}
}

// TestUnassignedVariableIsNil tests the unbound-read rule
func TestUnassignedVariableIsNil(t *testing.T) {
	result := testEval("neverSet")
	if result != NULL {
		t.Errorf("expected NULL, got %s", result.Type())
	}
}

// TestAssignmentCopiesArrays tests that bindings never alias
func TestAssignmentCopiesArrays(t *testing.T) {
	env := NewEnvironment()
	result := testEvalEnv(`
a = [1, 2, 3]
b = a
b[0] = 99
a[0]`, env)
	assertInteger(t, result, 1, "a[0] after mutating b")

	result = testEvalEnv("b[0]", env)
	assertInteger(t, result, 99, "b[0]")
}

// TestIndexing tests array and string indexing edge cases
func TestIndexing(t *testing.T) {
	intTests := []struct {
		input    string
		expected int64
	}{
		{"a = [10, 20, 30]\na[1]", 20},
		{`a = [1, 2]
a["1"]`, 2},
	}
	for _, tt := range intTests {
		assertInteger(t, testEval(tt.input), tt.expected, tt.input)
	}

	assertString(t, testEval(`s = "héllo"
s[1]`), "é", "string rune indexing")

	nilTests := []string{
		"a = [1]\na[5]",
		"a = [1]\na[-1]",
		`s = "ab"
s[9]`,
		"n = 5\nn[0]",
	}
	for _, input := range nilTests {
		if result := testEval(input); result != NULL {
			t.Errorf("expected NULL for %q, got %s", input, result.Type())
		}
	}
}

// TestIndexAssignOutOfBounds tests the silent no-op rule
func TestIndexAssignOutOfBounds(t *testing.T) {
	env := NewEnvironment()
	testEvalEnv("a = [1, 2]\na[9] = 5", env)
	result := testEvalEnv("len(a)", env)
	assertInteger(t, result, 2, "len after out-of-bounds assign")
}

// TestIfElseifElse tests branch selection
func TestIfElseifElse(t *testing.T) {
	input := `x = %d
if x > 10
r = "big"
elseif x > 5
r = "medium"
else
r = "small"
end
r`

	tests := []struct {
		x        string
		expected string
	}{
		{"20", "big"},
		{"7", "medium"},
		{"1", "small"},
	}

	for _, tt := range tests {
		src := strings.Replace(input, "%d", tt.x, 1)
		assertString(t, testEval(src), tt.expected, src)
	}
}

// TestWhileLoop tests loop execution and condition re-evaluation
func TestWhileLoop(t *testing.T) {
	input := `i = 0
total = 0
while i < 5
inc total, i
inc i
end
total`
	assertInteger(t, testEval(input), 10, input)
}

// TestWhileFalseNeverRuns tests the zero-iteration case
func TestWhileFalseNeverRuns(t *testing.T) {
	input := `x = 1
while 0
x = 2
end
x`
	assertInteger(t, testEval(input), 1, input)
}

// TestIncDec tests increment/decrement with defaults and unbound names
func TestIncDec(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"x = 5\ninc x\nx", 6},
		{"x = 5\ninc x, 10\nx", 15},
		{"x = 5\ndec x\nx", 4},
		{"x = 5\ndec x, 3\nx", 2},
		{"inc fresh\nfresh", 1},
		{`x = "7"
inc x
x`, 8},
	}

	for _, tt := range tests {
		assertInteger(t, testEval(tt.input), tt.expected, tt.input)
	}
}

// TestArrayMutators tests push/pop/shift/unshift including edge cases
func TestArrayMutators(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"a = [1, 2]\npush a, 3\na[2]", 3},
		{"a = [1, 2]\npush a, 3\nlen(a)", 3},
		{"x = 5\npush x, 9\nx[0]", 9},
		{"x = 5\npush x, 9\nlen(x)", 1},
		{"a = [1, 2, 3]\npop a\nlen(a)", 2},
		{"a = []\npop a\nlen(a)", 0},
		{"a = [1, 2, 3]\nshift a\na[0]", 2},
		{"a = []\nshift a\nlen(a)", 0},
		{"a = [2, 3]\nunshift a, 1\na[0]", 1},
		{"x = 0\nunshift x, 7\nx[0]", 7},
	}

	for _, tt := range tests {
		assertInteger(t, testEval(tt.input), tt.expected, tt.input)
	}
}

// TestPushThenPopRestoresContents tests that push followed by pop leaves
// every original element in place, not just the original length
func TestPushThenPopRestoresContents(t *testing.T) {
	env := NewEnvironment()
	testEvalEnv(`
a = [10, 20, 30]
x = [7]
push a, x
pop a`, env)

	assertInteger(t, testEvalEnv("len(a)", env), 3, "len(a) after push/pop")
	assertInteger(t, testEvalEnv("a[0]", env), 10, "a[0] after push/pop")
	assertInteger(t, testEvalEnv("a[1]", env), 20, "a[1] after push/pop")
	assertInteger(t, testEvalEnv("a[2]", env), 30, "a[2] after push/pop")
}

// TestPushedArrayDoesNotAlias tests that a pushed array element is a copy:
// mutating the source variable afterwards must not change the destination
func TestPushedArrayDoesNotAlias(t *testing.T) {
	env := NewEnvironment()
	testEvalEnv(`
x = [1]
push y, x
push x, 2`, env)
	assertInteger(t, testEvalEnv("len(y[0])", env), 1, "len(y[0]) after mutating x")
	assertInteger(t, testEvalEnv("len(x)", env), 2, "len(x)")
}

// TestUnshiftedArrayDoesNotAlias tests the same copy rule for unshift
func TestUnshiftedArrayDoesNotAlias(t *testing.T) {
	env := NewEnvironment()
	testEvalEnv(`
x = [1]
y = []
unshift y, x
push x, 2
push x, 3`, env)
	assertInteger(t, testEvalEnv("len(y[0])", env), 1, "len(y[0]) after mutating x")
}

// TestFunctionCalls tests definition, calling, and return values
func TestFunctionCalls(t *testing.T) {
	input := `func add(a, b)
return a + b
end
add(3, 4)`
	assertInteger(t, testEval(input), 7, input)
}

// TestFunctionShadowRestore tests the save/shadow/restore protocol
func TestFunctionShadowRestore(t *testing.T) {
	env := NewEnvironment()
	testEvalEnv(`
x = "caller"
func f(x)
x = "callee"
end
f(1)`, env)
	assertString(t, testEvalEnv("x", env), "caller", "x after call")
}

// TestFunctionRestoresUnsetParams tests that a parameter unbound before the
// call is unbound again after it
func TestFunctionRestoresUnsetParams(t *testing.T) {
	env := NewEnvironment()
	testEvalEnv(`func f(p)
p = 42
end
f(1)`, env)
	if result := testEvalEnv("p", env); result != NULL {
		t.Errorf("expected p unbound after call, got %s", result.Type())
	}
}

// TestFunctionNonParamGlobals tests that non-parameter assignments persist
// (flat scope, no locals)
func TestFunctionNonParamGlobals(t *testing.T) {
	input := `func f()
g = 99
end
f()
g`
	assertInteger(t, testEval(input), 99, input)
}

// TestFunctionMissingAndExtraArgs tests nil-fill and ignoring extras
func TestFunctionMissingAndExtraArgs(t *testing.T) {
	input := `func f(a, b)
if b == ""
return "b-nil"
end
return "b-set"
end
f(1)`
	// missing arg binds nil; nil and "" both coerce to 0, so they compare equal
	result := testEval(input)
	assertString(t, result, "b-nil", input)

	input2 := `func first(a)
return a
end
first(1, 2, 3)`
	assertInteger(t, testEval(input2), 1, input2)
}

// TestFunctionArgsAreCopied tests value-copy binding of arrays
func TestFunctionArgsAreCopied(t *testing.T) {
	input := `a = [1, 2]
func mutate(v)
v[0] = 99
return v[0]
end
mutate(a)
a[0]`
	assertInteger(t, testEval(input), 1, input)
}

// TestRecursion tests call-stack recursion through the flat scope
func TestRecursion(t *testing.T) {
	input := `func fact(n)
if n <= 1
return 1
end
return n * fact(n - 1)
end
fact(6)`
	assertInteger(t, testEval(input), 720, input)
}

// TestTopLevelReturnStopsSequence tests that statements after a top-level
// return never run
func TestTopLevelReturnStopsSequence(t *testing.T) {
	env := NewEnvironment()
	testEvalEnv(`x = 1
return
x = 2`, env)
	assertInteger(t, testEvalEnv("x", env), 1, "x after top-level return")
}

// TestUnknownFunctionWarns tests the soft-failure path with a fuzzy hint
func TestUnknownFunctionWarns(t *testing.T) {
	var diag strings.Builder
	env := NewEnvironment()
	env.Diag = &diag

	result := testEvalEnv(`func greet(n)
return n
end
gret(1)`, env)

	if result != NULL {
		t.Errorf("expected NULL from unknown function call, got %s", result.Type())
	}
	if !strings.Contains(diag.String(), "gret") {
		t.Errorf("expected warning naming 'gret', got %q", diag.String())
	}
	if !strings.Contains(diag.String(), "greet") {
		t.Errorf("expected fuzzy hint suggesting 'greet', got %q", diag.String())
	}
}

// TestBuiltins tests the intercepted builtin functions
func TestBuiltins(t *testing.T) {
	intTests := []struct {
		input    string
		expected int64
	}{
		{`len("hello")`, 5},
		{`len("héllo")`, 5},
		{`strlen("abc")`, 3},
		{"len([1, 2, 3])", 3},
		{"len(5)", 0},
		{"len(nothing)", 0},
		{`number("42")`, 42},
		{`number("42abc")`, 42},
		{`number("abc")`, 0},
		{"number(7)", 7},
		{"number([1])", 0},
	}
	for _, tt := range intTests {
		assertInteger(t, testEval(tt.input), tt.expected, tt.input)
	}

	strTests := []struct {
		input    string
		expected string
	}{
		{`lower("MiXeD")`, "mixed"},
		{`upper("MiXeD")`, "MIXED"},
		{"lower(42)", "42"},
	}
	for _, tt := range strTests {
		assertString(t, testEval(tt.input), tt.expected, tt.input)
	}
}

// TestBuiltinsCannotBeShadowed tests interception before user functions
func TestBuiltinsCannotBeShadowed(t *testing.T) {
	input := `func len(x)
return 999
end
len("ab")`
	assertInteger(t, testEval(input), 2, input)
}

// TestShellBuiltin tests command execution and newline trimming
func TestShellBuiltin(t *testing.T) {
	assertString(t, testEval(`shell("echo hello")`), "hello", "echo")
	assertString(t, testEval(`shell("printf abc")`), "abc", "no trailing newline")
}

// TestMatchOperator tests =~ with patterns, strings, and flags
func TestMatchOperator(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{`"cat" =~ /ca+t/`, 1},
		{`"dog" =~ /ca+t/`, 0},
		{`"CAT" =~ /cat/i`, 1},
		{`"CAT" =~ /cat/`, 0},
		{`"cat" =~ "c.t"`, 1},
		{`42 =~ /4\d/`, 1},
	}

	for _, tt := range tests {
		assertInteger(t, testEval(tt.input), tt.expected, tt.input)
	}
}

// TestMatchBadPatternIsHardError tests compile failure propagation
func TestMatchBadPatternIsHardError(t *testing.T) {
	result := testEval(`"x" =~ "("`)
	errObj, ok := result.(*Error)
	if !ok {
		t.Fatalf("expected Error, got %s", result.Type())
	}
	if errObj.Err.Class != perrors.ClassFormat {
		t.Errorf("expected format error class, got %s", errObj.Err.Class)
	}
}

// TestSubstitution tests s/// with and without the g flag
func TestSubstitution(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"x = \"cat cat\"\ny = s/cat/dog/(x)\ny", "dog cat"},
		{"x = \"cat cat\"\ny = s/cat/dog/g(x)\ny", "dog dog"},
		{"x = \"cat cat\"\ny = s/CAT/dog/i(x)\ny", "dog cat"},
		{"x = \"cat\"\ny = s/(c)(a)t/$2$1/(x)\ny", "ac"},
		{"x = \"abc\"\ny = s/missing/y/(x)\ny", "abc"},
		{"y = s/4/b/(42)\ny", "b2"},
	}

	for _, tt := range tests {
		assertString(t, testEval(tt.input), tt.expected, tt.input)
	}
}

// TestPrintf tests rendering, escape substitution, and the newline guarantee
func TestPrintf(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`printf "hello"`, "hello\n"},
		{`printf "a\tb\n"`, "a\tb\n"},
		{`x = 8
printf "x is ", x`, "x is 8\n"},
		{`printf [1, 2, 3]`, "[Array(3)]\n"},
		{`printf /ab/`, "/ab/\n"},
		{`printf "", unbound`, "\n"},
		{`printf 1 + 2`, "3\n"},
	}

	for _, tt := range tests {
		got := testRun(t, tt.input)
		if got != tt.expected {
			t.Errorf("input %q: expected %q, got %q", tt.input, tt.expected, got)
		}
	}
}

// TestReadStatement tests line reads with terminator stripping and EOF
func TestReadStatement(t *testing.T) {
	env := NewEnvironment()
	env.Input = strings.NewReader("first\r\nsecond\nrest")

	testEvalEnv("read a\nread b\nread c", env)

	assertString(t, testEvalEnv("a", env), "first", "read a")
	assertString(t, testEvalEnv("b", env), "second", "read b")
	assertString(t, testEvalEnv("c", env), "rest", "read at EOF without newline")

	testEvalEnv("read d", env)
	assertString(t, testEvalEnv("d", env), "", "read past EOF")
}

// TestDivByZeroDefined tests the defined fallback instead of a panic
func TestDivByZeroDefined(t *testing.T) {
	env := NewEnvironment()
	result := testEvalEnv(`x = 10 / (5 - 5)
y = 10 % (5 - 5)
x + y`, env)
	assertInteger(t, result, 0, "div and mod by zero")
}
