package evaluator

import (
	"os"
	"path/filepath"
	"testing"

	perrors "github.com/minilux-lang/minilux/pkg/minilux/errors"
)

func writeScript(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

// TestIncludeRelativeToBaseDir tests resolution against the including
// file's directory
func TestIncludeRelativeToBaseDir(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "lib.lux", "answer = 42\n")

	env := NewEnvironment()
	env.PushBaseDir(dir)

	result := testEvalEnv(`include "lib.lux"
answer`, env)
	assertInteger(t, result, 42, "variable set by include")
}

// TestIncludeSharesEnvironment tests that functions defined in an included
// file are callable by the includer
func TestIncludeSharesEnvironment(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "mathlib.lux", `func double(n)
return n * 2
end`)

	env := NewEnvironment()
	env.PushBaseDir(dir)

	result := testEvalEnv(`include "mathlib.lux"
double(21)`, env)
	assertInteger(t, result, 42, "function from include")
}

// TestIncludeModulePath tests fallback to the module search paths
func TestIncludeModulePath(t *testing.T) {
	scriptDir := t.TempDir()
	moduleDir := t.TempDir()
	writeScript(t, moduleDir, "util.lux", "fromModule = 1\n")

	env := NewEnvironment()
	env.PushBaseDir(scriptDir)
	env.SetModulePaths([]string{moduleDir})

	result := testEvalEnv(`include "util.lux"
fromModule`, env)
	assertInteger(t, result, 1, "variable from module path include")
}

// TestIncludeBaseDirWinsOverModulePath tests resolution order
func TestIncludeBaseDirWinsOverModulePath(t *testing.T) {
	scriptDir := t.TempDir()
	moduleDir := t.TempDir()
	writeScript(t, scriptDir, "dup.lux", "which = \"base\"\n")
	writeScript(t, moduleDir, "dup.lux", "which = \"module\"\n")

	env := NewEnvironment()
	env.PushBaseDir(scriptDir)
	env.SetModulePaths([]string{moduleDir})

	result := testEvalEnv(`include "dup.lux"
which`, env)
	assertString(t, result, "base", "base dir should win")
}

// TestNestedIncludeBaseDir tests that a nested include resolves against the
// directory of the file doing the including
func TestNestedIncludeBaseDir(t *testing.T) {
	outer := t.TempDir()
	inner := filepath.Join(outer, "sub")
	if err := os.Mkdir(inner, 0755); err != nil {
		t.Fatal(err)
	}
	writeScript(t, outer, "a.lux", "include \"sub/b.lux\"\n")
	writeScript(t, inner, "b.lux", "include \"c.lux\"\n")
	writeScript(t, inner, "c.lux", "deep = 3\n")

	env := NewEnvironment()
	env.PushBaseDir(outer)

	result := testEvalEnv(`include "a.lux"
deep`, env)
	assertInteger(t, result, 3, "nested include")
}

// TestIncludeCycleIsHardError tests cycle detection
func TestIncludeCycleIsHardError(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "a.lux", "include \"b.lux\"\n")
	writeScript(t, dir, "b.lux", "include \"a.lux\"\n")

	env := NewEnvironment()
	env.PushBaseDir(dir)

	result := testEvalEnv(`include "a.lux"`, env)
	errObj, ok := result.(*Error)
	if !ok {
		t.Fatalf("expected Error, got %s", result.Type())
	}
	if errObj.Err.Class != perrors.ClassInclude {
		t.Errorf("expected include error class, got %s", errObj.Err.Class)
	}
}

// TestRepeatedIncludeIsAllowed tests that sequential re-inclusion of a
// finished file is not a cycle
func TestRepeatedIncludeIsAllowed(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "counted.lux", "inc count\n")

	env := NewEnvironment()
	env.PushBaseDir(dir)

	result := testEvalEnv(`include "counted.lux"
include "counted.lux"
count`, env)
	assertInteger(t, result, 2, "sequential re-include")
}

// TestIncludeMissingFileIsHardError tests the read-failure path
func TestIncludeMissingFileIsHardError(t *testing.T) {
	env := NewEnvironment()
	env.PushBaseDir(t.TempDir())

	result := testEvalEnv(`include "no-such-file.lux"`, env)
	errObj, ok := result.(*Error)
	if !ok {
		t.Fatalf("expected Error, got %s", result.Type())
	}
	if errObj.Err.Class != perrors.ClassInclude {
		t.Errorf("expected include error class, got %s", errObj.Err.Class)
	}
}

// TestIncludeParseErrorIsHardError tests that a broken included file stops
// execution
func TestIncludeParseErrorIsHardError(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "broken.lux", "if x\n")

	env := NewEnvironment()
	env.PushBaseDir(dir)

	result := testEvalEnv(`include "broken.lux"`, env)
	if _, ok := result.(*Error); !ok {
		t.Fatalf("expected Error, got %s", result.Type())
	}
}

// TestIncludeTopLevelReturnStopsFileOnly tests return isolation
func TestIncludeTopLevelReturnStopsFileOnly(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "early.lux", "a = 1\nreturn\na = 2\n")

	env := NewEnvironment()
	env.PushBaseDir(dir)

	result := testEvalEnv(`include "early.lux"
after = a + 10
after`, env)
	assertInteger(t, result, 11, "statements after include still run")
}

// TestParseModulesList tests ':' and ';' separated specs
func TestParseModulesList(t *testing.T) {
	dir1 := t.TempDir()
	dir2 := t.TempDir()

	tests := []struct {
		spec     string
		expected int
	}{
		{dir1 + ":" + dir2, 2},
		{dir1 + ";" + dir2, 2},
		{" " + dir1 + " : " + dir2 + " ", 2},
		{dir1 + "::" + dir2, 2},
		{"", 0},
		{":;:", 0},
	}

	for _, tt := range tests {
		paths := ParseModulesList(tt.spec)
		if len(paths) != tt.expected {
			t.Errorf("spec %q: expected %d paths, got %d (%v)",
				tt.spec, tt.expected, len(paths), paths)
		}
	}
}
