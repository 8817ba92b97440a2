package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "minilux.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestLoad tests YAML parsing and relative path resolution
func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
modules:
  - ./lib
  - /opt/minilux/modules
repl:
  history: .history
  prompt: "mx> "
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.BaseDir == "" {
		t.Error("expected BaseDir to be set")
	}
	if len(cfg.Modules) != 2 {
		t.Fatalf("expected 2 modules, got %d", len(cfg.Modules))
	}
	if cfg.Modules[0] != filepath.Join(cfg.BaseDir, "lib") {
		t.Errorf("relative module not resolved: %q", cfg.Modules[0])
	}
	if cfg.Modules[1] != "/opt/minilux/modules" {
		t.Errorf("absolute module changed: %q", cfg.Modules[1])
	}
	if cfg.REPL.History != filepath.Join(cfg.BaseDir, ".history") {
		t.Errorf("relative history not resolved: %q", cfg.REPL.History)
	}
	if cfg.REPL.Prompt != "mx> " {
		t.Errorf("wrong prompt: %q", cfg.REPL.Prompt)
	}
}

// TestLoadMissingFile tests the error path
func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

// TestLoadInvalidYAML tests the parse error path
func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "modules: [unclosed")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

// TestInterpolateEnv tests ${VAR} substitution
func TestInterpolateEnv(t *testing.T) {
	t.Setenv("MINILUX_TEST_DIR", "/data/lux")

	dir := t.TempDir()
	path := writeConfig(t, dir, "modules:\n  - ${MINILUX_TEST_DIR}/lib\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Modules[0] != "/data/lux/lib" {
		t.Errorf("expected interpolated path, got %q", cfg.Modules[0])
	}
}

// TestInterpolateEnvUnset tests that unset variables become empty
func TestInterpolateEnvUnset(t *testing.T) {
	got := interpolateEnv("before ${MINILUX_DEFINITELY_UNSET_VAR} after")
	if got != "before  after" {
		t.Errorf("expected empty substitution, got %q", got)
	}
}

// TestFindExplicitWins tests the search precedence
func TestFindExplicitWins(t *testing.T) {
	if got := Find("/explicit/path.yaml"); got != "/explicit/path.yaml" {
		t.Errorf("expected explicit path, got %q", got)
	}
}

// TestFindEnvVar tests the MINILUX_CONFIG fallback
func TestFindEnvVar(t *testing.T) {
	t.Setenv("MINILUX_CONFIG", "/from/env.yaml")
	if got := Find(""); got != "/from/env.yaml" {
		t.Errorf("expected env path, got %q", got)
	}
}

// TestFindNothing tests that no config anywhere returns ""
func TestFindNothing(t *testing.T) {
	t.Setenv("MINILUX_CONFIG", "")
	t.Setenv("HOME", t.TempDir())
	oldwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(oldwd) })

	if got := Find(""); got != "" {
		t.Errorf("expected empty result, got %q", got)
	}
}
