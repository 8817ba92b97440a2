package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the config file looked for in the working directory
const DefaultFileName = "minilux.yaml"

// Find resolves the config file path. Search order: the explicit path, the
// MINILUX_CONFIG environment variable, ./minilux.yaml, then
// ~/.config/minilux/config.yaml. Returns "" when no file exists. An
// explicit path that does not exist is returned anyway so Load can report
// the failure.
func Find(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if envPath := os.Getenv("MINILUX_CONFIG"); envPath != "" {
		return envPath
	}
	if fileExists(DefaultFileName) {
		return DefaultFileName
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidate := filepath.Join(home, ".config", "minilux", "config.yaml")
		if fileExists(candidate) {
			return candidate
		}
	}
	return ""
}

// Load reads and parses a config file. Relative module paths are resolved
// against the config file's directory. ${VAR} references in the file are
// interpolated from the environment before parsing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Defaults()
	if err := yaml.Unmarshal([]byte(interpolateEnv(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	cfg.BaseDir = filepath.Dir(abs)

	for i, mod := range cfg.Modules {
		if !filepath.IsAbs(mod) {
			cfg.Modules[i] = filepath.Join(cfg.BaseDir, mod)
		}
	}
	if cfg.REPL.History != "" && !filepath.IsAbs(cfg.REPL.History) {
		cfg.REPL.History = filepath.Join(cfg.BaseDir, cfg.REPL.History)
	}

	return cfg, nil
}

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// interpolateEnv replaces ${VAR} with the environment value. Unset
// variables become empty strings.
func interpolateEnv(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := match[2 : len(match)-1]
		return os.Getenv(name)
	})
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
