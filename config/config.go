// Package config loads the optional Minilux configuration file.
package config

// Config represents the complete Minilux configuration
type Config struct {
	BaseDir string     `yaml:"-"`       // Directory containing config file, for resolving relative paths
	Modules []string   `yaml:"modules"` // Include search paths, tried after the current base directory
	REPL    REPLConfig `yaml:"repl"`
}

// REPLConfig holds interactive-session settings
type REPLConfig struct {
	History string `yaml:"history"` // History file path (default: temp dir)
	Prompt  string `yaml:"prompt"`  // Prompt text (default: "lux> ")
}

// Defaults returns a config with default values
func Defaults() *Config {
	return &Config{}
}
