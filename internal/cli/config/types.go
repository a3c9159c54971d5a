// Package config provides configuration management for the modelforest CLI.
package config

// Config holds all CLI configuration options.
type Config struct {
	// Input is the model-set document used when a command gets no file argument
	Input        string `koanf:"input"`
	OutputFormat string `koanf:"output"`
	Verbose      bool   `koanf:"verbose"`
	// Strict rejects cyclic containment before composing
	Strict   bool   `koanf:"strict"`
	LogLevel string `koanf:"log_level"`

	// BaseDir is the directory relative input paths from the config file are
	// resolved against.
	BaseDir string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultInput    = "models.yaml"
	DefaultOutput   = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultLogLevel = "warn"
	EnvPrefix       = "MODELFOREST_"
)

// configFileNames are searched in the working directory when no --config is given.
var configFileNames = []string{"modelforest.yaml", "modelforest.yml"}
