// Package config provides the configuration structure for gemini-tts-cli.
package config

import (
	"fmt"
	"os"

	"github.com/book-expert/configurator"
	"github.com/book-expert/logger"
)

// projectTomlEnv is the environment variable the configurator reads to
// locate the project TOML. The CLI works without it; flags and built-in
// defaults cover everything.
const projectTomlEnv = "PROJECT_TOML"

// Built-in defaults, applied for any field the TOML leaves unset.
const (
	defaultAPIBaseURL     = "https://generativelanguage.googleapis.com"
	defaultModel          = "gemini-2.5-flash-preview-tts"
	defaultTemperature    = 1.0
	defaultTimeoutSeconds = 300
	defaultOutputFolder   = "output"
	defaultVoice          = "Achird"
)

// GeminiConfig holds the remote speech endpoint settings.
type GeminiConfig struct {
	APIBaseURL     string  `toml:"api_base_url"`
	Model          string  `toml:"model"`
	Temperature    float64 `toml:"temperature"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
}

// OutputConfig holds the defaults for generated files.
type OutputConfig struct {
	DefaultFolder string `toml:"default_folder"`
	DefaultVoice  string `toml:"default_voice"`
}

// PathsConfig holds the configuration for file paths.
type PathsConfig struct {
	BaseLogsDir string `toml:"base_logs_dir"`
}

// Config is the root configuration structure.
type Config struct {
	Gemini GeminiConfig `toml:"gemini"`
	Output OutputConfig `toml:"output"`
	Paths  PathsConfig  `toml:"paths"`
}

// Default returns the built-in configuration used when no project TOML is
// configured.
func Default() *Config {
	return &Config{
		Gemini: GeminiConfig{
			APIBaseURL:     defaultAPIBaseURL,
			Model:          defaultModel,
			Temperature:    defaultTemperature,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Output: OutputConfig{
			DefaultFolder: defaultOutputFolder,
			DefaultVoice:  defaultVoice,
		},
		Paths: PathsConfig{
			BaseLogsDir: os.TempDir(),
		},
	}
}

// Load returns the effective configuration. When PROJECT_TOML is set the
// central configurator loads it and unset fields fall back to the built-in
// defaults; otherwise the defaults are used as-is.
func Load(log *logger.Logger) (*Config, error) {
	if os.Getenv(projectTomlEnv) == "" {
		return Default(), nil
	}

	var cfg Config

	err := configurator.Load(&cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration from configurator: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	defaults := Default()

	if c.Gemini.APIBaseURL == "" {
		c.Gemini.APIBaseURL = defaults.Gemini.APIBaseURL
	}

	if c.Gemini.Model == "" {
		c.Gemini.Model = defaults.Gemini.Model
	}

	if c.Gemini.Temperature == 0 {
		c.Gemini.Temperature = defaults.Gemini.Temperature
	}

	if c.Gemini.TimeoutSeconds == 0 {
		c.Gemini.TimeoutSeconds = defaults.Gemini.TimeoutSeconds
	}

	if c.Output.DefaultFolder == "" {
		c.Output.DefaultFolder = defaults.Output.DefaultFolder
	}

	if c.Output.DefaultVoice == "" {
		c.Output.DefaultVoice = defaults.Output.DefaultVoice
	}

	if c.Paths.BaseLogsDir == "" {
		c.Paths.BaseLogsDir = defaults.Paths.BaseLogsDir
	}
}
