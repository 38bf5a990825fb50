// Package config provides configuration loading and management for rscapproval.
//
// Configuration is loaded using Viper, supporting YAML config files and environment
// variable overrides. The defaults work out of the box: the built-in path
// registry, a submissions file in the working directory and a local HTTP address.
//
// Key types:
//   - [Config] is the root configuration container with all settings
//   - [Loader] handles Viper-based configuration loading
//   - [StoreConfig] locates the submissions file
//   - [ServerConfig] contains HTTP API settings
//
// Configuration priority (highest to lowest):
//  1. Environment variables (RSCAPPROVAL_ prefix, e.g. RSCAPPROVAL_SERVER_ADDR)
//  2. Config file specified by RSCAPPROVAL_CONFIG_PATH
//  3. User config directory (platform-standard):
//     - Linux: ~/.config/rscapproval/config.yaml
//     - macOS: ~/Library/Application Support/rscapproval/config.yaml
//     - Windows: %APPDATA%\rscapproval\config.yaml
//  4. ./config.yaml
//  5. [DefaultConfig] defaults
package config

// Config represents the root configuration structure.
type Config struct {
	// RegistryPath points at a YAML registry file replacing the built-in
	// paths and decisions. Empty means use the built-in registry.
	RegistryPath string `mapstructure:"registry_path"`

	// Store locates the submissions file.
	Store StoreConfig `mapstructure:"store"`

	// Server contains HTTP API settings for the serve command.
	Server ServerConfig `mapstructure:"server"`

	// Output contains terminal output settings.
	Output OutputConfig `mapstructure:"output"`

	// Log contains logger settings.
	Log LogConfig `mapstructure:"log"`
}

// StoreConfig locates the approval store.
type StoreConfig struct {
	// SubmissionsPath is the YAML file holding submitted bundles.
	// Default: "rscapproval-submissions.yaml"
	SubmissionsPath string `mapstructure:"submissions_path"`
}

// ServerConfig contains HTTP API settings.
type ServerConfig struct {
	// Addr is the listen address.
	// Default: "127.0.0.1:8080"
	Addr string `mapstructure:"addr"`

	// Mode is the gin mode: "debug", "release" or "test".
	// Default: "release"
	Mode string `mapstructure:"mode"`
}

// OutputConfig contains terminal output settings.
type OutputConfig struct {
	// ShowProgress prints the step counter and completion percentage before
	// each wizard page.
	// Default: true
	ShowProgress bool `mapstructure:"show_progress"`

	// Submitter is the default researcher name recorded on submissions when
	// --as is not given.
	Submitter string `mapstructure:"submitter"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error. LOG_LEVEL overrides it.
	// Default: "info"
	Level string `mapstructure:"level"`
}

// DefaultConfig returns a new [Config] with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			SubmissionsPath: "rscapproval-submissions.yaml",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8080",
			Mode: "release",
		},
		Output: OutputConfig{
			ShowProgress: true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
