package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "RSCAPPROVAL"

// configPathEnv names the variable that points at an explicit config file.
const configPathEnv = EnvPrefix + "_CONFIG_PATH"

// Loader loads [Config] through Viper.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a Loader with defaults and environment bindings applied.
func NewLoader() *Loader {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Loader{v: v}
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("registry_path", cfg.RegistryPath)
	v.SetDefault("store.submissions_path", cfg.Store.SubmissionsPath)
	v.SetDefault("server.addr", cfg.Server.Addr)
	v.SetDefault("server.mode", cfg.Server.Mode)
	v.SetDefault("output.show_progress", cfg.Output.ShowProgress)
	v.SetDefault("output.submitter", cfg.Output.Submitter)
	v.SetDefault("log.level", cfg.Log.Level)
}

// Load resolves the config file by priority and returns the merged config.
// A missing config file is not an error; defaults and environment apply.
func (l *Loader) Load() (*Config, error) {
	path := resolveConfigPath()
	if path == "" {
		return l.unmarshal()
	}
	return l.LoadFromFile(path)
}

// LoadFromFile reads the config file at path and returns the merged config.
func (l *Loader) LoadFromFile(path string) (*Config, error) {
	l.v.SetConfigFile(path)
	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	return l.unmarshal()
}

func (l *Loader) unmarshal() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	return &cfg, nil
}

// ConfigDir returns the platform config directory for rscapproval.
func ConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}
	return filepath.Join(dir, "rscapproval"), nil
}

// DefaultConfigPath returns the config file location inside [ConfigDir].
func DefaultConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// resolveConfigPath returns the first existing config file by priority, or "".
func resolveConfigPath() string {
	if p := os.Getenv(configPathEnv); p != "" {
		return p
	}

	var candidates []string
	if p, err := DefaultConfigPath(); err == nil {
		candidates = append(candidates, p)
	}
	candidates = append(candidates, "config.yaml")

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}
