package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Loader handles loading and merging configurations from multiple sources
type Loader struct {
	fs         afero.Fs
	precedence ConfigPrecedence
	validator  *Validator
	getenv     func(string) string
}

// NewLoader creates a new configuration loader reading from fsys
func NewLoader(fsys afero.Fs, precedence ConfigPrecedence) *Loader {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &Loader{
		fs:         fsys,
		precedence: precedence,
		validator:  NewValidator(),
		getenv:     os.Getenv,
	}
}

// WithEnvironment replaces the environment lookup used for overrides
func (l *Loader) WithEnvironment(getenv func(string) string) *Loader {
	l.getenv = getenv
	return l
}

// Load loads configuration from all sources and merges them
func (l *Loader) Load() (*Config, error) {
	// Start with default configuration
	config := DefaultConfig()

	sources := []struct {
		path     string
		source   ConfigSource
		required bool
	}{
		{l.precedence.SystemConfig, SourceSystem, false},
		{l.precedence.UserConfig, SourceUser, false},
		{l.precedence.ExplicitConfig, SourceExplicit, true},
	}

	for _, src := range sources {
		if src.path == "" {
			continue
		}

		err := l.mergeFile(config, src.path)
		if err == nil {
			continue
		}
		if errors.Is(err, fs.ErrNotExist) && !src.required {
			continue
		}
		return nil, fmt.Errorf("failed to load %s config from %s: %w", src.source, src.path, err)
	}

	// Apply environment variable overrides
	if l.precedence.EnvironmentPrefix != "" {
		l.applyEnvironmentOverrides(config)
	}

	// Validate the final configuration
	if err := l.validator.Validate(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// mergeFile decodes path on top of config. Keys present in the file
// replace the current values; absent keys keep them.
func (l *Loader) mergeFile(config *Config, path string) error {
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	return nil
}

// SaveFile saves configuration to a file
func (l *Loader) SaveFile(config *Config, path string) error {
	// Validate before saving
	if err := l.validator.Validate(config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	// Ensure directory exists
	if err := l.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Marshal with pretty printing
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// The file may hold an API key
	if err := afero.WriteFile(l.fs, path, data, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// applyEnvironmentOverrides applies environment variable overrides to config
func (l *Loader) applyEnvironmentOverrides(config *Config) {
	prefix := l.precedence.EnvironmentPrefix

	if engine := l.getenv(prefix + "_ENGINE"); engine != "" {
		config.Engine.Provider = strings.ToLower(engine)
	}

	if model := l.getenv(prefix + "_MODEL"); model != "" {
		config.Engine.Model = model
	}

	// Check for API key override
	if apiKey := l.getenv(prefix + "_API_KEY"); apiKey != "" {
		config.Engine.APIKey = apiKey
	}
	// Also check OPENROUTER_API_KEY for compatibility
	if config.Engine.APIKey == "" {
		if apiKey := l.getenv("OPENROUTER_API_KEY"); apiKey != "" {
			config.Engine.APIKey = apiKey
		}
	}

	if addr := l.getenv(prefix + "_ADDR"); addr != "" {
		config.Server.Addr = addr
	}

	if driver := l.getenv(prefix + "_STORE"); driver != "" {
		config.Store.Driver = strings.ToLower(driver)
	}

	if path := l.getenv(prefix + "_DB_PATH"); path != "" {
		config.Store.Path = path
	}

	if level := l.getenv(prefix + "_LOG_LEVEL"); level != "" {
		config.Logging.Level = strings.ToLower(level)
	}
}

// ResolveAPIKey returns the configured key, falling back to the
// environment variable named by APIKeyEnvVar.
func (c *Config) ResolveAPIKey() string {
	if c.Engine.APIKey != "" {
		return c.Engine.APIKey
	}
	if c.Engine.APIKeyEnvVar != "" {
		return os.Getenv(c.Engine.APIKeyEnvVar)
	}
	return ""
}

// GetConfigPaths returns the configuration file paths to check. explicit
// is the --config flag and may be empty.
func GetConfigPaths(explicit string) ConfigPrecedence {
	return ConfigPrecedence{
		SystemConfig:      filepath.Join("/etc", appName, "config.json"),
		UserConfig:        DefaultConfigPath(),
		ExplicitConfig:    explicit,
		EnvironmentPrefix: "GRUBGUIDE",
	}
}

// Load reads the configuration from the standard locations plus explicit.
func Load(explicit string) (*Config, error) {
	return NewLoader(afero.NewOsFs(), GetConfigPaths(explicit)).Load()
}
