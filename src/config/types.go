package config

import (
	"encoding/json"
	"fmt"
	"time"
)

// Config represents the complete configuration for grubguide
type Config struct {
	// Version of the configuration format
	Version string `json:"version"`

	// Server configuration for the HTTP and WebSocket surface
	Server ServerConfig `json:"server"`

	// Engine selects and configures the generation engine
	Engine EngineConfig `json:"engine"`

	// Chat configuration for the dialogue loop
	Chat ChatConfig `json:"chat"`

	// Store configuration for the restaurant catalog
	Store StoreConfig `json:"store"`

	// Policy configuration for tool call checks
	Policy PolicyConfig `json:"policy"`

	// Logging configuration
	Logging LoggingConfig `json:"logging"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr            string   `json:"addr" validate:"required,hostname_port"`
	AllowedOrigins  []string `json:"allowed_origins,omitempty"`
	BodyLimit       string   `json:"body_limit,omitempty"`
	ShutdownTimeout Duration `json:"shutdown_timeout" validate:"min=0"`
}

// EngineConfig holds generation engine settings
type EngineConfig struct {
	// Provider is "openrouter" or "local"
	Provider string `json:"provider" validate:"required,engine_provider"`

	Model        string `json:"model" validate:"required"`
	APIKey       string `json:"api_key,omitempty"`
	APIKeyEnvVar string `json:"api_key_env_var,omitempty"`
	BaseURL      string `json:"base_url,omitempty" validate:"omitempty,url"`

	// Temperature is left to the provider when nil
	Temperature *float64 `json:"temperature,omitempty" validate:"omitempty,min=0,max=2"`
	MaxTokens   int      `json:"max_tokens,omitempty" validate:"min=0"`
	Timeout     Duration `json:"timeout" validate:"min=0"`

	// SiteURL and SiteName are sent as OpenRouter attribution headers
	SiteURL  string `json:"site_url,omitempty" validate:"omitempty,url"`
	SiteName string `json:"site_name,omitempty"`
}

// ChatConfig holds dialogue settings
type ChatConfig struct {
	// Timeout bounds one whole reply
	Timeout       Duration `json:"timeout" validate:"min=0"`
	MaxToolRounds int      `json:"max_tool_rounds" validate:"min=1,max=10"`
}

// StoreConfig holds catalog storage settings
type StoreConfig struct {
	// Driver is "memory" or "sqlite"
	Driver   string `json:"driver" validate:"required,store_driver"`
	Path     string `json:"path,omitempty" validate:"required_if=Driver sqlite"`
	SeedFile string `json:"seed_file,omitempty"`

	// Audit records every tool execution; sqlite only
	Audit bool `json:"audit"`
}

// PolicyConfig holds tool policy settings
type PolicyConfig struct {
	Enabled          bool   `json:"enabled"`
	MaxArgumentBytes int    `json:"max_argument_bytes" validate:"min=1"`
	RegoFile         string `json:"rego_file,omitempty"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `json:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `json:"format" validate:"log_format"`
}

// Duration is a time.Duration that reads "30s" or a nanosecond count from JSON
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value, err)
		}
		*d = Duration(parsed)
	case nil:
		*d = 0
	default:
		return fmt.Errorf("invalid duration: %s", string(data))
	}
	return nil
}

// ConfigPrecedence defines the order of configuration loading
type ConfigPrecedence struct {
	// SystemConfig path, skipped when missing
	SystemConfig string

	// UserConfig path, skipped when missing
	UserConfig string

	// ExplicitConfig path from --config; must exist when set
	ExplicitConfig string

	// EnvironmentPrefix for environment overrides
	EnvironmentPrefix string
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

func (e ValidationError) Error() string {
	return e.Message
}

// ConfigSource indicates where a configuration value came from
type ConfigSource string

const (
	SourceDefault     ConfigSource = "default"
	SourceSystem      ConfigSource = "system"
	SourceUser        ConfigSource = "user"
	SourceExplicit    ConfigSource = "explicit"
	SourceEnvironment ConfigSource = "environment"
)

// Engine providers
const (
	ProviderOpenRouter = "openrouter"
	ProviderLocal      = "local"
)

// Store drivers
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)
