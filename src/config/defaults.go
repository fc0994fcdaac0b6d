package config

import (
	"time"
)

// DefaultConfig returns a default configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",

		Server: ServerConfig{
			Addr:            "127.0.0.1:8080",
			BodyLimit:       "64K",
			ShutdownTimeout: Duration(10 * time.Second),
		},

		Engine: EngineConfig{
			Provider:     ProviderOpenRouter,
			Model:        "google/gemini-2.0-flash-001",
			APIKeyEnvVar: "OPENROUTER_API_KEY",
			BaseURL:      "https://openrouter.ai/api/v1",
			Timeout:      Duration(30 * time.Second),
			SiteName:     "Gadag Grub Guide",
		},

		Chat: ChatConfig{
			Timeout:       Duration(30 * time.Second),
			MaxToolRounds: 3,
		},

		Store: StoreConfig{
			Driver: DriverMemory,
			Path:   DefaultDatabasePath(),
		},

		Policy: PolicyConfig{
			Enabled:          true,
			MaxArgumentBytes: 1024,
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// DefaultLocalConfig returns a configuration that runs fully offline
func DefaultLocalConfig() *Config {
	config := DefaultConfig()
	config.Engine.Provider = ProviderLocal
	config.Engine.Model = "grubguide/local"
	config.Engine.BaseURL = ""
	return config
}

// GenerateDefaultConfig generates a default configuration for a provider
func GenerateDefaultConfig(provider string) (*Config, error) {
	switch provider {
	case ProviderLocal:
		return DefaultLocalConfig(), nil
	case ProviderOpenRouter, "":
		return DefaultConfig(), nil
	default:
		return nil, ValidationError{
			Field:   "Provider",
			Message: "unknown engine provider: " + provider,
			Value:   provider,
		}
	}
}
