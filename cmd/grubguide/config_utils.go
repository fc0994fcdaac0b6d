package main

import (
	"strings"

	"github.com/spf13/afero"

	"github.com/elee1766/grubguide/src/config"
	grubfs "github.com/elee1766/grubguide/src/fs"
)

// loadConfig loads the configuration from the standard locations plus the
// --config file, then applies the global flags.
func loadConfig(cli *CLI) (*config.Config, error) {
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return nil, err
	}

	overrideConfigFromCLI(cfg, cli)

	if err := config.NewValidator().Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// overrideConfigFromCLI overrides configuration values with CLI flags
func overrideConfigFromCLI(cfg *config.Config, cli *CLI) {
	// the flag also reads OPENROUTER_API_KEY, so it only fills a missing key
	if cli.APIKey != "" && cfg.Engine.APIKey == "" {
		cfg.Engine.APIKey = cli.APIKey
	}
	if cli.Engine != "" {
		cfg.Engine.Provider = strings.ToLower(cli.Engine)
		if cfg.Engine.Provider == config.ProviderLocal {
			cfg.Engine.Model = config.DefaultLocalConfig().Engine.Model
		}
	}
	if cli.LogLevel != "" {
		cfg.Logging.Level = strings.ToLower(cli.LogLevel)
	}
}

// maskAPIKey masks an API key for display
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}

// appFs resolves relative seed and policy paths against the --config
// file's directory.
func appFs(cli *CLI) afero.Fs {
	return grubfs.ForConfigFile(afero.NewOsFs(), cli.Config)
}
