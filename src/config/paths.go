package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

const appName = "grubguide"

// DefaultConfigPath returns the user config file under XDG_CONFIG_HOME
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.json")
}

// DefaultDatabasePath returns the sqlite catalog path under XDG_STATE_HOME
func DefaultDatabasePath() string {
	// state, not data: the catalog is rebuilt from seed when missing
	return filepath.Join(xdg.StateHome, appName, "catalog.db")
}
