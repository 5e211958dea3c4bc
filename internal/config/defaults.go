package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// Environment variables consulted by projgen.
const (
	// EnvConfigPath overrides the app config location.
	EnvConfigPath = "PROJGEN_CONFIG"
	// EnvValuesFile names a values file used when --values-file is absent.
	EnvValuesFile = "PROJGEN_TEMPLATE_VALUES_FILE"
	// EnvValuePrefix prefixes per-variable overrides, e.g. PROJGEN_VALUE_LICENSE.
	EnvValuePrefix = "PROJGEN_VALUE_"
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Defaults: DefaultsConfig{
			Silent:        false,
			AllowCommands: false,
			VCS:           "git",
		},
		Values:    map[string]interface{}{},
		Favorites: map[string]Favorite{},
	}
}

// DefaultConfigPath returns the default configuration file path
// ($XDG_CONFIG_HOME/projgen/config.toml).
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "projgen", "config.toml")
}
