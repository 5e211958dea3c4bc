package config

import (
	"errors"
	"os"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/tacogips/projgen/internal/debug"
)

var log = debug.Logger("config")

// Loader defines the interface for loading configuration files.
type Loader interface {
	// Load loads configuration from the specified file path.
	Load(path string) (*Config, error)
	// LoadOrDefault loads configuration or returns defaults if file doesn't exist.
	LoadOrDefault(path string) (*Config, error)
	// Validate validates the configuration.
	Validate(config *Config) error
}

// FileLoader implements the Loader interface for file-based configuration loading.
type FileLoader struct{}

// NewLoader creates a new FileLoader instance.
func NewLoader() Loader {
	return &FileLoader{}
}

// Load loads configuration from the specified file path.
func (l *FileLoader) Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewConfigErrorWithCause(ConfigNotFound, path, "configuration file not found", err)
		}
		return nil, NewConfigErrorWithCause(ConfigInvalid, path, "failed to read configuration file", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, NewConfigErrorWithCause(ConfigInvalid, path, "invalid TOML syntax", err)
	}

	mergeConfig(&cfg, DefaultConfig())

	if err := l.Validate(&cfg); err != nil {
		var cfgErr *ConfigError
		if errors.As(err, &cfgErr) {
			cfgErr.File = path
		}
		return nil, err
	}

	log.Debug().
		Str("path", path).
		Int("favorites", len(cfg.Favorites)).
		Int("values", len(cfg.Values)).
		Msg("loaded app config")
	return &cfg, nil
}

// LoadOrDefault loads configuration or returns defaults if file doesn't exist.
func (l *FileLoader) LoadOrDefault(path string) (*Config, error) {
	cfg, err := l.Load(path)
	if err != nil {
		var cfgErr *ConfigError
		if errors.As(err, &cfgErr) && cfgErr.Type == ConfigNotFound {
			log.Debug().Str("path", path).Msg("no app config, using defaults")
			return DefaultConfig(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// Validate validates the configuration.
func (l *FileLoader) Validate(config *Config) error {
	if err := validateVCS(config.Defaults.VCS, "defaults.vcs"); err != nil {
		return err
	}
	for name, fav := range config.Favorites {
		field := "favorites." + name
		if fav.Path != "" && fav.Git != "" {
			return NewConfigErrorWithField(ConfigValidationFailed, "", field, "path and git are mutually exclusive")
		}
		if fav.Path == "" && fav.Git == "" {
			return NewConfigErrorWithField(ConfigValidationFailed, "", field, "either path or git is required")
		}
		if err := validateVCS(fav.VCS, field+".vcs"); err != nil {
			return err
		}
	}
	return nil
}

// mergeConfig merges missing fields from defaults into cfg.
func mergeConfig(cfg, defaults *Config) {
	if cfg.Defaults.VCS == "" {
		cfg.Defaults.VCS = defaults.Defaults.VCS
	}
	if cfg.Values == nil {
		cfg.Values = defaults.Values
	}
	if cfg.Favorites == nil {
		cfg.Favorites = defaults.Favorites
	}
}
