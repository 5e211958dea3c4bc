package config

import (
	"errors"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/tacogips/projgen/internal/template/model"
)

type rawTemplateConfig struct {
	Template     model.TemplateSection     `toml:"template"`
	Placeholders map[string]interface{}    `toml:"placeholders"`
	Conditional  map[string]rawConditional `toml:"conditional"`
	Hooks        model.HooksSection        `toml:"hooks"`
}

type rawConditional struct {
	Include      []string               `toml:"include"`
	Exclude      []string               `toml:"exclude"`
	Ignore       []string               `toml:"ignore"`
	Placeholders map[string]interface{} `toml:"placeholders"`
}

// LoadTemplateConfig reads projgen.toml from a template root.
// A template without a configuration file yields an empty configuration.
func LoadTemplateConfig(templateRoot string) (*model.TemplateConfig, error) {
	path := filepath.Join(templateRoot, model.ConfigFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Debug().Str("root", templateRoot).Msg("template has no " + model.ConfigFile)
			return &model.TemplateConfig{}, nil
		}
		return nil, NewConfigErrorWithCause(ConfigInvalid, path, "failed to read template configuration", err)
	}
	return ParseTemplateConfig(data, path)
}

// ParseTemplateConfig decodes a projgen.toml document. file is used in errors only.
func ParseTemplateConfig(data []byte, file string) (*model.TemplateConfig, error) {
	var raw rawTemplateConfig
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, NewConfigErrorWithCause(ConfigInvalid, file, "invalid TOML syntax", err)
	}

	order, err := scanDeclarationOrder(data)
	if err != nil {
		return nil, NewConfigErrorWithCause(ConfigInvalid, file, "invalid TOML syntax", err)
	}

	cfg := &model.TemplateConfig{
		Template:     raw.Template,
		Placeholders: orderedTable(raw.Placeholders, order.placeholders[""]),
		Hooks:        raw.Hooks,
	}

	for _, expr := range orderedKeys(raw.Conditional, order.conditionals) {
		rc := raw.Conditional[expr]
		cfg.Conditionals = append(cfg.Conditionals, model.Conditional{
			Expr:         expr,
			Include:      rc.Include,
			Exclude:      rc.Exclude,
			Ignore:       rc.Ignore,
			Placeholders: orderedTable(rc.Placeholders, order.placeholders[expr]),
		})
	}

	if err := ValidateTemplateConfig(cfg); err != nil {
		var cfgErr *ConfigError
		if errors.As(err, &cfgErr) {
			cfgErr.File = file
		}
		return nil, err
	}

	log.Debug().
		Str("file", file).
		Int("placeholders", cfg.Placeholders.Len()).
		Int("conditionals", len(cfg.Conditionals)).
		Msg("parsed template config")
	return cfg, nil
}

func orderedTable(entries map[string]interface{}, names []string) model.PlaceholderTable {
	return model.PlaceholderTable{
		Names:   orderedKeys(entries, names),
		Entries: entries,
	}
}
