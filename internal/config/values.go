package config

import (
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

type valuesDocument struct {
	Values map[string]interface{} `toml:"values" yaml:"values"`
}

// LoadValuesFile reads a values file. TOML files carry a [values] table,
// YAML files (.yaml, .yml) a top-level "values" mapping.
func LoadValuesFile(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewConfigErrorWithCause(ConfigNotFound, path, "values file not found", err)
		}
		return nil, NewConfigErrorWithCause(ConfigInvalid, path, "failed to read values file", err)
	}

	var doc valuesDocument
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml", "":
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, NewConfigErrorWithCause(ConfigInvalid, path, "invalid TOML syntax", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, NewConfigErrorWithCause(ConfigInvalid, path, "invalid YAML syntax", err)
		}
	default:
		return nil, NewConfigError(ConfigUnsupported, path, "values file must be .toml, .yaml or .yml")
	}

	if doc.Values == nil {
		doc.Values = map[string]interface{}{}
	}
	log.Debug().Str("path", path).Int("values", len(doc.Values)).Msg("loaded values file")
	return doc.Values, nil
}
