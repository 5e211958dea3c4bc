package config

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/tacogips/projgen/internal/template/model"
)

// Validate validates the global configuration.
func Validate(config *Config) error {
	loader := NewLoader()
	return loader.Validate(config)
}

// ValidateTemplateConfig validates the non-placeholder sections of a template
// configuration. Placeholder tables are validated by the schema package.
func ValidateTemplateConfig(cfg *model.TemplateConfig) error {
	if cfg == nil {
		return NewConfigErrorWithField(ConfigValidationFailed, model.ConfigFile, "", "template configuration cannot be nil")
	}

	if len(cfg.Template.Include) > 0 && len(cfg.Template.Exclude) > 0 {
		return NewConfigErrorWithField(ConfigValidationFailed, "", "template",
			"include and exclude are mutually exclusive")
	}

	if err := validateVCS(cfg.Template.VCS, "template.vcs"); err != nil {
		return err
	}

	if cfg.Template.ProjgenVersion != "" {
		if _, err := semver.NewConstraint(cfg.Template.ProjgenVersion); err != nil {
			return NewConfigErrorWithField(ConfigValidationFailed, "", "template.projgen_version",
				fmt.Sprintf("invalid version requirement %q: %v", cfg.Template.ProjgenVersion, err))
		}
	}

	phases := map[string][]string{
		"hooks.init": cfg.Hooks.Init,
		"hooks.pre":  cfg.Hooks.Pre,
		"hooks.post": cfg.Hooks.Post,
	}
	for field, scripts := range phases {
		for _, script := range scripts {
			if strings.TrimSpace(script) == "" {
				return NewConfigErrorWithField(ConfigValidationFailed, "", field, "hook script path cannot be empty")
			}
		}
	}

	for _, cond := range cfg.Conditionals {
		if strings.TrimSpace(cond.Expr) == "" {
			return NewConfigErrorWithField(ConfigValidationFailed, "", "conditional", "condition expression cannot be empty")
		}
	}

	return nil
}

// CheckToolVersion reports whether version satisfies the template's
// projgen_version requirement. An empty requirement always passes, and so
// does a development build whose version is not semver.
func CheckToolVersion(requirement, version string) error {
	if requirement == "" {
		return nil
	}
	constraint, err := semver.NewConstraint(requirement)
	if err != nil {
		return NewConfigErrorWithField(ConfigValidationFailed, model.ConfigFile, "template.projgen_version",
			fmt.Sprintf("invalid version requirement %q: %v", requirement, err))
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		log.Debug().Str("version", version).Msg("skipping version check for non-semver build")
		return nil
	}
	if !constraint.Check(v) {
		return NewConfigErrorWithField(ConfigValidationFailed, model.ConfigFile, "template.projgen_version",
			fmt.Sprintf("template requires projgen %s, running %s", requirement, version))
	}
	return nil
}

func validateVCS(vcs, field string) error {
	switch vcs {
	case "", "git", "none":
		return nil
	default:
		return NewConfigErrorWithField(ConfigValidationFailed, "", field,
			fmt.Sprintf("unsupported vcs %q (expected \"git\" or \"none\")", vcs))
	}
}
