package cli

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
)

// Common flag names and descriptions
const (
	// Flag names
	FlagName            = "name"
	FlagDestination     = "destination"
	FlagDefine          = "define"
	FlagValuesFile      = "values-file"
	FlagBranch          = "branch"
	FlagSubfolder       = "subfolder"
	FlagFavorite        = "favorite"
	FlagVCS             = "vcs"
	FlagInit            = "init"
	FlagForce           = "force"
	FlagOverwrite       = "overwrite"
	FlagSilent          = "silent"
	FlagAllowCommands   = "allow-commands"
	FlagContinueOnError = "continue-on-error"
	FlagConfig          = "config"
	FlagNoColor         = "no-color"
	FlagQuiet           = "quiet"
	FlagDebug           = "debug"

	// Flag descriptions
	DescName            = "Project name (kebab-cased unless --force)"
	DescDestination     = "Directory the project is created in"
	DescDefine          = "Set a placeholder value, name=value (repeatable; value may be @file:<path>)"
	DescValuesFile      = "TOML or YAML file with a [values] table"
	DescBranch          = "Git branch or tag of the template repository"
	DescSubfolder       = "Template directory inside the repository"
	DescFavorite        = "Use a favorite from the config file"
	DescVCS             = "Repository to initialize in the project (git or none)"
	DescInit            = "Expand into the destination directory itself"
	DescForce           = "Keep the project name exactly as given"
	DescOverwrite       = "Overwrite existing files"
	DescSilent          = "Never prompt; fail if a value is missing"
	DescAllowCommands   = "Let hooks run system commands without asking"
	DescContinueOnError = "Copy files that fail to render instead of aborting"
	DescConfig          = "Path to config file"
	DescNoColor         = "Disable colored output"
	DescQuiet           = "Suppress non-error output"
	DescDebug           = "Enable debug logging"
)

// ValidateVCS validates the --vcs flag value.
func ValidateVCS(vcs string) error {
	switch vcs {
	case "", "git", "none":
		return nil
	default:
		return fmt.Errorf("invalid --%s value %q: must be git or none", FlagVCS, vcs)
	}
}

// stdinIsTerminal reports whether prompts can be shown.
func stdinIsTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
