package config

// Config represents the global projgen configuration (the app config).
type Config struct {
	// Defaults configures default behavior of the generate command.
	Defaults DefaultsConfig `toml:"defaults"`
	// Values are config-level default values offered to every template.
	Values map[string]interface{} `toml:"values"`
	// Favorites are named template shortcuts.
	Favorites map[string]Favorite `toml:"favorites"`
}

// DefaultsConfig represents default values for generate flags.
type DefaultsConfig struct {
	// Silent disables interactive prompting.
	Silent bool `toml:"silent"`
	// AllowCommands lets hook scripts run system commands without confirmation.
	AllowCommands bool `toml:"allow_commands"`
	// VCS is the default VCS for new projects ("git" or "none").
	VCS string `toml:"vcs"`
}

// Favorite is a named template location with its own default values.
type Favorite struct {
	// Description is shown by "projgen favorites".
	Description string `toml:"description"`
	// Path is a local template directory.
	Path string `toml:"path"`
	// Git is a clone URL. Path and Git are mutually exclusive.
	Git string `toml:"git"`
	// Branch selects a git branch or tag.
	Branch string `toml:"branch"`
	// Subfolder selects a template inside the fetched tree.
	Subfolder string `toml:"subfolder"`
	// VCS overrides the VCS for projects generated from this favorite.
	VCS string `toml:"vcs"`
	// Init expands the favorite in place.
	Init bool `toml:"init"`
	// Values are default values for this favorite. They take precedence
	// over the top-level [values] table.
	Values map[string]interface{} `toml:"values"`
}

// Location returns the favorite's template location.
func (f Favorite) Location() string {
	if f.Git != "" {
		return f.Git
	}
	return f.Path
}
