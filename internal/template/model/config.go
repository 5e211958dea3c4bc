package model

// TemplateConfig is the parsed projgen.toml document.
type TemplateConfig struct {
	// Template holds selection and generation settings.
	Template TemplateSection
	// Placeholders are the top-level placeholder tables in declaration order.
	Placeholders PlaceholderTable
	// Conditionals are the conditional tables in declaration order.
	Conditionals []Conditional
	// Hooks lists scripts per phase.
	Hooks HooksSection
}

// TemplateSection is the [template] table.
type TemplateSection struct {
	// Include lists gitignore-style patterns of files to substitute.
	Include []string `toml:"include"`
	// Exclude lists gitignore-style patterns of files copied without substitution.
	Exclude []string `toml:"exclude"`
	// Ignore lists paths always removed from the output.
	Ignore []string `toml:"ignore"`
	// Init forces in-place expansion into the destination root.
	Init bool `toml:"init"`
	// VCS selects the repository initialized in the destination ("git" or "none").
	VCS string `toml:"vcs"`
	// ProjgenVersion is a semver constraint the running tool must satisfy.
	ProjgenVersion string `toml:"projgen_version"`
}

// HooksSection is the [hooks] table. Paths are relative to the template root.
type HooksSection struct {
	Init []string `toml:"init"`
	Pre  []string `toml:"pre"`
	Post []string `toml:"post"`
}

// PlaceholderTable is an ordered set of raw placeholder tables as decoded
// from the configuration document.
type PlaceholderTable struct {
	// Names lists placeholder names in declaration order.
	Names []string
	// Entries maps a placeholder name to its raw table value.
	Entries map[string]interface{}
}

// Len returns the number of placeholders in the table.
func (t PlaceholderTable) Len() int {
	return len(t.Names)
}

// Conditional is one [conditional.'<expr>'] table.
type Conditional struct {
	// Expr is the guarding expression (the table key).
	Expr string
	// Include narrows substitution further when the guard holds.
	Include []string
	// Exclude widens the verbatim-copy set when the guard holds.
	Exclude []string
	// Ignore removes files from the output when the guard holds.
	Ignore []string
	// Placeholders are visible only when the guard holds.
	Placeholders PlaceholderTable
}

// Template represents a staged template ready for expansion.
type Template struct {
	// Ref is the template reference (source location).
	Ref TemplateRef
	// Config is the parsed projgen.toml.
	Config *TemplateConfig
	// RootPath is the staged working copy of the template.
	RootPath string
}
