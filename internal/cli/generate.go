package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tacogips/projgen/internal/app"
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:     "generate [template]",
	Aliases: []string{"gen"},
	Short:   "Generate a project from a template",
	Long: `Generate a new project from a template.

The template may be a local directory, a git URL, an abbreviation such as
gh:owner/repo, or the name of a favorite from the config file.

Examples:
  projgen generate ./templates/cli --name my-tool
  projgen generate gh:owner/templates --subfolder go --branch v2
  projgen generate web -d license=MIT -d description=@file:README.txt
  projgen generate --favorite web --values-file values.yaml --silent --name site
  projgen generate ./templates/ci --init`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

// Generate command flags
var (
	generateName            string
	generateDestination     string
	generateDefines         []string
	generateValuesFile      string
	generateBranch          string
	generateSubfolder       string
	generateFavorite        string
	generateVCS             string
	generateInit            bool
	generateForce           bool
	generateOverwrite       bool
	generateSilent          bool
	generateAllowCommands   bool
	generateContinueOnError bool
	generateConfig          string
)

func init() {
	f := generateCmd.Flags()
	f.StringVarP(&generateName, FlagName, "n", "", DescName)
	f.StringVar(&generateDestination, FlagDestination, "", DescDestination)
	f.StringArrayVarP(&generateDefines, FlagDefine, "d", nil, DescDefine)
	f.StringVar(&generateValuesFile, FlagValuesFile, "", DescValuesFile)
	f.StringVarP(&generateBranch, FlagBranch, "b", "", DescBranch)
	f.StringVar(&generateSubfolder, FlagSubfolder, "", DescSubfolder)
	f.StringVar(&generateFavorite, FlagFavorite, "", DescFavorite)
	f.StringVar(&generateVCS, FlagVCS, "", DescVCS)
	f.BoolVar(&generateInit, FlagInit, false, DescInit)
	f.BoolVarP(&generateForce, FlagForce, "f", false, DescForce)
	f.BoolVar(&generateOverwrite, FlagOverwrite, false, DescOverwrite)
	f.BoolVarP(&generateSilent, FlagSilent, "s", false, DescSilent)
	f.BoolVar(&generateAllowCommands, FlagAllowCommands, false, DescAllowCommands)
	f.BoolVar(&generateContinueOnError, FlagContinueOnError, false, DescContinueOnError)
	f.StringVarP(&generateConfig, FlagConfig, "c", "", DescConfig)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	var template string
	if len(args) > 0 {
		template = args[0]
	}
	if template == "" && generateFavorite == "" {
		return fmt.Errorf("a template location or --%s is required", FlagFavorite)
	}
	if err := ValidateVCS(generateVCS); err != nil {
		return err
	}

	source := template
	if generateFavorite != "" {
		source = generateFavorite
	}
	printInfo(fmt.Sprintf("Generating project from %s...", source))
	if generateOverwrite {
		printWarning("Overwrite enabled - existing files will be replaced")
	}

	result, err := app.Generate(cmd.Context(), app.GenerateOptions{
		Template:        template,
		Favorite:        generateFavorite,
		Branch:          generateBranch,
		Subfolder:       generateSubfolder,
		DestinationRoot: generateDestination,
		ProjectName:     generateName,
		Defines:         generateDefines,
		ValuesFile:      generateValuesFile,
		ConfigPath:      generateConfig,
		VCS:             generateVCS,
		Prompter:        newPrompter(generateSilent),
		Silent:          generateSilent,
		AllowCommands:   generateAllowCommands,
		Overwrite:       generateOverwrite,
		Init:            generateInit,
		Force:           generateForce,
		ContinueOnError: generateContinueOnError,
		Stdout:          cmd.OutOrStdout(),
	})
	if err != nil {
		return err
	}

	printGenerateResult(result)
	return nil
}

func printGenerateResult(result *app.GenerateResult) {
	printSuccess(fmt.Sprintf("Generated %s", styled(nameStyle, result.ProjectName)))

	printHeader("Summary")
	exp := result.Expansion
	if exp != nil {
		printInfo(fmt.Sprintf("  Files:       %d", len(exp.Files)))
		if len(exp.Overwritten) > 0 {
			printInfo(fmt.Sprintf("  Overwritten: %d", len(exp.Overwritten)))
		}
		if len(exp.Verbatim) > 0 {
			printInfo(fmt.Sprintf("  Verbatim:    %d", len(exp.Verbatim)))
		}
	}
	if len(result.Removed) > 0 {
		printInfo(fmt.Sprintf("  Removed:     %d", len(result.Removed)))
	}
	if result.VCSInitialized {
		printInfo("  Initialized a git repository")
	}

	if exp != nil && len(exp.Warnings) > 0 {
		printWarning(fmt.Sprintf("%d files could not be rendered and were copied as-is:", len(exp.Warnings)))
		for _, w := range exp.Warnings {
			printWarning(fmt.Sprintf("  - %s", w))
		}
	}

	printInfo("")
	printInfo(fmt.Sprintf("Project ready at: %s", filepath.Clean(result.ProjectDir)))
}
