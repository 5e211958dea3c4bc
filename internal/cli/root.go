package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/tacogips/projgen/internal/app"
	"github.com/tacogips/projgen/internal/config"
	"github.com/tacogips/projgen/internal/debug"
)

// Global flags
var (
	globalNoColor bool
	globalQuiet   bool
	globalDebug   bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "projgen",
	Short: "Generate projects from templates",
	Long: `projgen creates new projects from template directories or git repositories.

A template is a directory with a projgen.toml describing its placeholders.
Values come from --define, a values file, PROJGEN_VALUE_<NAME> environment
variables, configured defaults, or interactive prompts. File names and
contents are rendered with the collected values, and optional Starlark
hooks run before and after expansion.

Examples:
  projgen generate gh:owner/repo --name my-app
  projgen generate ./templates/service -d license=MIT
  projgen generate --favorite web --silent --name site
  projgen check ./templates/service`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		debug.SetDebug(globalDebug)
		debug.SetNoColor(globalNoColor)
		setOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		printError(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&globalNoColor, FlagNoColor, false, DescNoColor)
	rootCmd.PersistentFlags().BoolVarP(&globalQuiet, FlagQuiet, "q", false, DescQuiet)
	rootCmd.PersistentFlags().BoolVar(&globalDebug, FlagDebug, false, DescDebug)

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(favoritesCmd)
	rootCmd.AddCommand(versionCmd)
}

// printError prints an error message to stderr, with a hint for the
// failures a user can act on.
func printError(err error) {
	printErrorMsg(err.Error())

	var appErr *app.AppError
	if !errors.As(err, &appErr) {
		return
	}
	if hint := errorHint(appErr.Type); hint != "" {
		printHint(hint)
	}
}

func errorHint(t app.AppErrorType) string {
	switch t {
	case app.ResolutionFailed:
		return "values can be passed with --define name=value or a --values-file"
	case app.ConfigFailed:
		return fmt.Sprintf("check the file given by --config or $%s", config.EnvConfigPath)
	case app.HookFailed:
		return "rerun with --debug to trace hook execution"
	default:
		return ""
	}
}
