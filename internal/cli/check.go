package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tacogips/projgen/internal/app"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <template>",
	Short: "Validate a template without generating",
	Long: `Validate a template: its projgen.toml, placeholder definitions,
hook scripts, and the template syntax of every file name and text file.

Nothing is written and no hook is executed.

Examples:
  projgen check ./templates/service
  projgen check gh:owner/templates --subfolder go`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

// Check command flags
var (
	checkBranch    string
	checkSubfolder string
)

func init() {
	checkCmd.Flags().StringVarP(&checkBranch, FlagBranch, "b", "", DescBranch)
	checkCmd.Flags().StringVar(&checkSubfolder, FlagSubfolder, "", DescSubfolder)
}

func runCheck(cmd *cobra.Command, args []string) error {
	result, err := app.CheckTemplate(cmd.Context(), app.CheckTemplateOptions{
		Template:  args[0],
		Branch:    checkBranch,
		Subfolder: checkSubfolder,
	})
	if err != nil {
		return err
	}

	printInfo(fmt.Sprintf("Placeholders: %d, conditionals: %d, files checked: %d",
		result.Placeholders, result.Conditionals, result.FilesChecked))

	if len(result.Errors) == 0 {
		printSuccess("Template is valid")
		return nil
	}

	for _, e := range result.Errors {
		location := e.File
		if e.Line > 0 {
			location = fmt.Sprintf("%s:%d", e.File, e.Line)
		}
		printErrorMsg(fmt.Sprintf("%s: %s", location, e.Message))
	}
	return fmt.Errorf("%d of the template's files have errors", result.FilesWithErrors)
}
