package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tacogips/projgen/internal/app"
)

// favoritesCmd represents the favorites command
var favoritesCmd = &cobra.Command{
	Use:   "favorites",
	Short: "List the favorites of the config file",
	Long: `List the template favorites defined under [favorites] in the config file.

A favorite name can be used in place of a template location:
  projgen generate <favorite>`,
	Args: cobra.NoArgs,
	RunE: runFavorites,
}

var favoritesConfig string

func init() {
	favoritesCmd.Flags().StringVarP(&favoritesConfig, FlagConfig, "c", "", DescConfig)
}

func runFavorites(cmd *cobra.Command, args []string) error {
	favorites, err := app.ListFavorites(favoritesConfig)
	if err != nil {
		return err
	}
	if len(favorites) == 0 {
		printInfo("No favorites configured.")
		return nil
	}

	for _, fav := range favorites {
		line := fmt.Sprintf("%s  %s", styled(nameStyle, fav.Name), fav.Location)
		if fav.Subfolder != "" {
			line += " " + styled(mutedStyle, "subfolder="+fav.Subfolder)
		}
		if fav.Branch != "" {
			line += " " + styled(mutedStyle, "branch="+fav.Branch)
		}
		printInfo(line)
		if fav.Description != "" {
			printInfo("    " + fav.Description)
		}
	}
	return nil
}
