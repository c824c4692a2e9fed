package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/cloak-cli/pkg/ui"
)

var reclassifyCmd = &cobra.Command{
	Use:   "reclassify",
	Short: "Assign categories to files hidden by older versions",
	Long: `Derive the category of every hidden file that has none.

Files hidden before categories existed are shown under "Other Files"
until this runs. Files that already have a category are not changed.`,
	Args: cobra.NoArgs,
	RunE: runReclassify,
}

func runReclassify(cmd *cobra.Command, args []string) error {
	n, err := reclassifyService.Execute(getContext())
	if err != nil {
		fmt.Println(ui.FormatError("Reclassification failed"))
		return err
	}

	if n == 0 {
		fmt.Println(ui.FormatSuccess("Every file already has a category"))
		return nil
	}
	fmt.Println(ui.FormatSuccess(fmt.Sprintf("Categorized %d files", n)))
	return nil
}
