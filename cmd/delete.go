package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/cloak-cli/pkg/ui"
)

var (
	deleteForce bool
)

var deleteCmd = &cobra.Command{
	Use:     "delete [id|query]",
	Aliases: []string{"rm"},
	Short:   "Permanently remove a file from the stash",
	Long: `Permanently remove a hidden file from the stash.

This cannot be undone. Export the file first if you still need it.
Files you hid are copies, so the original (if you kept it) is unaffected.

Examples:
  cloak delete          # Pick with the fuzzy finder
  cloak delete 12
  cloak delete 12 -f    # Skip confirmation`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Delete without confirmation")
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := getContext()

	file, err := selectFile(ctx, args)
	if err != nil || file == nil {
		return err
	}

	if !deleteForce {
		fmt.Println(ui.FormatWarning("You are about to delete:"))
		fmt.Printf("  %s %s\n", ui.StyleBold.Render(file.Name),
			ui.StyleMuted.Render(fmt.Sprintf("(id %d, %s)", file.ID, ui.FormatSize(file.SizeBytes))))
		fmt.Println()

		if !confirm("Delete permanently?") {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if err := deleteService.Execute(ctx, file.ID); err != nil {
		fmt.Println(ui.FormatError("Failed to delete " + file.Name))
		return err
	}

	fmt.Println(ui.FormatSuccess("Deleted " + file.Name))
	return nil
}
