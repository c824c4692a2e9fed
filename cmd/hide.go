package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/cloak-cli/internal/core/domain"
	"github.com/kamal-hamza/cloak-cli/internal/core/services"
	"github.com/kamal-hamza/cloak-cli/pkg/ui"
)

// reminderText is shown after every successful hide
const reminderText = "The original file is untouched. Delete it yourself if it should disappear."

var hideCmd = &cobra.Command{
	Use:   "hide <path>...",
	Short: "Copy files into the stash",
	Long: `Copy one or more files into the private stash.

The file's bytes, name, type and modification time are stored and the
file is categorized by its type. The original is never modified or
removed.

Examples:
  cloak hide photo.jpg
  cloak hide ~/Downloads/*.pdf`,
	Args: cobra.MinimumNArgs(1),
	RunE: runHide,
}

func runHide(cmd *cobra.Command, args []string) error {
	ctx := getContext()

	failed := 0
	for _, path := range args {
		resp, err := hideService.Execute(ctx, services.HideRequest{Path: path})
		if err != nil {
			failed++
			fmt.Println(ui.FormatError(fmt.Sprintf("Failed to hide %s: %s", path, hideErrorText(err))))
			if errors.Is(err, domain.ErrStorageUnavailable) {
				return err
			}
			continue
		}

		f := resp.File
		fmt.Println(ui.FormatLock("Hidden " + f.Name))
		fmt.Println(ui.RenderKeyValue("  ID", fmt.Sprintf("%d", f.ID)))
		fmt.Println(ui.RenderKeyValue("  Category",
			ui.CategoryIcon(string(f.DisplayCategory()))+" "+f.DisplayCategory().DisplayName()))
		fmt.Println(ui.RenderKeyValue("  Size", ui.FormatSize(f.SizeBytes)))
	}

	if failed < len(args) {
		fmt.Println()
		fmt.Println(ui.FormatWarning(reminderText))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files could not be hidden", failed, len(args))
	}
	return nil
}

// hideErrorText turns storage sentinels into short user messages
func hideErrorText(err error) string {
	switch {
	case errors.Is(err, domain.ErrQuotaExceeded):
		return "the stash is full"
	case errors.Is(err, domain.ErrStorageUnavailable):
		return "storage is unavailable"
	case errors.Is(err, domain.ErrWriteFailed):
		return "the stash rejected the file"
	default:
		return err.Error()
	}
}
