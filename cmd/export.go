package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/cloak-cli/internal/core/services"
	"github.com/kamal-hamza/cloak-cli/pkg/ui"
)

var (
	exportOutput string
	exportAll    bool
)

var exportCmd = &cobra.Command{
	Use:     "export [id|query]",
	Aliases: []string{"unhide"},
	Short:   "Write a hidden file back out under its original name",
	Long: `Export (unhide) a hidden file.

The original bytes are written to the export directory under the
original name. Existing files are never overwritten; a suffix such as
"photo (1).jpg" is added instead. The file stays in the stash.

The export directory is, in order: --output, export_dir from the
config, ~/Downloads.

Examples:
  cloak export 12
  cloak unhide photo -o ~/Desktop
  cloak export --all -o /tmp/stash`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Directory to export into")
	exportCmd.Flags().BoolVarP(&exportAll, "all", "a", false, "Export every hidden file")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := getContext()
	dir := exportDir(exportOutput)

	if exportAll {
		if len(args) > 0 {
			return fmt.Errorf("--all does not take an argument")
		}
		return runExportAll(dir)
	}

	file, err := selectFile(ctx, args)
	if err != nil || file == nil {
		return err
	}

	resp, err := exportService.Execute(ctx, services.ExportRequest{ID: file.ID, Dir: dir})
	if err != nil {
		fmt.Println(ui.FormatError("Export failed"))
		return err
	}

	fmt.Println(ui.FormatSuccess("Exported " + resp.File.Name))
	fmt.Println(ui.RenderKeyValue("  Path", resp.Path))
	if copyToClipboard(resp.Path) {
		fmt.Println(ui.FormatMuted("  Path copied to clipboard"))
	}
	return nil
}

func runExportAll(dir string) error {
	fmt.Println(ui.FormatInfo("Exporting the stash to " + shortenHome(dir) + "..."))

	results, err := exportService.ExportAll(getContext(), dir)
	for _, r := range results {
		fmt.Printf("  %s %s\n", ui.StyleSuccess.Render(ui.IconSuccess), r.Path)
	}

	fmt.Println()
	if err != nil {
		fmt.Println(ui.FormatError(fmt.Sprintf("Exported %d files with errors", len(results))))
		return err
	}
	fmt.Println(ui.FormatSuccess(fmt.Sprintf("Exported %d files", len(results))))
	return nil
}
