package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/cloak-cli/internal/core/domain"
	"github.com/kamal-hamza/cloak-cli/internal/core/services"
	"github.com/kamal-hamza/cloak-cli/pkg/ui"
)

var (
	listCategory string
	listQuery    string
	listJSON     bool
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List hidden files grouped by category",
	Aliases: []string{"ls"},
	Long: `List every hidden file, newest first, grouped by category.

Examples:
  cloak list
  cloak list --category image
  cloak list -q report
  cloak list --json`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVarP(&listCategory, "category", "c", "", "Only show one category (image, video, audio, document, other)")
	listCmd.Flags().StringVarP(&listQuery, "query", "q", "", "Filter by name")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print metadata as JSON")
}

func runList(cmd *cobra.Command, args []string) error {
	req := services.ListRequest{Query: listQuery}
	if listCategory != "" {
		c, ok := domain.ParseCategory(listCategory)
		if !ok {
			return fmt.Errorf("unknown category %q", listCategory)
		}
		req.Category = c
	}

	ctx := getContext()
	resp, err := listService.Execute(ctx, req)
	if err != nil {
		fmt.Println(ui.FormatError("Failed to list hidden files"))
		return err
	}

	if listJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp.Files)
	}

	if resp.Total == 0 {
		if req.Category != "" || req.Query != "" {
			fmt.Println(ui.FormatWarning("No hidden files match"))
		} else {
			fmt.Println(ui.FormatWarning("The stash is empty"))
			fmt.Println(ui.FormatInfo("Hide your first file with: cloak hide <path>"))
		}
		return nil
	}

	fmt.Println(ui.FormatTitle("Hidden Files"))
	fmt.Println()

	for _, g := range resp.Groups {
		fmt.Println(ui.StyleHeader.Render(fmt.Sprintf("%s %s (%d)",
			ui.CategoryIcon(string(g.Category)), g.Category.DisplayName(), len(g.Files))))

		table := ui.NewTable([]ui.TableColumn{
			{Header: "ID", Width: 5, Align: "right"},
			{Header: "Name", Width: 36, Align: "left"},
			{Header: "Size", Width: 9, Align: "right"},
			{Header: "Modified", Width: 10, Align: "left"},
			{Header: "Type", Width: 20, Align: "left"},
		})
		for _, f := range g.Files {
			table.AddRow([]string{
				fmt.Sprintf("%d", f.ID),
				ui.Truncate(f.Name, 36),
				ui.FormatSize(f.SizeBytes),
				f.GetDisplayDate(appConfig.DisplayDateFormat),
				ui.Truncate(f.MimeType, 20),
			})
		}
		fmt.Print(table.Render())
		fmt.Println()
	}

	fmt.Println(ui.FormatMuted(fmt.Sprintf("Total: %d files, %s", resp.Total, ui.FormatSize(resp.TotalBytes))))
	return nil
}
