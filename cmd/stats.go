package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/cloak-cli/internal/adapters/chart"
	"github.com/kamal-hamza/cloak-cli/internal/core/services"
	"github.com/kamal-hamza/cloak-cli/pkg/ui"
)

var (
	statsChart bool
	statsBytes bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show stash statistics",
	Long: `Summarize the stash: file counts and sizes per category,
the largest and newest file, and rows waiting for reclassification.

With --chart a pie chart is written to the cache directory and opened
in the browser.`,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsChart, "chart", false, "Render a pie chart and open it")
	statsCmd.Flags().BoolVar(&statsBytes, "bytes", false, "Size chart wedges by bytes instead of file count")
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := getContext()

	resp, err := statsService.Execute(ctx)
	if err != nil {
		fmt.Println(ui.FormatError("Failed to read stash"))
		return err
	}

	fmt.Println(ui.FormatTitle("Stash Statistics"))
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Category\tFiles\tSize")
	for _, c := range resp.Categories {
		fmt.Fprintf(w, "%s %s\t%d\t%s\n",
			ui.CategoryIcon(string(c.Category)), c.Category.DisplayName(), c.Count, ui.FormatSize(c.Bytes))
	}
	fmt.Fprintf(w, "Total\t%d\t%s\n", resp.Total, ui.FormatSize(resp.TotalBytes))
	w.Flush()
	fmt.Println()

	if resp.Largest != nil {
		fmt.Println(ui.RenderKeyValue("Largest", fmt.Sprintf("%s (%s)", resp.Largest.Name, ui.FormatSize(resp.Largest.SizeBytes))))
	}
	if resp.Newest != nil {
		fmt.Println(ui.RenderKeyValue("Newest", fmt.Sprintf("%s (id %d)", resp.Newest.Name, resp.Newest.ID)))
	}
	if appConfig.MaxStashBytes > 0 {
		fmt.Println(ui.RenderKeyValue("Quota", fmt.Sprintf("%s of %s",
			ui.FormatSize(resp.TotalBytes), ui.FormatSize(appConfig.MaxStashBytes))))
	}
	if resp.Legacy > 0 {
		fmt.Println()
		fmt.Println(ui.FormatWarning(fmt.Sprintf("%d files have no category yet. Run 'cloak reclassify'.", resp.Legacy)))
	}

	if statsChart {
		return renderStatsChart(resp)
	}
	return nil
}

func renderStatsChart(resp *services.StatsResponse) error {
	slices := make([]chart.Slice, 0, len(resp.Categories))
	for _, c := range resp.Categories {
		slices = append(slices, chart.Slice{Label: c.Category.DisplayName(), Count: c.Count, Bytes: c.Bytes})
	}

	measure := chart.ByCount
	if statsBytes {
		measure = chart.ByBytes
	}

	path := appVault.GetCachePath("stats.html")
	if err := chart.WriteFile(path, "Cloak stash by category", slices, measure); err != nil {
		fmt.Println(ui.FormatError("Failed to render chart"))
		return err
	}

	fmt.Println()
	fmt.Println(ui.FormatSuccess("Chart written to " + shortenHome(path)))
	if err := OpenFile(getContext(), path, "text/html"); err != nil {
		fmt.Println(ui.FormatWarning("Could not open the chart: " + err.Error()))
	}
	return nil
}
