package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/cloak-cli/internal/core/services"
	"github.com/kamal-hamza/cloak-cli/internal/inbox"
	"github.com/kamal-hamza/cloak-cli/pkg/ui"
)

var (
	watchQuiet bool
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Hide every file dropped into a directory",
	Long: `Watch a directory and hide every new file that appears in it.

A file is hidden once it has stopped changing for watch_debounce_ms
(default 500ms). Hidden files, editor swap files and partial downloads
are ignored. The watched files are never deleted.

Press Ctrl+C to stop.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVarP(&watchQuiet, "quiet", "q", false, "Suppress per-file output")
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("cannot watch %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	ctx, stop := signal.NotifyContext(getContext(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	debounce := time.Duration(appConfig.WatchDebounceMS) * time.Millisecond
	w := inbox.New(dir, debounce, hideFromInbox, logger)

	if !watchQuiet {
		fmt.Println(ui.FormatLock("Watching " + shortenHome(dir)))
		fmt.Println(ui.FormatMuted("New files are copied into the stash; originals stay put"))
		fmt.Println(ui.FormatMuted("Press Ctrl+C to stop"))
		fmt.Println()
	}

	if err := w.Run(ctx); err != nil {
		return err
	}

	if !watchQuiet {
		fmt.Println()
		fmt.Println(ui.FormatMuted("Watcher stopped"))
	}
	return nil
}

func hideFromInbox(ctx context.Context, path string) error {
	resp, err := hideService.Execute(ctx, services.HideRequest{Path: path})
	if err != nil {
		if !watchQuiet {
			fmt.Println(ui.FormatError(fmt.Sprintf("Failed to hide %s: %s", filepath.Base(path), hideErrorText(err))))
		}
		return err
	}

	if !watchQuiet {
		fmt.Println(ui.FormatSuccess(fmt.Sprintf("Hid %s as #%d (%s)",
			resp.File.Name, resp.File.ID, resp.File.DisplayCategory().DisplayName())))
	}
	return nil
}
