package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/kamal-hamza/cloak-cli/internal/adapters/sqlite"
	"github.com/kamal-hamza/cloak-cli/internal/handle"
	"github.com/kamal-hamza/cloak-cli/pkg/ui"

	"github.com/spf13/cobra"
)

// staleHandleAge is how old a handle file must be before doctor removes it
const staleHandleAge = time.Hour

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the health of your stash",
	Long: `Diagnose issues with your cloak setup.

Checks for:
  - Stash directory and database
  - Schema version and files waiting for a category
  - Configuration file
  - Temporary display copies left behind by a crash (removed)`,
	Run: runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) {
	ctx := getContext()

	fmt.Println(ui.FormatTitle("🩺 Cloak Doctor"))
	fmt.Println()

	// 1. Storage
	checkStep("Stash Directory", func() error {
		if !appVault.Exists() {
			return fmt.Errorf("not found at %s", appVault.RootPath)
		}
		return nil
	})

	checkStep("Database", func() error {
		_, err := os.Stat(store.Path())
		return err
	})

	checkStep("Schema Version", func() error {
		v, err := store.SchemaVersion(ctx)
		if err != nil {
			return err
		}
		if v != sqlite.LatestVersion {
			return fmt.Errorf("at v%d, expected v%d", v, sqlite.LatestVersion)
		}
		return nil
	})

	// 2. Content
	checkStep("Categories", func() error {
		resp, err := statsService.Execute(ctx)
		if err != nil {
			return err
		}
		if resp.Legacy > 0 {
			return fmt.Errorf("%d files have no category (run 'cloak reclassify')", resp.Legacy)
		}
		return nil
	})

	// 3. Config
	checkStep("Configuration File", func() error {
		if _, err := os.Stat(appVault.ConfigPath); os.IsNotExist(err) {
			return fmt.Errorf("missing at %s (defaults in use)", appVault.ConfigPath)
		}
		return nil
	})

	// 4. Handles
	checkStep("Display Copies", func() error {
		removed, err := handle.Sweep(appVault.HandlesPath, staleHandleAge, time.Now())
		if err != nil {
			return err
		}
		remaining, err := handle.Count(appVault.HandlesPath)
		if err != nil {
			return err
		}
		if len(removed) > 0 {
			logger.Info(ctx, "removed stale handles", "count", len(removed))
			fmt.Printf("    %s\n", ui.StyleMuted.Render(fmt.Sprintf("removed %d stale copies", len(removed))))
		}
		if remaining > 0 {
			return fmt.Errorf("%d copies still open by another session", remaining)
		}
		return nil
	})

	fmt.Println()
	usage, err := store.UsageBytes(ctx)
	if err != nil {
		return
	}
	line := "Stash size: " + ui.FormatSize(usage)
	if appConfig.MaxStashBytes > 0 {
		line += " of " + ui.FormatSize(appConfig.MaxStashBytes)
	}
	fmt.Println(ui.FormatInfo(line))
}

// checkStep runs a check function and prints the result nicely
func checkStep(name string, check func() error) {
	err := check()
	if err == nil {
		fmt.Printf("%s %s\n", ui.FormatSuccess("✔"), name)
	} else {
		fmt.Printf("%s %s\n", ui.FormatError("✘"), name)
		fmt.Printf("    %s\n", ui.StyleMuted.Render(err.Error()))
	}
}
