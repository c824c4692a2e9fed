package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/cloak-cli/internal/adapters/sqlite"
	"github.com/kamal-hamza/cloak-cli/pkg/ui"
	"github.com/kamal-hamza/cloak-cli/pkg/vault"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the cloak stash",
	Long: `Initialize the private stash directory structure.

This creates the stash at ~/.local/share/cloak/ with the following structure:
  - stash.db      : SQLite database holding every hidden file
  - cache/        : Log file and chart output
  - cache/handles : Temporary display copies (removed when closed)
  - config.yaml   : Global configuration (under ~/.config/cloak/)`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	v, err := vault.New()
	if err != nil {
		fmt.Println(ui.FormatError("Failed to determine stash location"))
		return err
	}

	if v.Exists() {
		fmt.Println(ui.FormatWarning("Stash already initialized"))
		fmt.Println(ui.FormatMuted("Location: " + v.RootPath))
		return nil
	}

	fmt.Println(ui.FormatLock("Initializing cloak stash..."))
	fmt.Println()

	if err := v.Initialize(); err != nil {
		fmt.Println(ui.FormatError("Failed to initialize stash"))
		return err
	}

	if err := createDefaultConfig(v); err != nil {
		// Config is optional
		fmt.Println(ui.FormatWarning("Failed to create default config: " + err.Error()))
	}

	// Opening the database applies every migration
	s, err := sqlite.Open(getContext(), v.DatabasePath())
	if err != nil {
		fmt.Println(ui.FormatError("Failed to create stash database"))
		return err
	}
	version, _ := s.SchemaVersion(getContext())
	if err := s.Close(); err != nil {
		return err
	}

	fmt.Println(ui.FormatSuccess("Stash initialized successfully!"))
	fmt.Println()
	fmt.Println(ui.RenderKeyValue("Location", v.RootPath))
	fmt.Println(ui.RenderKeyValue("Database", v.DatabasePath()))
	fmt.Println(ui.RenderKeyValue("Schema", fmt.Sprintf("v%d", version)))
	fmt.Println(ui.RenderKeyValue("Config", v.ConfigPath))
	fmt.Println()
	fmt.Println(ui.FormatInfo("Next steps:"))
	fmt.Println(ui.FormatMuted("  1. Hide a file: cloak hide ~/Pictures/photo.jpg"))
	fmt.Println(ui.FormatMuted("  2. List the stash: cloak list"))
	fmt.Println(ui.FormatMuted("  3. Browse it: cloak"))

	return nil
}

func createDefaultConfig(v *vault.Vault) error {
	if _, err := os.Stat(v.ConfigPath); err == nil {
		return nil
	}

	defaultConfig := `# Cloak Configuration
# This file is optional - all settings have sensible defaults.
# Every key can also be set with a CLOAK_* environment variable.

# Where exported files are written (defaults to ~/Downloads)
# export_dir: ""

# Viewers (empty uses the system default application)
# viewer: ""
# pdf_viewer: ""

# Refuse new files once the stash holds this many bytes (0 = no limit)
# max_stash_bytes: 0

# Dashboard
# default_view: grid        # grid | list
# thumbnail_width: 16
# color_theme: auto         # auto | dark | light
# display_date_format: "2006-01-02"

# cloak watch
# watch_debounce_ms: 500

# Log level for cache/cloak.log (debug, info, warn, error)
# log_level: info
`

	configDir := filepath.Dir(v.ConfigPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return os.WriteFile(v.ConfigPath, []byte(defaultConfig), 0644)
}
