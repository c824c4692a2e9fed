package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/cloak-cli/internal/adapters/imageart"
	"github.com/kamal-hamza/cloak-cli/internal/adapters/opener"
	"github.com/kamal-hamza/cloak-cli/internal/adapters/pdftext"
	"github.com/kamal-hamza/cloak-cli/internal/adapters/sqlite"
	"github.com/kamal-hamza/cloak-cli/internal/core/domain"
	"github.com/kamal-hamza/cloak-cli/internal/core/ports"
	"github.com/kamal-hamza/cloak-cli/internal/core/services"
	"github.com/kamal-hamza/cloak-cli/internal/handle"
	"github.com/kamal-hamza/cloak-cli/internal/logging"
	"github.com/kamal-hamza/cloak-cli/pkg/config"
	"github.com/kamal-hamza/cloak-cli/pkg/ui"
	"github.com/kamal-hamza/cloak-cli/pkg/vault"
)

var (
	// Stash paths
	appVault  *vault.Vault
	appConfig *config.Config

	logger    logging.Logger = logging.Nop()
	logCloser io.Closer

	// Storage
	store   *sqlite.Store
	handles *handle.Registry

	fileOpener ports.FileOpener

	// Services
	hideService       *services.HideService
	listService       *services.ListService
	previewService    *services.PreviewService
	exportService     *services.ExportService
	deleteService     *services.DeleteService
	statsService      *services.StatsService
	reclassifyService *services.ReclassifyService
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cloak",
	Short: "Cloak - hide files in a private stash",
	Long: ui.StyleTitle.Render("Cloak") + " - File Cloaker\n\n" +
		"Copy files into a private on-disk stash, then browse, preview,\n" +
		"export or delete them. Originals are never touched.\n\n" +
		"Run without a subcommand to open the dashboard.",
	Args:              cobra.NoArgs,
	PersistentPreRunE: initializeApp,
	RunE:              runDashboard,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	shutdownApp()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(hideCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(reclassifyCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(dashboardCmd)
}

// skipInit lists commands that run without an open stash
var skipInit = map[string]bool{
	"init":       true,
	"version":    true,
	"help":       true,
	"completion": true,
}

// initializeApp initializes the application components
func initializeApp(cmd *cobra.Command, args []string) error {
	if skipInit[cmd.Name()] {
		return nil
	}

	v, err := vault.New()
	if err != nil {
		return fmt.Errorf("failed to initialize stash paths: %w", err)
	}
	appVault = v

	if !appVault.Exists() {
		fmt.Println(ui.FormatError("Stash not initialized"))
		fmt.Println(ui.FormatInfo("Run 'cloak init' to create it"))
		os.Exit(1)
	}

	cfg, err := config.Load(appVault.ConfigPath)
	if err != nil {
		fmt.Println(ui.FormatError("Invalid configuration: " + err.Error()))
		return err
	}
	appConfig = cfg
	ui.SetTheme(appConfig.ColorTheme)

	// The dashboard owns the terminal, so logs go to a file
	fileLogger, closer, err := logging.NewFileLogger(appVault.LogPath(), appConfig.LogLevel)
	if err != nil {
		fmt.Println(ui.FormatWarning("Logging disabled: " + err.Error()))
	} else {
		logger = fileLogger
		logCloser = closer
	}

	ctx := getContext()
	store, err = sqlite.Open(ctx, appVault.DatabasePath(),
		sqlite.WithMaxBytes(appConfig.MaxStashBytes),
		sqlite.WithLogger(logger),
	)
	if err != nil {
		logger.Error(ctx, "failed to open stash", "error", err)
		if errors.Is(err, domain.ErrStorageUnavailable) {
			fmt.Println(ui.FormatError("Stash storage is unavailable"))
			fmt.Println(ui.FormatMuted("Location: " + appVault.DatabasePath()))
		}
		return err
	}

	handles, err = handle.NewRegistry(appVault.HandlesPath, logger)
	if err != nil {
		return err
	}

	fileOpener = opener.NewSystemOpener()

	hideService = services.NewHideService(store, logger)
	listService = services.NewListService(store)
	previewService = services.NewPreviewService(store, handles,
		pdftext.NewExtractor(pdftext.DefaultMaxPages), imageart.Renderer{}, logger)
	exportService = services.NewExportService(store, handles, logger)
	deleteService = services.NewDeleteService(store, logger)
	statsService = services.NewStatsService(store)
	reclassifyService = services.NewReclassifyService(store)

	logger.Debug(ctx, "app initialized", "command", cmd.Name())
	return nil
}

// shutdownApp releases handles and closes the store and log file
func shutdownApp() {
	if handles != nil {
		if err := handles.Close(); err != nil {
			logger.Warn(getContext(), "failed to release handles", "error", err)
		}
	}
	if store != nil {
		if err := store.Close(); err != nil {
			logger.Warn(getContext(), "failed to close stash", "error", err)
		}
	}
	if logCloser != nil {
		_ = logCloser.Close()
	}
}

// getContext returns a context for operations
func getContext() context.Context {
	return context.Background()
}
