package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	fuzzyfinder "github.com/ktr0731/go-fuzzyfinder"

	"github.com/kamal-hamza/cloak-cli/internal/core/domain"
	"github.com/kamal-hamza/cloak-cli/internal/core/services"
	"github.com/kamal-hamza/cloak-cli/pkg/ui"
	"github.com/kamal-hamza/cloak-cli/pkg/vault"
)

// GetPreferredEditor returns the editor command from config, env, or default
func GetPreferredEditor() string {
	// 1. Check Config
	if appConfig != nil && appConfig.Editor != "" {
		return appConfig.Editor
	}
	// 2. Check Environment
	if env := os.Getenv("EDITOR"); env != "" {
		return env
	}
	// 3. Fallback
	return "vi"
}

// OpenFile opens a file with the viewer configured for its MIME type,
// or the OS default application.
func OpenFile(ctx context.Context, path, mimeType string) error {
	viewer := ""
	if appConfig != nil {
		viewer = appConfig.ViewerFor(mimeType)
	}
	return fileOpener.Open(ctx, path, viewer)
}

// selectFile resolves a command argument to one hidden file.
// No argument shows a fuzzy picker over the whole stash; a number is taken
// as an id; anything else is a name query. Returns nil when the user cancels.
func selectFile(ctx context.Context, args []string) (*domain.FileMeta, error) {
	resp, err := listService.Execute(ctx, services.ListRequest{})
	if err != nil {
		fmt.Println(ui.FormatError("Failed to list hidden files"))
		return nil, err
	}

	if resp.Total == 0 {
		fmt.Println(ui.FormatWarning("The stash is empty"))
		fmt.Println(ui.FormatInfo("Hide your first file with: cloak hide <path>"))
		return nil, nil
	}

	if len(args) == 0 {
		return pickFile(resp.Files)
	}

	if id, err := strconv.ParseInt(args[0], 10, 64); err == nil {
		for i := range resp.Files {
			if resp.Files[i].ID == id {
				return &resp.Files[i], nil
			}
		}
		return nil, fmt.Errorf("no hidden file with id %d: %w", id, domain.ErrNotFound)
	}

	matches := services.Search(resp.Files, args[0])
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("nothing matches %q: %w", args[0], domain.ErrNotFound)
	case 1:
		return &matches[0], nil
	default:
		return pickFile(matches)
	}
}

// pickFile shows the fuzzy finder; nil means cancelled
func pickFile(files []domain.FileMeta) (*domain.FileMeta, error) {
	idx, err := fuzzyfinder.Find(
		files,
		func(i int) string {
			return fmt.Sprintf("%d  %s", files[i].ID, files[i].Name)
		},
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return ""
			}
			return describeFile(files[i])
		}),
	)
	if err != nil {
		// User cancelled (Ctrl+C or ESC)
		fmt.Println(ui.FormatInfo("Operation cancelled."))
		return nil, nil
	}
	return &files[idx], nil
}

// describeFile is the plain-text metadata block used by pickers
func describeFile(f domain.FileMeta) string {
	layout := ""
	if appConfig != nil {
		layout = appConfig.DisplayDateFormat
	}
	return fmt.Sprintf("ID: %d\nName: %s\nType: %s\nSize: %s\nModified: %s\nCategory: %s",
		f.ID,
		f.Name,
		f.MimeType,
		ui.FormatSize(f.SizeBytes),
		f.GetDisplayDate(layout),
		f.DisplayCategory().DisplayName())
}

// confirm asks a y/n question on stdin
func confirm(prompt string) bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print(ui.StyleWarning.Render(prompt + " (y/n): "))
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.ToLower(strings.TrimSpace(response)) == "y"
}

// copyToClipboard is best-effort; headless sessions have no clipboard
func copyToClipboard(text string) bool {
	return clipboard.WriteAll(text) == nil
}

// shortenHome replaces the home directory prefix with ~
func shortenHome(path string) string {
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		if strings.HasPrefix(path, home) {
			return "~" + strings.TrimPrefix(path, home)
		}
	}
	return path
}

// exportDir resolves the export destination from a flag or config
func exportDir(flag string) string {
	if flag != "" {
		return flag
	}
	configured := ""
	if appConfig != nil {
		configured = appConfig.ExportDir
	}
	return vault.ExportDir(configured)
}
