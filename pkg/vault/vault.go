package vault

import (
	"fmt"
	"os"
	"path/filepath"
)

// Vault represents the private storage directories used by cloak
type Vault struct {
	RootPath    string
	CachePath   string
	HandlesPath string
	ConfigPath  string
}

// New creates a new Vault instance with XDG-compliant paths
func New() (*Vault, error) {
	rootPath, rootErr := getVaultRoot()
	configPath, configErr := getConfigPath()
	if rootErr != nil {
		return nil, fmt.Errorf("failed to determine stash root: %w", rootErr)
	}
	if configErr != nil {
		return nil, fmt.Errorf("failed to determine config path: %w", configErr)
	}

	return NewAt(rootPath, configPath), nil
}

// NewAt lays out a vault under an explicit root
func NewAt(rootPath, configPath string) *Vault {
	cachePath := filepath.Join(rootPath, "cache")
	return &Vault{
		RootPath:    rootPath,
		CachePath:   cachePath,
		HandlesPath: filepath.Join(cachePath, "handles"),
		ConfigPath:  configPath,
	}
}

// getVaultRoot follows the XDG Base Directory specification on Unix and uses AppData on Windows
func getVaultRoot() (string, error) {
	if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
		return filepath.Join(xdgDataHome, "cloak"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, "cloak"), nil
	}

	return filepath.Join(homeDir, ".local", "share", "cloak"), nil
}

func getConfigPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "cloak", "config.yaml"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, "cloak-config", "config.yaml"), nil
	}

	return filepath.Join(homeDir, ".config", "cloak", "config.yaml"), nil
}

// Initialize creates the private directory structure if it doesn't exist.
// Directories are owner-only since they hold hidden payloads.
func (v *Vault) Initialize() error {
	directories := []string{
		v.RootPath,
		v.CachePath,
		v.HandlesPath,
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// Exists checks if the stash has been initialized
func (v *Vault) Exists() bool {
	info, err := os.Stat(v.RootPath)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// DatabasePath returns the SQLite stash location
func (v *Vault) DatabasePath() string {
	return filepath.Join(v.RootPath, "stash.db")
}

// LogPath returns the log file location
func (v *Vault) LogPath() string {
	return filepath.Join(v.CachePath, "cloak.log")
}

// GetCachePath returns the full path for a cached file
func (v *Vault) GetCachePath(filename string) string {
	return filepath.Join(v.CachePath, filename)
}

// ExportDir resolves the export destination: the configured directory,
// else the user's Downloads folder, else the current directory.
func ExportDir(configured string) string {
	if configured != "" {
		return expandHome(configured)
	}
	if dl := os.Getenv("XDG_DOWNLOAD_DIR"); dl != "" {
		return dl
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, "Downloads")
	}
	return "."
}

func expandHome(path string) string {
	if len(path) < 2 || path[:2] != "~/" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
