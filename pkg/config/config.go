package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	ViewList = "list"
	ViewGrid = "grid"

	defaultDisplayDateFormat = "2006-01-02"
	defaultThumbnailWidth    = 16
	minThumbnailWidth        = 4
	maxThumbnailWidth        = 64
	defaultWatchDebounceMS   = 500
	defaultLogLevel          = "info"
)

// Config is read from config.yaml; every key can be overridden by a CLOAK_* variable
type Config struct {
	// Export
	ExportDir string `yaml:"export_dir" env:"CLOAK_EXPORT_DIR"`

	// Viewers (empty means the OS default application)
	Viewer    string `yaml:"viewer" env:"CLOAK_VIEWER"`
	PDFViewer string `yaml:"pdf_viewer" env:"CLOAK_PDF_VIEWER"`
	Editor    string `yaml:"editor" env:"CLOAK_EDITOR"`

	// Storage (0 disables the quota)
	MaxStashBytes int64 `yaml:"max_stash_bytes" env:"CLOAK_MAX_STASH_BYTES"`

	// UI Settings
	ColorTheme        string `yaml:"color_theme" env:"CLOAK_COLOR_THEME"`
	DisplayDateFormat string `yaml:"display_date_format" env:"CLOAK_DISPLAY_DATE_FORMAT"`
	ThumbnailWidth    int    `yaml:"thumbnail_width" env:"CLOAK_THUMBNAIL_WIDTH"`
	DefaultView       string `yaml:"default_view" env:"CLOAK_DEFAULT_VIEW"`

	// Watch
	WatchDebounceMS int `yaml:"watch_debounce_ms" env:"CLOAK_WATCH_DEBOUNCE_MS"`

	// Logging
	LogLevel string `yaml:"log_level" env:"CLOAK_LOG_LEVEL"`
}

// DefaultConfig returns a Config struct with default values
func DefaultConfig() *Config {
	return &Config{
		ExportDir:         "",
		Viewer:            "",
		PDFViewer:         "",
		Editor:            "",
		MaxStashBytes:     0,
		ColorTheme:        "auto",
		DisplayDateFormat: defaultDisplayDateFormat,
		ThumbnailWidth:    defaultThumbnailWidth,
		DefaultView:       ViewGrid,
		WatchDebounceMS:   defaultWatchDebounceMS,
		LogLevel:          defaultLogLevel,
	}
}

// Load reads configuration from path, applies environment overrides and
// repairs out-of-range values. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Unset variables leave the file's values alone
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DisplayDateFormat == "" {
		c.DisplayDateFormat = defaultDisplayDateFormat
	}
	if c.ColorTheme == "" {
		c.ColorTheme = "auto"
	}
	if c.ThumbnailWidth <= 0 {
		c.ThumbnailWidth = defaultThumbnailWidth
	}
	if c.ThumbnailWidth < minThumbnailWidth {
		c.ThumbnailWidth = minThumbnailWidth
	}
	if c.ThumbnailWidth > maxThumbnailWidth {
		c.ThumbnailWidth = maxThumbnailWidth
	}
	if c.WatchDebounceMS <= 0 {
		c.WatchDebounceMS = defaultWatchDebounceMS
	}
	if c.MaxStashBytes < 0 {
		c.MaxStashBytes = 0
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if !isValidView(c.DefaultView) {
		c.DefaultView = ViewGrid
	}
}

// ViewerFor picks the configured viewer for a MIME type; empty means OS default
func (c *Config) ViewerFor(mimeType string) string {
	if mimeType == "application/pdf" && c.PDFViewer != "" {
		return c.PDFViewer
	}
	return c.Viewer
}

// Save persists the current configuration to the specified file path
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func isValidView(view string) bool {
	return view == ViewList || view == ViewGrid
}
