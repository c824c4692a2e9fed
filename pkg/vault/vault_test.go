package vault

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewAt_Layout(t *testing.T) {
	v := NewAt("/test/cloak", "/test/config/cloak/config.yaml")

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"root", v.RootPath, "/test/cloak"},
		{"cache", v.CachePath, "/test/cloak/cache"},
		{"handles", v.HandlesPath, "/test/cloak/cache/handles"},
		{"config", v.ConfigPath, "/test/config/cloak/config.yaml"},
		{"database", v.DatabasePath(), "/test/cloak/stash.db"},
		{"log", v.LogPath(), "/test/cloak/cache/cloak.log"},
		{"cache file", v.GetCachePath("stats.html"), "/test/cloak/cache/stats.html"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %q, want %q", tt.got, tt.expected)
			}
		})
	}
}

func TestNew_UsesXDGDirectories(t *testing.T) {
	data := t.TempDir()
	conf := t.TempDir()
	t.Setenv("XDG_DATA_HOME", data)
	t.Setenv("XDG_CONFIG_HOME", conf)

	v, err := New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	if v.RootPath != filepath.Join(data, "cloak") {
		t.Errorf("RootPath = %q", v.RootPath)
	}
	if v.ConfigPath != filepath.Join(conf, "cloak", "config.yaml") {
		t.Errorf("ConfigPath = %q", v.ConfigPath)
	}
}

func TestVault_Initialize(t *testing.T) {
	v := NewAt(filepath.Join(t.TempDir(), "cloak"), "")

	if v.Exists() {
		t.Fatal("vault should not exist before Initialize")
	}
	if err := v.Initialize(); err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}
	if !v.Exists() {
		t.Error("vault should exist after Initialize")
	}

	for _, dir := range []string{v.RootPath, v.CachePath, v.HandlesPath} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("missing %s: %v", dir, err)
		}
		if info.Mode().Perm() != 0700 {
			t.Errorf("%s has mode %v, want 0700", dir, info.Mode().Perm())
		}
	}

	// second call is harmless
	if err := v.Initialize(); err != nil {
		t.Errorf("second Initialize() error: %v", err)
	}
}

func TestExportDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	if got := ExportDir("/srv/out"); got != "/srv/out" {
		t.Errorf("configured dir = %q", got)
	}
	if got := ExportDir("~/out"); got != filepath.Join(home, "out") {
		t.Errorf("home-relative dir = %q", got)
	}

	t.Setenv("XDG_DOWNLOAD_DIR", "/xdg/downloads")
	if got := ExportDir(""); got != "/xdg/downloads" {
		t.Errorf("XDG download dir = %q", got)
	}

	t.Setenv("XDG_DOWNLOAD_DIR", "")
	if got := ExportDir(""); got != filepath.Join(home, "Downloads") {
		t.Errorf("default dir = %q", got)
	}
}
