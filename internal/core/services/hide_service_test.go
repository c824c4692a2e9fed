package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kamal-hamza/cloak-cli/internal/core/domain"
	"github.com/kamal-hamza/cloak-cli/internal/core/ports/mocks"
)

func TestHideService_Execute_Success(t *testing.T) {
	gw := mocks.NewMockGateway()
	svc := NewHideService(gw, nil)

	src := filepath.Join(t.TempDir(), "photo.jpg")
	content := make([]byte, 2048)
	if err := os.WriteFile(src, content, 0644); err != nil {
		t.Fatalf("failed to create source file: %v", err)
	}
	mod := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := os.Chtimes(src, mod, mod); err != nil {
		t.Fatalf("failed to set mtime: %v", err)
	}

	resp, err := svc.Execute(context.Background(), HideRequest{Path: src})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f := resp.File
	if f.Name != "photo.jpg" {
		t.Errorf("expected name photo.jpg, got %s", f.Name)
	}
	if f.MimeType != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %s", f.MimeType)
	}
	if f.SizeBytes != 2048 {
		t.Errorf("expected size 2048, got %d", f.SizeBytes)
	}
	if f.Category != domain.CategoryImage {
		t.Errorf("expected category image, got %s", f.Category)
	}
	if f.LastModifiedEpochMs != mod.UnixMilli() {
		t.Errorf("expected mtime %d, got %d", mod.UnixMilli(), f.LastModifiedEpochMs)
	}

	// The source must be left exactly where it was
	if _, err := os.Stat(src); err != nil {
		t.Errorf("source file should be untouched: %v", err)
	}
	if gw.Len() != 1 {
		t.Errorf("expected 1 stored file, got %d", gw.Len())
	}
}

func TestHideService_Execute_Errors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, gw *mocks.MockGateway) string
		want  error
	}{
		{
			name: "missing file",
			setup: func(t *testing.T, gw *mocks.MockGateway) string {
				return filepath.Join(t.TempDir(), "nope.txt")
			},
		},
		{
			name: "directory",
			setup: func(t *testing.T, gw *mocks.MockGateway) string {
				return t.TempDir()
			},
		},
		{
			name: "quota exceeded",
			setup: func(t *testing.T, gw *mocks.MockGateway) string {
				gw.SetAddError(domain.ErrQuotaExceeded)
				p := filepath.Join(t.TempDir(), "big.bin")
				os.WriteFile(p, []byte("data"), 0644)
				return p
			},
			want: domain.ErrQuotaExceeded,
		},
		{
			name: "read back fails",
			setup: func(t *testing.T, gw *mocks.MockGateway) string {
				gw.SetGetError(domain.ErrStorageUnavailable)
				p := filepath.Join(t.TempDir(), "a.txt")
				os.WriteFile(p, []byte("data"), 0644)
				return p
			},
			want: domain.ErrStorageUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := mocks.NewMockGateway()
			svc := NewHideService(gw, nil)

			_, err := svc.Execute(context.Background(), HideRequest{Path: tt.setup(t, gw)})
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestDetectMime(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	pdf := []byte("%PDF-1.7\n")

	tests := []struct {
		name     string
		fileName string
		data     []byte
		want     string
	}{
		{"extension jpg", "photo.jpg", nil, "image/jpeg"},
		{"extension is case-insensitive", "SCAN.PDF", nil, "application/pdf"},
		{"sniffs png without extension", "image", png, "image/png"},
		{"sniffs pdf without extension", "report", pdf, "application/pdf"},
		{"empty file without extension", "empty", nil, domain.MimeOctetStream},
		{"binary without extension", "blob", []byte{0x00, 0x01, 0x02, 0xff}, domain.MimeOctetStream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectMime(tt.fileName, tt.data); got != tt.want {
				t.Errorf("DetectMime(%q) = %q, want %q", tt.fileName, got, tt.want)
			}
		})
	}
}
