package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// FileMeta represents the lightweight metadata of a hidden file
// Used for listing operations to avoid loading the payload
type FileMeta struct {
	ID                  int64    `json:"id"`
	Name                string   `json:"name"`
	MimeType            string   `json:"mime_type"`
	SizeBytes           int64    `json:"size_bytes"`
	LastModifiedEpochMs int64    `json:"last_modified_ms"`
	Category            Category `json:"category"` // Empty for rows written before the category migration
}

// StoredFile represents the full record including the payload
// Used for preview and export operations
type StoredFile struct {
	FileMeta
	Payload []byte
}

// NewFile is the input to the gateway's add operation.
// ID and Category are assigned by the store.
type NewFile struct {
	Name                string
	MimeType            string
	LastModifiedEpochMs int64
	Payload             []byte
}

// SizeBytes reports the payload length
func (f NewFile) SizeBytes() int64 {
	return int64(len(f.Payload))
}

// LastModified converts the stored epoch milliseconds to a time
func (m FileMeta) LastModified() time.Time {
	return time.UnixMilli(m.LastModifiedEpochMs)
}

// GetDisplayDate formats the source modification time for display
func (m FileMeta) GetDisplayDate(layout string) string {
	if layout == "" {
		layout = "2006-01-02"
	}
	return m.LastModified().Format(layout)
}

// DisplayCategory returns the category used for grouping.
// Legacy rows without a category are shown with the other files.
func (m FileMeta) DisplayCategory() Category {
	return m.Category.OrDefault()
}

// Extension returns the lowercased extension of the original name
func (m FileMeta) Extension() string {
	return strings.ToLower(filepath.Ext(m.Name))
}

// Meta strips the payload from a stored file
func (f *StoredFile) Meta() FileMeta {
	return f.FileMeta
}

// EpochMs converts a time to the epoch millisecond form stored on records
func EpochMs(t time.Time) int64 {
	return t.UnixMilli()
}
