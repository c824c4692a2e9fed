package ports

import (
	"context"

	"github.com/kamal-hamza/cloak-cli/internal/core/domain"
)

// Gateway defines the port for hidden file persistence
type Gateway interface {
	// Add classifies and stores a file, returning the id assigned by the store
	Add(ctx context.Context, file domain.NewFile) (int64, error)

	// List returns the metadata of every stored file (never the payload).
	// Ordering is unspecified.
	List(ctx context.Context) ([]domain.FileMeta, error)

	// Get returns the full record, or nil when no record has that id
	Get(ctx context.Context, id int64) (*domain.StoredFile, error)

	// Delete removes a record; deleting an unknown id is a no-op
	Delete(ctx context.Context, id int64) error
}

// Maintenance is implemented by gateways that support re-derivation tooling
type Maintenance interface {
	// Backfill derives the category for rows that have none
	Backfill(ctx context.Context) (int, error)

	// SchemaVersion reports the applied schema version
	SchemaVersion(ctx context.Context) (int64, error)

	// UsageBytes reports the total payload size held by the store
	UsageBytes(ctx context.Context) (int64, error)
}

// PDFTextExtractor defines the port for rendering a PDF as plain text
type PDFTextExtractor interface {
	ExtractText(data []byte) (string, error)
}

// FileOpener defines the port for opening files with default applications
type FileOpener interface {
	// Open opens a file with the system's default application or a configured viewer
	Open(ctx context.Context, path string, viewer string) error
}

// ImageRenderer defines the port for drawing an image into terminal cells
type ImageRenderer interface {
	Render(data []byte, cols, rows int) (string, error)
}
