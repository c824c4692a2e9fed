package services

import (
	"context"
	"fmt"

	"github.com/kamal-hamza/cloak-cli/internal/core/domain"
	"github.com/kamal-hamza/cloak-cli/internal/core/ports"
	"github.com/kamal-hamza/cloak-cli/internal/handle"
	"github.com/kamal-hamza/cloak-cli/internal/logging"
)

// PreviewService loads hidden files for viewing. Every preview that renders
// inline owns a display handle the caller must release.
type PreviewService struct {
	gateway  ports.Gateway
	handles  *handle.Registry
	pdf      ports.PDFTextExtractor
	renderer ports.ImageRenderer
	log      logging.Logger
}

func NewPreviewService(
	gateway ports.Gateway,
	handles *handle.Registry,
	pdf ports.PDFTextExtractor,
	renderer ports.ImageRenderer,
	log logging.Logger,
) *PreviewService {
	if log == nil {
		log = logging.Nop()
	}
	return &PreviewService{
		gateway:  gateway,
		handles:  handles,
		pdf:      pdf,
		renderer: renderer,
		log:      log,
	}
}

// Preview is an opened hidden file
type Preview struct {
	File   domain.FileMeta
	Kind   domain.PreviewKind
	Handle *handle.Handle // nil for the placeholder branch

	// Text holds extracted document text for pdf previews.
	// TextErr is set when extraction failed; the handle can still be opened externally.
	Text    string
	TextErr error
}

// Release frees the preview's handle; safe on a nil preview
func (p *Preview) Release() {
	if p != nil && p.Handle != nil {
		_ = p.Handle.Release()
	}
}

// Load fetches the record and opens a handle for inline kinds. If ctx is
// cancelled once the handle exists, the handle is released before returning.
func (s *PreviewService) Load(ctx context.Context, id int64) (*Preview, error) {
	stored, err := s.gateway.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load hidden file %d: %w", id, err)
	}
	if stored == nil {
		return nil, fmt.Errorf("hidden file %d: %w", id, domain.ErrNotFound)
	}

	p := &Preview{
		File: stored.Meta(),
		Kind: domain.PreviewKindFor(stored.MimeType),
	}
	if !p.Kind.Inline() {
		return p, nil
	}

	h, err := s.handles.Create(stored.Name, stored.MimeType, stored.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to create display handle: %w", err)
	}
	p.Handle = h

	if p.Kind == domain.PreviewPDF && s.pdf != nil {
		p.Text, p.TextErr = s.pdf.ExtractText(stored.Payload)
		if p.TextErr != nil {
			s.log.Warn(ctx, "pdf text extraction failed", "id", id, "error", p.TextErr)
		}
	}

	if err := ctx.Err(); err != nil {
		p.Release()
		return nil, err
	}
	return p, nil
}

// Art draws an image preview into cols×rows cells, reading through the handle
func (s *PreviewService) Art(p *Preview, cols, rows int) (string, error) {
	if p == nil || p.Kind != domain.PreviewImage || p.Handle == nil {
		return "", fmt.Errorf("not an image preview")
	}
	data, err := p.Handle.Bytes()
	if err != nil {
		return "", err
	}
	return s.renderer.Render(data, cols, rows)
}

// Thumbnail is a small rendering of an image record with its own handle
type Thumbnail struct {
	ID       int64
	MimeType string
	Handle   *handle.Handle
	Art      string
}

// Thumbnail runs an independent fetch-and-handle cycle for one image record.
// On success the caller owns the handle; on failure nothing is left open.
func (s *PreviewService) Thumbnail(ctx context.Context, id int64, cols, rows int) (*Thumbnail, error) {
	stored, err := s.gateway.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load hidden file %d: %w", id, err)
	}
	if stored == nil {
		return nil, fmt.Errorf("hidden file %d: %w", id, domain.ErrNotFound)
	}
	if domain.PreviewKindFor(stored.MimeType) != domain.PreviewImage {
		return nil, fmt.Errorf("hidden file %d is not an image", id)
	}

	h, err := s.handles.Create(stored.Name, stored.MimeType, stored.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to create display handle: %w", err)
	}

	data, err := h.Bytes()
	if err == nil {
		var art string
		art, err = s.renderer.Render(data, cols, rows)
		if err == nil && ctx.Err() == nil {
			return &Thumbnail{ID: id, MimeType: stored.MimeType, Handle: h, Art: art}, nil
		}
	}

	_ = h.Release()
	if err == nil {
		err = ctx.Err()
	}
	return nil, fmt.Errorf("failed to render thumbnail for %d: %w", id, err)
}
