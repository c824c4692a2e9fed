package services

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/kamal-hamza/cloak-cli/internal/core/domain"
	"github.com/kamal-hamza/cloak-cli/internal/core/ports"
	"github.com/kamal-hamza/cloak-cli/internal/logging"
)

// HideService copies a file from the filesystem into the stash.
// The source file is only ever read.
type HideService struct {
	gateway ports.Gateway
	log     logging.Logger
}

func NewHideService(gateway ports.Gateway, log logging.Logger) *HideService {
	if log == nil {
		log = logging.Nop()
	}
	return &HideService{gateway: gateway, log: log}
}

type HideRequest struct {
	Path string
}

type HideResponse struct {
	File       domain.FileMeta
	SourcePath string
}

// Execute stores the file at req.Path and returns its metadata as the store
// recorded it, including the derived category.
func (s *HideService) Execute(ctx context.Context, req HideRequest) (*HideResponse, error) {
	path, err := filepath.Abs(req.Path)
	if err != nil {
		return nil, fmt.Errorf("invalid path %q: %w", req.Path, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read source file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", req.Path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read source file: %w", err)
	}

	name := filepath.Base(path)
	file := domain.NewFile{
		Name:                name,
		MimeType:            DetectMime(name, data),
		LastModifiedEpochMs: domain.EpochMs(info.ModTime()),
		Payload:             data,
	}

	id, err := s.gateway.Add(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("failed to hide %s: %w", name, err)
	}

	// Read back so the caller sees the category the store derived
	stored, err := s.gateway.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to read back %s: %w", name, err)
	}
	if stored == nil {
		return nil, fmt.Errorf("hidden file %d vanished: %w", id, domain.ErrNotFound)
	}

	s.log.Info(ctx, "file hidden",
		"id", id,
		"category", stored.Category,
		"size", stored.SizeBytes,
	)

	return &HideResponse{File: stored.Meta(), SourcePath: path}, nil
}

// DetectMime picks the MIME type from the extension, then from the content,
// and falls back to application/octet-stream.
func DetectMime(name string, data []byte) string {
	if ext := filepath.Ext(name); ext != "" {
		if mt := mime.TypeByExtension(ext); mt != "" {
			return domain.NormalizeMime(mt)
		}
	}

	if len(data) > 0 {
		return domain.NormalizeMime(http.DetectContentType(data))
	}
	return domain.MimeOctetStream
}
