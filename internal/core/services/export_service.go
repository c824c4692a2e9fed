package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kamal-hamza/cloak-cli/internal/core/domain"
	"github.com/kamal-hamza/cloak-cli/internal/core/ports"
	"github.com/kamal-hamza/cloak-cli/internal/handle"
	"github.com/kamal-hamza/cloak-cli/internal/logging"
)

// maxNameAttempts bounds the "name (n).ext" search
const maxNameAttempts = 10000

// ExportService writes hidden files back to the filesystem under their original name
type ExportService struct {
	gateway ports.Gateway
	handles *handle.Registry
	log     logging.Logger
}

func NewExportService(gateway ports.Gateway, handles *handle.Registry, log logging.Logger) *ExportService {
	if log == nil {
		log = logging.Nop()
	}
	return &ExportService{gateway: gateway, handles: handles, log: log}
}

type ExportRequest struct {
	ID  int64
	Dir string
}

type ExportResponse struct {
	File domain.FileMeta
	Path string
}

// Execute copies one record into req.Dir. The display handle used for the
// copy is released as soon as the bytes are written.
func (s *ExportService) Execute(ctx context.Context, req ExportRequest) (*ExportResponse, error) {
	stored, err := s.gateway.Get(ctx, req.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load hidden file %d: %w", req.ID, err)
	}
	if stored == nil {
		return nil, fmt.Errorf("hidden file %d: %w", req.ID, domain.ErrNotFound)
	}

	if err := os.MkdirAll(req.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	var dest string
	err = handle.With(s.handles, stored.Name, stored.MimeType, stored.Payload, func(h *handle.Handle) error {
		var cerr error
		dest, cerr = copyOut(h.Path(), req.Dir, exportName(stored.FileMeta))
		return cerr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to export %s: %w", stored.Name, err)
	}

	s.log.Info(ctx, "file exported", "id", stored.ID, "path", dest)
	return &ExportResponse{File: stored.Meta(), Path: dest}, nil
}

// ExportAll exports every record, continuing past individual failures
func (s *ExportService) ExportAll(ctx context.Context, dir string) ([]ExportResponse, error) {
	files, err := s.gateway.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list hidden files: %w", err)
	}
	SortNewestFirst(files)

	var (
		out  []ExportResponse
		errs []error
	)
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		resp, err := s.Execute(ctx, ExportRequest{ID: f.ID, Dir: dir})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, *resp)
	}
	return out, errors.Join(errs...)
}

// exportName strips any directory parts from the stored name
func exportName(m domain.FileMeta) string {
	name := filepath.Base(strings.ReplaceAll(m.Name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return fmt.Sprintf("cloak-%d", m.ID)
	}
	return name
}

// copyOut writes src into dir under name, never overwriting: a taken name
// becomes "name (1).ext", "name (2).ext" and so on.
func copyOut(src, dir, name string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	out, path, err := createUnique(dir, name)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return path, nil
}

func createUnique(dir, name string) (*os.File, string, error) {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	for n := 0; n < maxNameAttempts; n++ {
		candidate := name
		if n > 0 {
			candidate = fmt.Sprintf("%s (%d)%s", base, n, ext)
		}
		path := filepath.Join(dir, candidate)

		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err == nil {
			return f, path, nil
		}
		if !os.IsExist(err) {
			return nil, "", err
		}
	}
	return nil, "", fmt.Errorf("no free name for %s in %s", name, dir)
}
