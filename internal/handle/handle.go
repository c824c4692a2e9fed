// Package handle manages transient display handles: short-lived files that
// expose a stored payload to viewers and renderers. Every handle is tracked
// by a Registry and must be released; Release is safe to call repeatedly.
package handle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kamal-hamza/cloak-cli/internal/logging"
)

// ErrClosed is returned by Create after the registry has been closed
var ErrClosed = errors.New("handle registry closed")

// Handle is a revocable view of one payload
type Handle struct {
	id       string
	path     string
	name     string
	mimeType string
	reg      *Registry

	mu       sync.Mutex
	released bool
}

func (h *Handle) ID() string       { return h.id }
func (h *Handle) Path() string     { return h.path }
func (h *Handle) Name() string     { return h.name }
func (h *Handle) MimeType() string { return h.mimeType }

// Bytes reads the payload back through the handle
func (h *Handle) Bytes() ([]byte, error) {
	if h.Released() {
		return nil, fmt.Errorf("handle %s already released", h.id)
	}
	return os.ReadFile(h.path)
}

// Released reports whether Release has run
func (h *Handle) Released() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.released
}

// Release removes the backing file and unregisters the handle.
// Only the first call does any work.
func (h *Handle) Release() error {
	h.mu.Lock()
	if h.released {
		h.mu.Unlock()
		return nil
	}
	h.released = true
	h.mu.Unlock()

	h.reg.forget(h.id)

	if err := os.Remove(h.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to release handle %s: %w", h.id, err)
	}
	return nil
}

// Registry creates handles in one directory and tracks the live ones
type Registry struct {
	dir string
	log logging.Logger

	mu     sync.Mutex
	live   map[string]*Handle
	closed bool
}

// NewRegistry prepares dir (mode 0700) for handle files
func NewRegistry(dir string, log logging.Logger) (*Registry, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create handle directory: %w", err)
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Registry{
		dir:  dir,
		log:  log.With("component", "handles"),
		live: make(map[string]*Handle),
	}, nil
}

func (r *Registry) Dir() string { return r.dir }

// Create writes payload to a fresh 0600 file and registers it.
// The file keeps the extension of name so external viewers pick the right app.
func (r *Registry) Create(name, mimeType string, payload []byte) (*Handle, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrClosed
	}
	r.mu.Unlock()

	id := uuid.NewString()
	path := filepath.Join(r.dir, id+strings.ToLower(filepath.Ext(name)))

	if err := os.WriteFile(path, payload, 0600); err != nil {
		return nil, fmt.Errorf("failed to create handle: %w", err)
	}

	h := &Handle{id: id, path: path, name: name, mimeType: mimeType, reg: r}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		_ = os.Remove(path)
		return nil, ErrClosed
	}
	r.live[id] = h
	r.mu.Unlock()

	return h, nil
}

// Live returns the number of unreleased handles
func (r *Registry) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}

// Close releases every live handle and refuses further creates
func (r *Registry) Close() error {
	r.mu.Lock()
	r.closed = true
	handles := make([]*Handle, 0, len(r.live))
	for _, h := range r.live {
		handles = append(handles, h)
	}
	r.mu.Unlock()

	var errs []error
	for _, h := range handles {
		if err := h.Release(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(handles) > 0 {
		r.log.Debug(context.Background(), "released handles on close", "count", len(handles))
	}
	return errors.Join(errs...)
}

func (r *Registry) forget(id string) {
	r.mu.Lock()
	delete(r.live, id)
	r.mu.Unlock()
}

// With acquires a handle, runs fn, and releases the handle on every exit path
func With(r *Registry, name, mimeType string, payload []byte, fn func(h *Handle) error) (err error) {
	h, err := r.Create(name, mimeType, payload)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := h.Release(); rerr != nil && err == nil {
			err = rerr
		}
	}()
	return fn(h)
}

// Sweep removes handle files in dir older than maxAge.
// Files from a crashed session are never released by their registry.
func Sweep(dir string, maxAge time.Duration, now time.Time) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read handle directory: %w", err)
	}

	var removed []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) < maxAge {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if err := os.Remove(path); err == nil {
			removed = append(removed, path)
		}
	}
	return removed, nil
}

// Count reports how many handle files currently exist in dir
func Count(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range entries {
		if !e.IsDir() {
			n++
		}
	}
	return n, nil
}
