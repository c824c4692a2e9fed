// Package inbox hides files dropped into a watched directory.
package inbox

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kamal-hamza/cloak-cli/internal/logging"
)

// DefaultDebounce is how long a path must stay quiet before it is handled
const DefaultDebounce = 500 * time.Millisecond

// Handler receives a settled file path. It must not remove the file.
type Handler func(ctx context.Context, path string) error

// Watcher debounces fsnotify events per path and hands settled regular
// files to a Handler. Each version of a file (size and mtime) is handled once.
type Watcher struct {
	dir      string
	debounce time.Duration
	handle   Handler
	log      logging.Logger

	mu      sync.Mutex
	timers  map[string]*time.Timer
	handled map[string]fileVersion
	stopped bool
	wg      sync.WaitGroup
}

type fileVersion struct {
	size    int64
	modTime time.Time
}

func New(dir string, debounce time.Duration, handle Handler, log logging.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Watcher{
		dir:      dir,
		debounce: debounce,
		handle:   handle,
		log:      log,
		timers:   make(map[string]*time.Timer),
		handled:  make(map[string]fileVersion),
	}
}

// Dir returns the watched directory
func (w *Watcher) Dir() string { return w.dir }

// Run blocks until ctx is done or the watcher fails. Pending timers are
// stopped and in-flight handlers are waited for before it returns.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.log.Info(ctx, "watching inbox", "dir", w.dir, "debounce", w.debounce)

	defer w.stop()

	for {
		select {
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if Ignored(event.Name) {
				continue
			}
			w.schedule(ctx, event.Name)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn(ctx, "watcher error", "error", err)

		case <-ctx.Done():
			return nil
		}
	}
}

// Ignored reports whether a path is a hidden, editor-temporary or partial download file
func Ignored(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~") {
		return true
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".part", ".crdownload", ".tmp", ".swp":
		return true
	}
	return false
}

func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.fire(ctx, path)
	})
}

func (w *Watcher) fire(ctx context.Context, path string) {
	w.mu.Lock()
	delete(w.timers, path)
	if w.stopped || ctx.Err() != nil {
		w.mu.Unlock()
		return
	}
	w.wg.Add(1)
	w.mu.Unlock()
	defer w.wg.Done()

	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return
	}
	version := fileVersion{size: info.Size(), modTime: info.ModTime()}

	w.mu.Lock()
	if prev, ok := w.handled[path]; ok && prev == version {
		w.mu.Unlock()
		return
	}
	w.handled[path] = version
	w.mu.Unlock()

	if err := w.handle(ctx, path); err != nil {
		w.log.Error(ctx, "inbox handler failed", "path", path, "error", err)
		// Let a later write retry the same file
		w.mu.Lock()
		delete(w.handled, path)
		w.mu.Unlock()
		return
	}
	w.log.Debug(ctx, "inbox file handled", "path", path)
}

func (w *Watcher) stop() {
	w.mu.Lock()
	w.stopped = true
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
	w.mu.Unlock()
	w.wg.Wait()
}
