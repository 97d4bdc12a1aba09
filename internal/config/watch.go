package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches a project root for source file changes and delivers
// debounced, glob-filtered notifications of changed paths — the mechanism
// a `--watch` driver uses to re-lex files as they're edited.
//
// Grounded on the teacher's FileWatcher/eventDebouncer
// (internal/indexing/watcher.go): one fsnotify.Watcher, per-directory
// registration, and a single in-flight debounce timer that coalesces
// bursts of events into one flush. Trimmed of the teacher's indexing
// pipeline hookup (scanner, batch progress callbacks) since this watcher's
// only job is to report which paths changed.
type Watcher struct {
	fsw      *fsnotify.Watcher
	cfg      *Config
	onChange func(paths []string)

	mu       sync.Mutex
	pending  map[string]struct{}
	timer    *time.Timer
	debounce time.Duration
}

// NewWatcher creates a Watcher over cfg's include/exclude patterns and
// debounce interval. onChange is invoked (from the debounce timer's
// goroutine) with the set of paths that changed since the last flush.
func NewWatcher(cfg *Config, onChange func(paths []string)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	debounce := time.Duration(cfg.Files.WatchDebounceMs) * time.Millisecond
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	return &Watcher{
		fsw:      fsw,
		cfg:      cfg,
		onChange: onChange,
		pending:  make(map[string]struct{}),
		debounce: debounce,
	}, nil
}

// Start registers root and its subdirectories with fsnotify and begins
// processing events in a background goroutine. ctx cancellation stops it.
func (w *Watcher) Start(ctx context.Context, root string) error {
	if err := w.addDirs(root); err != nil {
		return err
	}
	go w.run(ctx)
	return nil
}

func (w *Watcher) addDirs(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		if matchesAny(w.cfg.Exclude, rel) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

func (w *Watcher) run(ctx context.Context) {
	defer w.fsw.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.recordEvent(ev)
		case <-w.fsw.Errors:
			// Surfacing watcher errors is the caller's business, not this
			// package's; dropped events here are rare transient races and
			// the next fsnotify event for the same path self-corrects.
		}
	}
}

func (w *Watcher) recordEvent(ev fsnotify.Event) {
	if ev.Op&fsnotify.Chmod != 0 && ev.Op == fsnotify.Chmod {
		return
	}
	rel := filepath.Base(ev.Name)
	if len(w.cfg.Include) > 0 && !matchesAny(w.cfg.Include, rel) && !matchesAny(w.cfg.Include, ev.Name) {
		return
	}

	w.mu.Lock()
	w.pending[ev.Name] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
	w.mu.Unlock()
}

func (w *Watcher) flush() {
	w.mu.Lock()
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]struct{})
	w.mu.Unlock()

	if len(paths) > 0 && w.onChange != nil {
		w.onChange(paths)
	}
}
