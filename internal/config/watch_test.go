package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherDebouncesAndReportsChangedPath(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "main.ml")
	if err := os.WriteFile(target, []byte("let x = 1;"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig(dir)
	cfg.Files.WatchDebounceMs = 20
	cfg.Include = []string{"*.ml"}

	changed := make(chan []string, 1)
	w, err := NewWatcher(cfg, func(paths []string) {
		select {
		case changed <- paths:
		default:
		}
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx, dir); err != nil {
		t.Fatal(err)
	}

	// Two rapid writes should collapse into one debounced notification.
	if err := os.WriteFile(target, []byte("let x = 2;"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(target, []byte("let x = 3;"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case paths := <-changed:
		if len(paths) == 0 {
			t.Error("expected at least one changed path")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a debounced change notification")
	}
}
