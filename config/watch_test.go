package config

import (
	"os"
	"path/filepath"
	"testing"
)

func pollWatcher(events int) *Watcher {
	return &Watcher{
		Events: make(chan string, events),
		Errors: make(chan error, 1),
	}
}

func TestPollReloadsOnMatchingEvent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slate.yaml")
	data := "canvas:\n  min_zoom: 0.5\n  max_zoom: 2\ndefaults:\n  table_rows: 3\n  table_cols: 3\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	w := pollWatcher(4)
	w.Events <- filepath.Join(t.TempDir(), "theme.yaml")
	w.Events <- path

	cfg, done := w.Poll(path)
	if done {
		t.Fatal("open channels must not report done")
	}
	if cfg == nil {
		t.Fatal("matching event should reload the config")
	}
	if cfg.Canvas.MinZoom != 0.5 {
		t.Fatalf("min zoom = %g, want the on-disk 0.5", cfg.Canvas.MinZoom)
	}
}

func TestPollIgnoresOtherFiles(t *testing.T) {
	w := pollWatcher(1)
	w.Events <- "textures.png"

	cfg, done := w.Poll("slate.yaml")
	if cfg != nil || done {
		t.Fatalf("got (%v, %v), want no reload", cfg, done)
	}
}

func TestPollEmptyChannelsReturnImmediately(t *testing.T) {
	w := pollWatcher(1)
	if cfg, done := w.Poll("slate.yaml"); cfg != nil || done {
		t.Fatalf("got (%v, %v), want (nil, false)", cfg, done)
	}
}

func TestPollReportsClosedWatcherDone(t *testing.T) {
	w := pollWatcher(1)
	close(w.Events)
	close(w.Errors)
	if _, done := w.Poll("slate.yaml"); !done {
		t.Fatal("closed channels must report done")
	}
}
