package config

import (
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports config and script file changes under a set of
// directories, deduplicating editor save bursts.
type Watcher struct {
	watcher *fsnotify.Watcher
	Events  chan string
	Errors  chan error
	closeCh chan struct{}
	once    sync.Once
}

func NewWatcher(dirs ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	watcher := &Watcher{
		watcher: w,
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
	})
	return err
}

// run owns Events and Errors and closes them on exit, so Close never
// races a pending send.
func (w *Watcher) run() {
	defer close(w.Events)
	defer close(w.Errors)
	last := make(map[string]time.Time)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !isConfigFile(event.Name) && !isScriptFile(event.Name) {
				continue
			}
			now := time.Now()
			if t, ok := last[event.Name]; ok && now.Sub(t) < 100*time.Millisecond {
				continue
			}
			last[event.Name] = now
			w.Events <- event.Name
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.Errors <- err
		case <-w.closeCh:
			return
		}
	}
}

// Poll drains pending change events without blocking. When the watched
// config file itself changed it loads and returns the fresh config (the
// last one wins if several writes queued up); invalid intermediate saves
// are logged and skipped. done reports that the watcher is closed.
func (w *Watcher) Poll(path string) (cfg *Config, done bool) {
	for {
		select {
		case name, ok := <-w.Events:
			if !ok {
				return cfg, true
			}
			if filepath.Base(name) != filepath.Base(path) {
				continue
			}
			c, err := Load(path)
			if err != nil {
				log.Printf("config: reload %s: %v", path, err)
				continue
			}
			cfg = c
		case err, ok := <-w.Errors:
			if !ok {
				return cfg, true
			}
			if err != nil {
				log.Printf("config: watch: %v", err)
			}
		default:
			return cfg, false
		}
	}
}

func isConfigFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func isScriptFile(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".tengo"
}
