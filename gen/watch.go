package gen

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceInterval is how long after the last write event the watcher
// waits before regenerating, so editors that save in bursts trigger a
// single run.
const debounceInterval = 500 * time.Millisecond

// Watcher reruns generation whenever the schema file changes.
type Watcher struct {
	file     string
	callback func() error
	watcher  *fsnotify.Watcher
	log      *slog.Logger
	done     chan struct{}
}

// NewWatcher creates a watcher on the given schema file. The callback
// runs once on Start and again after each change. An optional logger
// overrides slog.Default for watch diagnostics.
func NewWatcher(file string, callback func() error, logger ...*slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("gen: create watcher: %w", err)
	}
	abs, err := filepath.Abs(file)
	if err != nil {
		fsw.Close()
		return nil, fmt.Errorf("gen: resolve schema path: %w", err)
	}
	// Watch the directory. Editors replace files on save, and a watch
	// on the file itself is lost across the rename.
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("gen: watch directory: %w", err)
	}
	w := &Watcher{
		file:     abs,
		callback: callback,
		watcher:  fsw,
		log:      slog.Default(),
		done:     make(chan struct{}),
	}
	if len(logger) > 0 && logger[0] != nil {
		w.log = logger[0]
	}
	return w, nil
}

// Start runs the callback once, then watches for changes in the
// background until Stop is called.
func (w *Watcher) Start() error {
	if err := w.callback(); err != nil {
		return fmt.Errorf("gen: initial generation: %w", err)
	}
	go w.loop()
	return nil
}

func (w *Watcher) loop() {
	debounce := time.NewTimer(debounceInterval)
	debounce.Stop()
	var fire <-chan time.Time
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || abs != w.file {
				continue
			}
			// Debounce: reset the timer on each event.
			debounce.Reset(debounceInterval)
			fire = debounce.C
		case <-fire:
			fire = nil
			w.log.Info("schema changed, regenerating", "file", w.file)
			if err := w.callback(); err != nil {
				w.log.Error("regeneration failed", "file", w.file, "error", err)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Error("watch error", "error", err)
		case <-w.done:
			return
		}
	}
}

// Stop ends watching and releases the underlying watcher.
func (w *Watcher) Stop() error {
	close(w.done)
	return w.watcher.Close()
}

// Watch wires Generate as the change callback for the given config.
// The caller starts and stops the returned watcher.
func Watch(ctx context.Context, cfg *Config, logger ...*slog.Logger) (*Watcher, error) {
	if cfg == nil || cfg.Schema == "" {
		return nil, NewConfigError("Schema", nil, "missing schema file in config")
	}
	return NewWatcher(cfg.Schema, func() error {
		return Generate(ctx, cfg)
	}, logger...)
}
