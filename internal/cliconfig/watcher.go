package cliconfig

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/fixship/internal/ports"
)

// reloadDebounce coalesces the editor write-rename bursts fsnotify reports
// into a single reload.
const reloadDebounce = 100 * time.Millisecond

// Watcher monitors the config file via fsnotify and delivers the merged
// configuration to a callback on every change. Only the fields the callback
// chooses to apply take effect at runtime.
type Watcher struct {
	path     string
	base     Config
	onReload func(Config)
	logger   ports.Logger

	mu       sync.Mutex
	debounce *time.Timer
}

// NewWatcher creates a watcher for the config file at path. Reloaded files
// are applied on top of base, so fields absent from the file keep their
// startup values.
func NewWatcher(path string, base Config, onReload func(Config), logger ports.Logger) *Watcher {
	return &Watcher{
		path:     path,
		base:     base,
		onReload: onReload,
		logger:   logger,
	}
}

// Run watches the config file's directory until ctx is canceled. The
// directory is watched rather than the file itself so atomic rewrites
// (write to temp, rename over) keep being observed.
func (w *Watcher) Run(ctx context.Context) {
	if w.path == "" {
		return
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.logger.Warn("config watcher disabled", ports.Err(err))
		return
	}
	defer watcher.Close()

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		w.logger.Warn("config watcher disabled",
			ports.String("dir", dir),
			ports.Err(err),
		)
		return
	}

	w.logger.Info("watching config file", ports.String("path", w.path))

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.scheduleReload()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", ports.Err(err))
		}
	}
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(reloadDebounce, w.reload)
}

func (w *Watcher) reload() {
	fc, err := LoadFileConfig(w.path)
	if err != nil {
		w.logger.Warn("config reload failed",
			ports.String("path", w.path),
			ports.Err(err),
		)
		return
	}

	cfg := w.base
	if err := ApplyFileConfig(&cfg, fc, nil); err != nil {
		w.logger.Warn("config reload rejected",
			ports.String("path", w.path),
			ports.Err(err),
		)
		return
	}
	if err := cfg.Validate(); err != nil {
		w.logger.Warn("config reload rejected",
			ports.String("path", w.path),
			ports.Err(err),
		)
		return
	}

	w.logger.Info("config file reloaded", ports.String("path", w.path))
	w.onReload(cfg)
}
