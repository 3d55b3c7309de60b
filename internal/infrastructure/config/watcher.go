package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/doeshing/sns-guardian/internal/domain"
	"github.com/doeshing/sns-guardian/internal/ports"
)

const reloadDelay = 250 * time.Millisecond

// Validator checks a freshly loaded configuration before it is installed.
type Validator func(domain.Config) error

// Watcher reloads the config file into a Store whenever it changes on disk.
type Watcher struct {
	loader   *FileLoader
	store    *Store
	validate Validator
	logger   ports.Logger
	watcher  *fsnotify.Watcher

	mu      sync.Mutex
	pending *time.Timer
}

// NewWatcher watches the directory holding the loader's config file, so editors that
// replace the file by rename are still seen.
func NewWatcher(loader *FileLoader, store *Store, validate Validator, logger ports.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	dir := filepath.Dir(loader.Path())
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %q: %w", dir, err)
	}
	return &Watcher{loader: loader, store: store, validate: validate, logger: logger, watcher: fw}, nil
}

// Run handles file events until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()
	target := filepath.Clean(w.loader.Path())

	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			if w.pending != nil {
				w.pending.Stop()
			}
			w.mu.Unlock()
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				w.schedule(ctx)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watcher error", map[string]interface{}{"error": err.Error()})
		}
	}
}

func (w *Watcher) schedule(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending != nil {
		w.pending.Stop()
	}
	w.pending = time.AfterFunc(reloadDelay, func() { w.reload(ctx) })
}

func (w *Watcher) reload(ctx context.Context) {
	cfg, err := w.loader.Load(ctx)
	if err != nil {
		w.logger.Warn("config reload failed, keeping previous settings", map[string]interface{}{"error": err.Error()})
		return
	}
	if w.validate != nil {
		if err := w.validate(cfg); err != nil {
			w.logger.Warn("reloaded config invalid, keeping previous settings", map[string]interface{}{"error": err.Error()})
			return
		}
	}
	w.store.Replace(cfg)
	w.logger.Info("config reloaded", map[string]interface{}{"provider": cfg.Settings.Provider})
}
