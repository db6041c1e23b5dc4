package config

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher reloads a config file whenever it changes on disk and hands the
// validated result to a callback. Invalid edits are logged and skipped so the
// last good configuration stays in effect.
type Watcher interface {
	// Current returns the most recent valid configuration.
	Current() *Config

	// Close stops watching. It is safe to call more than once.
	Close() error
}

type watcherImpl struct {
	mu       sync.RWMutex
	path     string
	current  *Config
	onChange func(*Config)
	watcher  *fsnotify.Watcher
	logger   zerolog.Logger
	done     chan struct{}
	once     sync.Once
}

var _ Watcher = &watcherImpl{}

// Watch loads path once and then watches its directory for writes.
// The directory is watched rather than the file so editors that replace the
// file atomically are still picked up.
//
// Parameters:
//   - path: the TOML file to watch
//   - logger: destination for reload diagnostics
//   - onChange: invoked from the watcher goroutine with each new valid config; may be nil
//
// Returns:
//   - Watcher: the running watcher
//   - error: initial load or watcher setup failure
func Watch(path string, logger zerolog.Logger, onChange func(*Config)) (Watcher, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	w := &watcherImpl{
		path:     abs,
		current:  cfg,
		onChange: onChange,
		watcher:  fw,
		logger:   logger.With().Str("component", "config").Logger(),
		done:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *watcherImpl) Current() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

func (w *watcherImpl) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return err
}

func (w *watcherImpl) loop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error().Err(err).Msg("config watcher error")
		}
	}
}

func (w *watcherImpl) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.logger.Warn().Err(err).Str("path", w.path).Msg("config reload rejected")
		return
	}

	w.mu.Lock()
	w.current = cfg
	w.mu.Unlock()

	w.logger.Info().Str("path", w.path).Msg("config reloaded")
	if w.onChange != nil {
		w.onChange(cfg)
	}
}
