package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Overlay watches a JSON file of settings overrides and applies them to a
// Settings table on every write, so "changes to settings are observed on
// each read" (spec §4.11) holds even for values backed by a file instead of
// an environment variable. Grounded on xg2g/internal/config/reload.go's
// directory-level fsnotify watch, which survives editors that replace the
// file via temp+rename instead of writing in place.
type Overlay struct {
	settings *Settings
	path     string
	watcher  *fsnotify.Watcher
}

// NewOverlay loads path once (if present) and returns an Overlay ready to
// Start watching. path may not exist yet; a missing file is not an error.
func NewOverlay(settings *Settings, path string) (*Overlay, error) {
	o := &Overlay{settings: settings, path: path}
	if err := o.load(); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *Overlay) load() error {
	data, err := os.ReadFile(o.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read overlay %s: %w", o.path, err)
	}

	var overrides map[string]string
	if err := json.Unmarshal(data, &overrides); err != nil {
		return fmt.Errorf("parse overlay %s: %w", o.path, err)
	}
	for k, v := range overrides {
		o.settings.Store(k, v)
	}
	return nil
}

// Start watches the overlay file's directory for changes and reloads on
// every event, logging failures but never terminating the process over a
// malformed overlay file — it simply keeps the last-known-good values.
func (o *Overlay) Start(ctx context.Context, logger zerolog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}
	o.watcher = watcher

	dir := filepath.Dir(o.path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch config dir %s: %w", dir, err)
	}

	go o.loop(ctx, logger)
	return nil
}

func (o *Overlay) loop(ctx context.Context, logger zerolog.Logger) {
	base := filepath.Base(o.path)
	for {
		select {
		case <-ctx.Done():
			_ = o.watcher.Close()
			return
		case ev, ok := <-o.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != base {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := o.load(); err != nil {
				logger.Warn().Err(err).Str("path", o.path).Msg("config overlay reload failed, keeping previous values")
				continue
			}
			logger.Info().Str("path", o.path).Msg("config overlay reloaded")
		case err, ok := <-o.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn().Err(err).Msg("config watcher error")
		}
	}
}

// Close stops the watcher.
func (o *Overlay) Close() error {
	if o.watcher == nil {
		return nil
	}
	return o.watcher.Close()
}
