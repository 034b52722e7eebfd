package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// Watch reloads path whenever it changes and passes each valid config to
// apply. Invalid edits are logged and skipped. Watch blocks until ctx ends.
func Watch(ctx context.Context, path string, apply func(Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config watch: %w", err)
	}
	defer watcher.Close()

	// Watch the directory so editors that replace the file are still seen.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("config watch %s: %w", dir, err)
	}
	target := filepath.Clean(path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			cfg, err := Load(path)
			if err != nil {
				log.Warn().Err(err).Str("path", path).Msg("config reload skipped")
				continue
			}
			log.Info().Str("path", path).Msg("config reloaded")
			apply(cfg)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("config watch error")
		}
	}
}
