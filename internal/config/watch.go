package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"houndgrip/internal/eventbus"
)

// Watch reloads the config file whenever it changes on disk until ctx is done.
// Each successful reload calls onChange (if set), publishes ConfigReloaded
// when the service has a bus, then updates prefs. A file that fails to parse is
// logged and skipped; the previous values stay in effect.
//
// The parent directory is watched rather than the file so that editors which
// save by renaming a temp file over the original are still seen.
func (cs *configService) Watch(ctx context.Context, prefs *Preferences, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(cs.filePath)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(cs.filePath), err)
	}
	target := filepath.Clean(cs.filePath)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cs.reload(prefs, onChange)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("Config: watcher error: %v", err)
		}
	}
}

func (cs *configService) reload(prefs *Preferences, onChange func(*Config)) {
	// an empty file is a save in progress
	if info, err := os.Stat(cs.filePath); err != nil || info.Size() == 0 {
		return
	}
	cfg, err := cs.LoadFromPath(cs.filePath)
	if err != nil {
		log.Printf("Config: reload of %s skipped: %v", cs.filePath, err)
		return
	}
	log.Printf("Config: reloaded %s", cs.filePath)

	if onChange != nil {
		onChange(cfg)
	}
	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigReloadedEvent{Path: cs.filePath})
	}
	if prefs != nil {
		prefs.Set(cfg.Preferences)
	}
}
