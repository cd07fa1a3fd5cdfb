package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/harshvasudeva/dialog-companion/logger"
)

// reloadDelay coalesces the bursts of events editors produce on save.
const reloadDelay = 200 * time.Millisecond

// Watch reloads config.toml whenever it changes on disk and calls onChange
// with the new config when any value differs. Load must have been called.
// The returned function stops watching.
func Watch(onChange func(Config)) (stop func(), err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	path := filepath.Clean(ConfigPath())
	// Watch the directory: Save replaces the file by rename.
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, err
	}
	logger.Info("Watching %s for changes", path)

	done := make(chan struct{})
	go func() {
		var timer *time.Timer
		for {
			select {
			case <-done:
				if timer != nil {
					timer.Stop()
				}
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != path {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(reloadDelay, func() { reload(onChange) })
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Warn("Config watcher error: %v", err)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			w.Close()
		})
	}, nil
}

func reload(onChange func(Config)) {
	changed, err := Reload()
	if err != nil {
		logger.Warn("Config reload failed, keeping current settings: %v", err)
		return
	}
	if !changed {
		return
	}
	logger.Info("Config reloaded from %s", ConfigPath())
	onChange(Get())
}
