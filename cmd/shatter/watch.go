package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/chazu/shatter/internal/logging"
	"github.com/fsnotify/fsnotify"
)

// debounce collapses the burst of events an editor emits on save.
const debounce = 150 * time.Millisecond

// watchedFiles returns the non-empty paths among the config and script.
func watchedFiles(paths ...string) []string {
	var files []string
	for _, p := range paths {
		if p != "" {
			files = append(files, filepath.Clean(p))
		}
	}
	return files
}

// watch calls generate whenever one of files is written or recreated, until
// ctx is done. Parent directories are watched so atomic saves are seen.
func watch(ctx context.Context, files []string, generate func() error) error {
	if len(files) == 0 {
		return errors.New("watch: nothing to watch, set -config or -script")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()

	wanted := make(map[string]bool, len(files))
	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return fmt.Errorf("watch: %w", err)
		}
		wanted[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for d := range dirs {
		if err := w.Add(d); err != nil {
			return fmt.Errorf("watch %s: %w", d, err)
		}
	}
	logging.LogInfo("watching for changes", "files", len(files))

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case e, ok := <-w.Events:
			if !ok {
				return nil
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			abs, err := filepath.Abs(e.Name)
			if err != nil || !wanted[abs] {
				continue
			}
			logging.LogDebug("file changed", "path", e.Name)
			timer.Reset(debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logging.LogWarn("watch error", "err", err)
		case <-timer.C:
			if err := generate(); err != nil {
				logging.LogError("generation failed", "err", err)
			}
		case <-ctx.Done():
			return nil
		}
	}
}
