package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/openclaw/agenthook/internal/registry"
	"github.com/openclaw/agenthook/internal/validator"
)

// Run watches both tier directories and re-validates any definition that
// changes. Runs until interrupted.
func (w *WatchCmd) Run(app *App) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer watcher.Close()

	watched := 0
	for _, dir := range []string{app.Finder.WorkspaceDir, app.Finder.UserDir} {
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			app.Log.Warn("cannot watch directory",
				map[string]interface{}{"dir": dir, "error": err.Error()})
			continue
		}
		fmt.Printf("watching %s\n", dir)
		watched++
	}
	if watched == 0 {
		return fmt.Errorf("no agent directories to watch: %w",
			os.ErrNotExist)
	}

	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if !strings.HasSuffix(ev.Name, registry.AgentFileExt) {
				continue
			}
			def, err := app.Validator.ValidateFile(ev.Name, validator.DepthStrict)
			if err != nil {
				fmt.Printf("INVALID %s: %v\n", ev.Name, err)
				continue
			}
			fmt.Printf("ok      %s (%s)\n", ev.Name, def.Name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			app.Log.Warn("watch error", map[string]interface{}{"error": err.Error()})
		}
	}
}
