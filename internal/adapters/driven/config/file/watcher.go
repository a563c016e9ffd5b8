package file

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/sercha-wiki/internal/logger"
)

// PromptWatcher reloads a PromptStore when files in its directory change.
type PromptWatcher struct {
	store    *PromptStore
	onReload func()
}

// NewPromptWatcher creates a watcher for store. onReload, if not nil,
// is called after every reload.
func NewPromptWatcher(store *PromptStore, onReload func()) *PromptWatcher {
	return &PromptWatcher{store: store, onReload: onReload}
}

// Watch starts watching the prompt directory. It returns once the watch is
// established; events are handled in the background until ctx is done.
func (w *PromptWatcher) Watch(ctx context.Context) error {
	// The directory must exist before it can be watched.
	w.store.initOnce.Do(w.store.initialise)
	if w.store.initErr != nil {
		return w.store.initErr
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	if err := watcher.Add(w.store.Dir()); err != nil {
		watcher.Close()
		return fmt.Errorf("watching %s: %w", w.store.Dir(), err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				w.handleEvent(event)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("prompts: watch error: %v", err)
			}
		}
	}()

	return nil
}

// handleEvent reloads the store for changes to prompt files.
// It reports whether a reload happened.
func (w *PromptWatcher) handleEvent(event fsnotify.Event) bool {
	if !strings.HasSuffix(event.Name, PromptExt) || strings.HasPrefix(filepath.Base(event.Name), ".") {
		return false
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	logger.Debug("prompts: %s changed, reloading", filepath.Base(event.Name))
	w.store.Reload()
	if w.onReload != nil {
		w.onReload()
	}
	return true
}
