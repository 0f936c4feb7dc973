package mining

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ramonehamilton/Dota-Draft-Companion/internal/logging"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/recommend"
)

// DefaultDebounce coalesces bursts of file events into one reload.
const DefaultDebounce = 250 * time.Millisecond

// Watcher reloads a pattern file into a PatternStore whenever it changes.
type Watcher struct {
	path     string
	store    *recommend.PatternStore
	debounce time.Duration

	// OnReload is called after every successful swap.
	OnReload func(set *recommend.PatternSet)

	stopOnce sync.Once
	stopChan chan struct{}
}

// NewWatcher creates a watcher for path that swaps store on change.
func NewWatcher(path string, store *recommend.PatternStore) *Watcher {
	return &Watcher{
		path:     filepath.Clean(path),
		store:    store,
		debounce: DefaultDebounce,
		stopChan: make(chan struct{}),
	}
}

// Reload reads the file and swaps the store. A missing file loads an empty
// set. When the file holds exactly the active patterns, as it does right after
// a refresh exports them, the active set is kept and swapped is false.
func (w *Watcher) Reload() (set *recommend.PatternSet, swapped bool, err error) {
	patterns, err := ReadPatternFile(w.path)
	if err != nil {
		return nil, false, err
	}

	if current := w.store.Load(); current.SamePatterns(patterns) {
		return current, false, nil
	}

	set, err = recommend.NewPatternSet(patterns)
	if err != nil {
		return nil, false, fmt.Errorf("invalid pattern file %s: %w", w.path, err)
	}
	set.Source = "file"
	set.CreatedAt = time.Now().UTC()

	w.store.Replace(set)
	if w.OnReload != nil {
		w.OnReload(set)
	}
	return set, true, nil
}

// Run watches the file's directory until ctx is done or Stop is called.
// Atomic replacements (rename into place) are picked up as well as writes.
func (w *Watcher) Run(ctx context.Context) (err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if closeErr := watcher.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	logging.Info().Str("path", w.path).Msg("Watching pattern file")

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopChan:
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				timer.Reset(w.debounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.Warn().Err(err).Msg("Pattern file watcher error")
		case <-timer.C:
			set, swapped, err := w.Reload()
			if err != nil {
				logging.Warn().Err(err).Str("path", w.path).Msg("Pattern reload failed, keeping current set")
				continue
			}
			if !swapped {
				logging.Debug().Str("set_id", set.ID).Msg("Pattern file matches active set")
				continue
			}
			logging.Info().Int("patterns", set.Len()).Msg("Pattern file reloaded")
		}
	}
}

// Stop ends Run.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopChan) })
}
