package jsonfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"vocabnotes/internal/contextutil"
	"vocabnotes/internal/notes"
)

// DebounceInterval is how long the watcher waits for a burst of file events
// to settle before reloading.
const DebounceInterval = 50 * time.Millisecond

// Subscribe calls onChange with the full sequence whenever another process
// rewrites the file. Writes made by this Store are not reported. The
// directory is watched rather than the file, since atomic writes replace the
// file's inode. onChange is never called concurrently with itself.
func (s *Store) Subscribe(ctx context.Context, onChange func([]notes.Note)) (func(), error) {
	logger := contextutil.LoggerFromContext(ctx).With("path", s.path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(s.path), err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	var (
		wg      sync.WaitGroup
		timerMu sync.Mutex
		timer   *time.Timer
	)

	reload := func() {
		data, err := os.ReadFile(s.path)
		if err != nil {
			if !os.IsNotExist(err) {
				logger.WarnContext(runCtx, "failed to read changed notes file", "error", err)
			}
			return
		}
		if s.ownWrite(data) {
			return
		}
		ns, err := decode(data)
		if err != nil {
			logger.WarnContext(runCtx, "ignoring unreadable notes file", "error", err)
			return
		}
		if runCtx.Err() != nil {
			return
		}
		logger.DebugContext(runCtx, "notes file changed externally", "count", len(ns))
		onChange(ns)
	}

	schedule := func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(DebounceInterval, func() {
			timerMu.Lock()
			defer timerMu.Unlock()
			reload()
		})
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer watcher.Close()
		for {
			select {
			case <-runCtx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !s.relevant(event) {
					continue
				}
				schedule()
			case werr, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.ErrorContext(runCtx, "fsnotify error", "error", werr)
			}
		}
	}()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			cancel()
			wg.Wait()
			timerMu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timerMu.Unlock()
		})
	}
	return stop, nil
}

// relevant reports whether event may have changed the backing file.
func (s *Store) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != filepath.Clean(s.path) {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}
