package turbinelib

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Library holds the turbine templates from a local catalog directory of
// *.json files. The directory is watched, edits show up without a restart.
type Library struct {
	logger  *slog.Logger
	dir     string
	mutex   sync.RWMutex
	entries []Entry
	watcher *fsnotify.Watcher
}

func NewLibrary(dir string) (*Library, error) {
	lib := &Library{
		logger: slog.Default().With("module", "turbinelib"),
		dir:    dir,
	}
	if err := lib.Reload(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create turbine catalog watcher: %w", err)
	}
	lib.watcher = watcher

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove) == 0 {
					continue
				}
				if err := lib.Reload(); err != nil {
					lib.logger.Error("error reloading turbine catalog", slog.Any("error", err))
				} else {
					lib.logger.Debug("turbine catalog reloaded")
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				lib.logger.Debug("error watching turbine catalog", slog.Any("error", err))
			}
		}
	}()

	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch turbine catalog: %w", err)
	}

	return lib, nil
}

// Reload re-reads every catalog file. A single broken file fails the whole
// reload and keeps the previous snapshot.
func (l *Library) Reload() error {
	paths, err := filepath.Glob(filepath.Join(l.dir, "*.json"))
	if err != nil {
		return fmt.Errorf("globbing turbine catalog: %w", err)
	}

	var entries []Entry
	for _, path := range paths {
		fileEntries, err := loadCatalogFile(path)
		if err != nil {
			return err
		}
		entries = append(entries, fileEntries...)
	}

	l.mutex.Lock()
	l.entries = entries
	l.mutex.Unlock()

	l.logger.Debug("turbine catalog loaded",
		slog.Int("files", len(paths)),
		slog.Int("entries", len(entries)))
	return nil
}

// Entries returns the current snapshot.
func (l *Library) Entries() []Entry {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	entries := make([]Entry, len(l.entries))
	copy(entries, l.entries)
	return entries
}

func (l *Library) Close() {
	if l.watcher != nil {
		l.watcher.Close()
	}
}
