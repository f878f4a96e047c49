// Package watcher signals when new files land in an ingest directory.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/mediamind/internal/core/ports/driven"
	"github.com/custodia-labs/mediamind/internal/logger"
)

// Ensure Watcher implements the interface.
var _ driven.ChangeNotifier = (*Watcher)(nil)

// DefaultSettle is how long the directory must be quiet before a burst of
// events is reported.
const DefaultSettle = 2 * time.Second

// Watcher watches a directory tree with fsnotify.
type Watcher struct {
	settle time.Duration
}

// New creates a watcher. A non-positive settle uses DefaultSettle.
func New(settle time.Duration) *Watcher {
	if settle <= 0 {
		settle = DefaultSettle
	}
	return &Watcher{settle: settle}
}

// Watch emits once per settled burst of create or write events under dir.
// The channel is closed when ctx is done.
func (w *Watcher) Watch(ctx context.Context, dir string) (<-chan struct{}, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root path error: %s is not a directory", dir)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := addTree(fw, dir); err != nil {
		fw.Close()
		return nil, err
	}

	out := make(chan struct{}, 1)
	go w.loop(ctx, fw, out)
	return out, nil
}

func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher, out chan<- struct{}) {
	defer close(out)
	defer fw.Close()

	timer := time.NewTimer(w.settle)
	timer.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return

		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if !relevant(event) {
				continue
			}
			// New subdirectories are watched too.
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addTree(fw, event.Name); err != nil {
						logger.Warn("Watch %s: %v", event.Name, err)
					}
				}
			}
			pending = true
			timer.Reset(w.settle)

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			logger.Warn("Watcher: %v", err)

		case <-timer.C:
			if !pending {
				continue
			}
			pending = false
			select {
			case out <- struct{}{}:
			default:
				// A signal is already queued.
			}
		}
	}
}

// relevant reports whether an event can mean a new or changed file.
func relevant(event fsnotify.Event) bool {
	if isHidden(event.Name) {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write) || event.Has(fsnotify.Rename)
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

// addTree watches root and every non-hidden directory beneath it.
func addTree(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && isHidden(path) {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}
