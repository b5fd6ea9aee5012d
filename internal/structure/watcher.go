package structure

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/lumigrid/lumigrid/internal/logger"
)

// ProjectWatcher reports changes to a project file on disk. It watches
// the containing directory rather than the file itself so that
// atomic-rename saves from editors are still seen. Events are delivered
// on Changes; the receiver decides when to reload, since Load must run
// in the mutation context.
type ProjectWatcher struct {
	path    string
	watcher *fsnotify.Watcher
	log     *zap.Logger

	// Changes receives one value per detected modification. The
	// channel is buffered so a slow receiver coalesces bursts instead
	// of blocking the watch loop.
	Changes chan struct{}

	done      chan struct{}
	closeOnce sync.Once
}

// WatchProject starts watching the project file at path.
func WatchProject(path string) (*ProjectWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, err
	}

	w := &ProjectWatcher{
		path:    abs,
		watcher: watcher,
		log:     logger.Named("watcher"),
		Changes: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *ProjectWatcher) run() {
	defer close(w.Changes)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Op.Has(fsnotify.Write | fsnotify.Create | fsnotify.Rename) {
				continue
			}
			w.log.Debug("project file changed", zap.String("op", event.Op.String()))
			select {
			case w.Changes <- struct{}{}:
			default:
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", zap.Error(err))
		case <-w.done:
			return
		}
	}
}

// Close stops the watcher. Changes is closed once the watch loop exits.
// Safe to call more than once.
func (w *ProjectWatcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return err
}
