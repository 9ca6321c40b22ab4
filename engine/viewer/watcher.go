package viewer

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// datasetWatcher flags new or rewritten mesh files in the active dataset directory.
// Events are collected on their own goroutine; the tick only reads a flag.
type datasetWatcher struct {
	logger  *slog.Logger
	watcher *fsnotify.Watcher
	isMesh  func(name string) bool

	mu      sync.Mutex
	dir     string
	changed atomic.Bool
	done    chan struct{}
}

func newDatasetWatcher(logger *slog.Logger, isMesh func(name string) bool) (*datasetWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	d := &datasetWatcher{
		logger:  logger,
		watcher: w,
		isMesh:  isMesh,
		done:    make(chan struct{}),
	}
	go d.run()
	return d, nil
}

// Watch replaces the watched directory.
func (d *datasetWatcher) Watch(dir string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if dir == d.dir {
		return nil
	}
	if d.dir != "" {
		// the old directory may already be gone
		_ = d.watcher.Remove(d.dir)
	}
	d.dir = ""
	if err := d.watcher.Add(dir); err != nil {
		return err
	}
	d.dir = dir
	d.changed.Store(false)
	return nil
}

// Changed reports whether a mesh file appeared since the last call.
func (d *datasetWatcher) Changed() bool {
	return d.changed.Swap(false)
}

// Close stops the watcher goroutine.
func (d *datasetWatcher) Close() error {
	err := d.watcher.Close()
	<-d.done
	return err
}

func (d *datasetWatcher) run() {
	defer close(d.done)
	for {
		select {
		case ev, ok := <-d.watcher.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if d.isMesh(ev.Name) {
				d.logger.Debug("viewer: dataset changed", "file", ev.Name, "op", ev.Op.String())
				d.changed.Store(true)
			}
		case err, ok := <-d.watcher.Errors:
			if !ok {
				return
			}
			d.logger.Warn("viewer: dataset watcher error", "err", err)
		}
	}
}
