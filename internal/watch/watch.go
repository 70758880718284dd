// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package watch runs a handler for every filing document that lands in an
// inbox directory.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/pdiddy/formd/internal/convert"
)

// DefaultSettle is how long a file must stay quiet before it is handled.
const DefaultSettle = 250 * time.Millisecond

// Handler processes one settled document. Errors are logged; they never
// stop the watcher.
type Handler func(ctx context.Context, path string) error

// Watcher delivers created or rewritten documents in dir to a Handler.
// Handler calls are serialized on the Run goroutine.
type Watcher struct {
	dir    string
	handle Handler
	log    *zap.Logger
	settle time.Duration
}

// New creates a watcher for dir. A zero settle uses DefaultSettle.
func New(dir string, handle Handler, log *zap.Logger, settle time.Duration) *Watcher {
	if log == nil {
		log = zap.NewNop()
	}
	if settle <= 0 {
		settle = DefaultSettle
	}
	return &Watcher{dir: dir, handle: handle, log: log, settle: settle}
}

// Run watches until ctx is cancelled. It returns nil on cancellation and
// an error only when the watch cannot be set up or fsnotify shuts down.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}
	w.log.Info("watching inbox", zap.String("dir", w.dir))

	ready := make(chan string, 16)
	deb := newDebouncer(w.settle)
	defer deb.stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			if !relevant(event) {
				continue
			}
			w.log.Debug("event received", zap.String("path", event.Name), zap.String("op", event.Op.String()))
			deb.add(event.Name, func(path string) {
				select {
				case ready <- path:
				case <-ctx.Done():
				}
			})

		case path := <-ready:
			if err := w.handle(ctx, path); err != nil {
				w.log.Error("handling document failed", zap.String("path", path), zap.Error(err))
				continue
			}
			w.log.Debug("document handled", zap.String("path", path))

		case werr, ok := <-fw.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.log.Error("fsnotify error", zap.Error(werr))
		}
	}
}

// relevant keeps creates and writes of convertible, non-hidden files.
func relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~$") {
		return false
	}
	return convert.Supported(base)
}

// debouncer coalesces bursts of events per path into one callback fired
// after the path has been quiet for delay.
type debouncer struct {
	mu     sync.Mutex
	delay  time.Duration
	timers map[string]*time.Timer
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{delay: delay, timers: make(map[string]*time.Timer)}
}

func (d *debouncer) add(path string, fire func(string)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.timers[path]; ok {
		t.Stop()
	}
	d.timers[path] = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		delete(d.timers, path)
		d.mu.Unlock()
		fire(path)
	})
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for path, t := range d.timers {
		t.Stop()
		delete(d.timers, path)
	}
}
