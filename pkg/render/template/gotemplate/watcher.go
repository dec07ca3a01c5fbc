package gotemplate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/goliatone/go-staffdesk/pkg/render/template"
)

// Watcher resets an engine's template cache whenever a file under the
// override directory changes, so edits show up without a restart.
type Watcher struct {
	mu      sync.Mutex
	watcher *fsnotify.Watcher
	dir     string
	target  template.Resetter
	logger  *zap.Logger
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// NewWatcher creates a watcher for dir. The watcher is idle until Start.
func NewWatcher(dir string, target template.Resetter, logger *zap.Logger) (*Watcher, error) {
	if dir == "" {
		return nil, errors.New("gotemplate: watch dir is required")
	}
	if target == nil {
		return nil, errors.New("gotemplate: watch target is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("gotemplate: create watcher: %w", err)
	}
	return &Watcher{
		watcher: fw,
		dir:     dir,
		target:  target,
		logger:  logger.With(zap.String("component", "template_watcher")),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}, nil
}

// Start registers dir and its subdirectories and begins processing events
// in a goroutine. It does not block.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	err := filepath.WalkDir(w.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("gotemplate: watch %s: %w", w.dir, err)
	}

	w.running = true
	w.logger.Info("watching templates", zap.String("dir", w.dir))
	go w.run(ctx)
	return nil
}

// Stop ends the event loop and releases the underlying watcher. Calling
// Stop on a watcher that never started only closes it.
func (w *Watcher) Stop() {
	w.mu.Lock()
	running := w.running
	w.running = false
	w.mu.Unlock()

	if running {
		close(w.stopCh)
		<-w.doneCh
	}
	if err := w.watcher.Close(); err != nil {
		w.logger.Warn("closing template watcher", zap.Error(err))
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("template watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.watcher.Add(event.Name); err != nil {
				w.logger.Warn("watching new template dir", zap.String("dir", event.Name), zap.Error(err))
			}
		}
	}

	w.target.Reset()
	w.logger.Debug("template cache reset",
		zap.String("path", event.Name),
		zap.String("op", event.Op.String()),
	)
}
