package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vk/prayerclock/internal/ctxlog"
)

// DefaultDebounce is how long a settings file must stay quiet before a
// change is reloaded.
const DefaultDebounce = 250 * time.Millisecond

// Watcher reloads a settings file whenever it changes on disk. The parent
// directory is watched so that editors which replace the file on save are
// still seen.
type Watcher struct {
	Path     string
	Debounce time.Duration
	Updates  <-chan *Settings // Read-only external channel

	updates  chan *Settings
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	watcher  *fsnotify.Watcher
}

// NewWatcher creates a watcher for the settings file at path.
func NewWatcher(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ch := make(chan *Settings, 1)
	return &Watcher{
		Path:     abs,
		Debounce: DefaultDebounce,
		Updates:  ch,
		updates:  ch,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		watcher:  fw,
	}, nil
}

// Start begins watching. The loop ends when ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(filepath.Dir(w.Path)); err != nil {
		return err
	}
	go w.loop(ctx)
	return nil
}

// Stop closes the watcher and waits for the loop to exit. It must only be
// called after a successful Start.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stop)
		w.watcher.Close()
	})
	<-w.done
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)
	defer close(w.updates)
	logger := ctxlog.FromContext(ctx)

	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	ticker := time.NewTicker(debounce / 2)
	defer ticker.Stop()

	// Zero means no change is waiting.
	var pending time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.Path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				pending = time.Now()
			}

		case <-ticker.C:
			if pending.IsZero() || time.Since(pending) < debounce {
				continue
			}
			pending = time.Time{}
			s, err := Load(ctx, w.Path)
			if err != nil {
				logger.Warn("Settings file changed but could not be loaded.", "path", w.Path, "error", err)
				continue
			}
			logger.Info("Settings file changed, reloading.", "path", w.Path)
			select {
			case w.updates <- s:
			case <-ctx.Done():
				return
			case <-w.stop:
				return
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Settings watcher error.", "error", err)
		}
	}
}
