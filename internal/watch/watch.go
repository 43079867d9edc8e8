// Package watch re-reads save slots when the game writes them.
package watch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/verte-zerg/celestat/internal/save"
)

// DefaultDebounce is the quiet period after the last write before a slot is reloaded.
const DefaultDebounce = 500 * time.Millisecond

const tickInterval = 100 * time.Millisecond

// Handler receives a freshly loaded slot. Slots that fail to decode arrive with Err set.
type Handler func(ctx context.Context, slot save.Slot)

// Watcher watches a saves directory for slot writes.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	dir      string
	debounce time.Duration
	pending  map[string]time.Time
	handler  Handler
	logger   *zap.Logger
}

// New creates a watcher on dir. The directory is registered immediately so
// writes made after New returns are observed.
func New(dir string, debounce time.Duration, handler Handler, logger *zap.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		if cerr := fw.Close(); cerr != nil {
			// Best-effort close.
			_ = cerr
		}
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	return &Watcher{
		watcher:  fw,
		dir:      dir,
		debounce: debounce,
		pending:  make(map[string]time.Time),
		handler:  handler,
		logger:   logger,
	}, nil
}

// Run processes events until ctx is done and closes the underlying watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() {
		if err := w.watcher.Close(); err != nil {
			w.logger.Warn("failed to close watcher", zap.Error(err))
		}
	}()

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	w.logger.Info("watching saves", zap.String("dir", w.dir), zap.Duration("debounce", w.debounce))
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", zap.Error(err))
		case now := <-ticker.C:
			w.flush(ctx, now)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !save.IsSlotFile(event.Name) {
		return
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	w.logger.Debug("slot changed", zap.String("path", event.Name), zap.Stringer("op", event.Op))
	w.mu.Lock()
	w.pending[event.Name] = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) flush(ctx context.Context, now time.Time) {
	var ready []string
	w.mu.Lock()
	for path, last := range w.pending {
		if now.Sub(last) >= w.debounce {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	for _, path := range ready {
		slot := save.LoadSlot(path)
		if slot.Err != nil {
			w.logger.Warn("failed to load slot", zap.String("path", path), zap.Error(slot.Err))
		}
		w.handler(ctx, slot)
	}
}
