// Package refresh watches the data store for out-of-band replacement.
// The indexer (or any external process) rewrites the database file; the
// watcher notices the new modification time and tells connected clients
// to re-render.
package refresh

import (
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"dreinsights/internal/store"
	"dreinsights/internal/websocket"
)

// Watcher polls the store file on a cron schedule.
type Watcher struct {
	store  *store.Store
	hub    *websocket.Hub
	logger *slog.Logger
	cron   *cron.Cron

	mu       sync.Mutex
	lastSeen time.Time
}

// NewWatcher creates a watcher; Start schedules it.
func NewWatcher(st *store.Store, hub *websocket.Hub, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		store:  st,
		hub:    hub,
		logger: logger.With(slog.String("component", "refresh.watcher")),
		cron:   cron.New(),
	}
}

// Start begins polling on the given cron schedule (standard 5-field spec).
func (w *Watcher) Start(schedule string) error {
	if mtime, err := w.store.ModTime(); err == nil {
		w.lastSeen = mtime
	}

	if _, err := w.cron.AddFunc(schedule, w.check); err != nil {
		return err
	}
	w.cron.Start()

	w.logger.Info("refresh watcher started", slog.String("schedule", schedule))
	return nil
}

// Stop halts the schedule and waits for a running check to finish.
func (w *Watcher) Stop() {
	ctx := w.cron.Stop()
	<-ctx.Done()
	w.logger.Info("refresh watcher stopped")
}

func (w *Watcher) check() {
	mtime, err := w.store.ModTime()
	if err != nil {
		w.logger.Warn("store stat failed", slog.String("error", err.Error()))
		return
	}

	w.mu.Lock()
	changed := mtime.After(w.lastSeen)
	if changed {
		w.lastSeen = mtime
	}
	w.mu.Unlock()

	if !changed {
		return
	}

	w.logger.Info("data store changed, notifying clients",
		slog.Time("modified_at", mtime),
		slog.Int("clients", w.hub.ClientCount()))
	w.hub.BroadcastDataRefreshed(map[string]string{
		"modified_at": mtime.UTC().Format(time.RFC3339),
	})
}
