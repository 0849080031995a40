package refresh

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dreinsights/internal/store"
	"dreinsights/internal/websocket"
)

func newTestWatcher(t *testing.T) (*Watcher, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "watch.db")
	st, err := store.Open(path, slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	hub := websocket.NewHub(slog.Default())
	hub.Start()
	t.Cleanup(hub.Stop)

	w := NewWatcher(st, hub, slog.Default())
	mtime, err := st.ModTime()
	require.NoError(t, err)
	w.lastSeen = mtime

	return w, path
}

func TestCheckIgnoresUnchangedFile(t *testing.T) {
	w, _ := newTestWatcher(t)

	before := w.lastSeen
	w.check()
	assert.Equal(t, before, w.lastSeen)
}

func TestCheckDetectsNewerFile(t *testing.T) {
	w, path := newTestWatcher(t)

	newer := w.lastSeen.Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, newer, newer))

	w.check()
	assert.Equal(t, newer.Unix(), w.lastSeen.Unix())
}

func TestCheckSurvivesMissingFile(t *testing.T) {
	w, path := newTestWatcher(t)
	require.NoError(t, os.Remove(path))

	before := w.lastSeen
	w.check()
	assert.Equal(t, before, w.lastSeen)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	w, _ := newTestWatcher(t)
	assert.Error(t, w.Start("not a schedule"))
}
