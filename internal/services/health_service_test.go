package services

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dreinsights/internal/store"
)

func TestHealthCheckHealthy(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "health.db"), slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	svc := NewHealthService("1.2.3", "2026-01-01T00:00:00Z", st, slog.Default())
	status := svc.Check(context.Background())

	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "1.2.3", status.Version)
	require.Contains(t, status.Services, "store")
	storeInfo := status.Services["store"].(map[string]interface{})
	assert.Equal(t, "healthy", storeInfo["status"])
}

func TestHealthCheckDegradedWhenStoreMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone.db")
	st, err := store.Open(path, slog.Default())
	require.NoError(t, err)
	require.NoError(t, st.Close())
	require.NoError(t, os.Remove(path))

	svc := NewHealthService("dev", "", st, slog.Default())
	status := svc.Check(context.Background())

	assert.Equal(t, "degraded", status.Status)
	storeInfo := status.Services["store"].(map[string]interface{})
	assert.Equal(t, "unhealthy", storeInfo["status"])
}

func TestHealthVersion(t *testing.T) {
	svc := NewHealthService("2.0.0", "build-ts", nil, nil)
	info := svc.Version()

	assert.Equal(t, "2.0.0", info.Version)
	assert.Equal(t, "build-ts", info.BuildTime)
	assert.NotEmpty(t, info.GoVersion)
	assert.NotEmpty(t, info.OS)
}
