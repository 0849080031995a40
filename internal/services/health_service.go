package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"dreinsights/internal/store"
)

// HealthService reports process and data-store health.
type HealthService struct {
	version   string
	buildTime string
	store     *store.Store
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus is the health check response.
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// VersionInfo is the version endpoint response.
type VersionInfo struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time,omitempty"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// NewHealthService creates a health service bound to the data store.
func NewHealthService(version, buildTime string, st *store.Store, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		buildTime: buildTime,
		store:     st,
		startTime: time.Now(),
		logger:    logger,
	}
}

// Check returns the current health status. The store check is a lightweight
// stat of the database file; a missing file degrades the status.
func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   s.version,
		Runtime: map[string]interface{}{
			"go_version":     runtime.Version(),
			"goroutines":     runtime.NumGoroutine(),
			"uptime_seconds": time.Since(s.startTime).Seconds(),
		},
		Services: map[string]interface{}{},
	}

	if _, err := s.store.ModTime(); err != nil {
		status.Status = "degraded"
		status.Services["store"] = map[string]interface{}{
			"status":  "unhealthy",
			"message": err.Error(),
		}
		s.logger.WarnContext(ctx, "store health check failed", slog.String("error", err.Error()))
	} else {
		status.Services["store"] = map[string]interface{}{
			"status": "healthy",
			"path":   s.store.Path(),
		}
	}

	return status
}

// Version returns build and runtime version information.
func (s *HealthService) Version() VersionInfo {
	return VersionInfo{
		Version:   s.version,
		BuildTime: s.buildTime,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}
