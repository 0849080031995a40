package http

import (
	"context"

	"dreinsights/internal/analytics"
	"dreinsights/internal/services"
	"dreinsights/pkg/contracts/domain"
)

// DashboardServiceInterface defines the dashboard operations the handlers
// depend on.
type DashboardServiceInterface interface {
	Metrics(ctx context.Context, f domain.TxFilter) (domain.DashboardMetrics, error)
	Transactions(ctx context.Context, f domain.TxFilter) ([]domain.Transaction, error)
	ByType(ctx context.Context, f domain.TxFilter) ([]domain.TypeCount, error)
	ByRooms(ctx context.Context, f domain.TxFilter) ([]domain.CategoryCount, error)
	ByRegistration(ctx context.Context, f domain.TxFilter) ([]domain.CategoryCount, error)
	ByPayment(ctx context.Context, f domain.TxFilter) ([]domain.CategoryCount, error)
	MedianPriceSqm(ctx context.Context, f domain.TxFilter) ([]domain.DailyMedian, error)
	TopTransactions(ctx context.Context, f domain.TxFilter, n int) ([]domain.TopTransaction, error)
	TopProjects(ctx context.Context, f domain.TxFilter, n int) ([]domain.TopProject, error)
	MapColumns(ctx context.Context, f domain.TxFilter, metric analytics.MapMetric) ([]domain.MapColumn, error)
	Areas(ctx context.Context) ([]domain.Area, error)
	ReplaceAreas(ctx context.Context, areas []domain.Area) error
}

// HealthServiceInterface defines the health operations the handlers
// depend on.
type HealthServiceInterface interface {
	Check(ctx context.Context) services.HealthStatus
	Version() services.VersionInfo
}
