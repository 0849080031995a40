package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"dreinsights/internal/analytics"
	"dreinsights/internal/store"
	"dreinsights/pkg/contracts/domain"
)

// TopListingSize is the default row count of the top-transactions and
// top-projects tables.
const TopListingSize = 5

// DashboardService derives every dashboard view from the store. It holds
// no render state: each call re-reads the data and re-computes, so a
// store replacement is picked up on the next request.
type DashboardService struct {
	store    *store.Store
	logger   *slog.Logger
	validate *validator.Validate
}

// NewDashboardService creates a dashboard service backed by st.
func NewDashboardService(st *store.Store, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{
		store:    st,
		logger:   logger,
		validate: validator.New(),
	}
}

// snapshot loads and augments the full transaction set.
func (s *DashboardService) snapshot(ctx context.Context) ([]domain.Transaction, error) {
	records, err := s.store.Transactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	analytics.Augment(records)
	return records, nil
}

// checkFilter validates and clamps the filter to the dataset epoch.
func (s *DashboardService) checkFilter(f domain.TxFilter) (domain.TxFilter, error) {
	if err := s.validate.Struct(f); err != nil {
		return domain.TxFilter{}, fmt.Errorf("%w: %v", ErrInvalidDateRange, err)
	}
	if f.To.Before(f.From) {
		return domain.TxFilter{}, ErrInvalidDateRange
	}
	return f.Clamp(), nil
}

// Metrics returns the five headline cards for the filter range.
func (s *DashboardService) Metrics(ctx context.Context, f domain.TxFilter) (domain.DashboardMetrics, error) {
	f, err := s.checkFilter(f)
	if err != nil {
		return domain.DashboardMetrics{}, err
	}

	records, err := s.snapshot(ctx)
	if err != nil {
		return domain.DashboardMetrics{}, err
	}
	rentals, err := s.store.Rentals(ctx)
	if err != nil {
		return domain.DashboardMetrics{}, fmt.Errorf("load rentals: %w", err)
	}

	return analytics.Metrics(records, rentals, f), nil
}

// Transactions returns the raw matching transactions in timestamp order.
// An empty result is not an error.
func (s *DashboardService) Transactions(ctx context.Context, f domain.TxFilter) ([]domain.Transaction, error) {
	f, err := s.checkFilter(f)
	if err != nil {
		return nil, err
	}

	records, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.Slice(records, f), nil
}

// ByType returns (property type, day) counts.
func (s *DashboardService) ByType(ctx context.Context, f domain.TxFilter) ([]domain.TypeCount, error) {
	f, err := s.checkFilter(f)
	if err != nil {
		return nil, err
	}
	records, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.ByTypePerDay(records, f), nil
}

// ByRooms returns per-room-label counts.
func (s *DashboardService) ByRooms(ctx context.Context, f domain.TxFilter) ([]domain.CategoryCount, error) {
	f, err := s.checkFilter(f)
	if err != nil {
		return nil, err
	}
	records, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.ByRooms(records, f), nil
}

// ByRegistration returns ready vs off-plan counts.
func (s *DashboardService) ByRegistration(ctx context.Context, f domain.TxFilter) ([]domain.CategoryCount, error) {
	f, err := s.checkFilter(f)
	if err != nil {
		return nil, err
	}
	records, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.ByRegistration(records, f), nil
}

// ByPayment returns per-payment-type counts.
func (s *DashboardService) ByPayment(ctx context.Context, f domain.TxFilter) ([]domain.CategoryCount, error) {
	f, err := s.checkFilter(f)
	if err != nil {
		return nil, err
	}
	records, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.ByPayment(records, f), nil
}

// MedianPriceSqm returns the per-day median price series.
func (s *DashboardService) MedianPriceSqm(ctx context.Context, f domain.TxFilter) ([]domain.DailyMedian, error) {
	f, err := s.checkFilter(f)
	if err != nil {
		return nil, err
	}
	records, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.DailyMedianPriceSqm(records, f), nil
}

// TopTransactions returns the top-n listing, excluding land plots.
func (s *DashboardService) TopTransactions(ctx context.Context, f domain.TxFilter, n int) ([]domain.TopTransaction, error) {
	f, err := s.checkFilter(f)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		n = TopListingSize
	}
	records, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.TopTransactions(records, f, n), nil
}

// TopProjects returns the top-n projects by units sold.
func (s *DashboardService) TopProjects(ctx context.Context, f domain.TxFilter, n int) ([]domain.TopProject, error) {
	f, err := s.checkFilter(f)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		n = TopListingSize
	}
	records, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.TopProjects(records, f, n), nil
}

// MapColumns returns the normalized map aggregate for one metric.
func (s *DashboardService) MapColumns(ctx context.Context, f domain.TxFilter, metric analytics.MapMetric) ([]domain.MapColumn, error) {
	if !analytics.ValidMapMetric(metric) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMapMetric, metric)
	}
	f, err := s.checkFilter(f)
	if err != nil {
		return nil, err
	}
	records, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.MapColumns(records, f, metric), nil
}

// Areas returns the editable coordinates table.
func (s *DashboardService) Areas(ctx context.Context) ([]domain.Area, error) {
	areas, err := s.store.Areas(ctx)
	if err != nil {
		return nil, fmt.Errorf("load areas: %w", err)
	}
	return areas, nil
}

// ReplaceAreas validates and persists an edited coordinates table,
// replacing the previous one wholesale.
func (s *DashboardService) ReplaceAreas(ctx context.Context, areas []domain.Area) error {
	for i := range areas {
		if err := s.validate.Struct(areas[i]); err != nil {
			return fmt.Errorf("%w: row %d: %v", ErrInvalidArea, i+1, err)
		}
	}

	if err := s.store.ReplaceAreas(ctx, areas); err != nil {
		return fmt.Errorf("persist areas: %w", err)
	}

	s.logger.InfoContext(ctx, "areas table replaced", slog.Int("count", len(areas)))
	return nil
}
