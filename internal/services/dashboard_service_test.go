package services

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dreinsights/internal/analytics"
	"dreinsights/internal/store"
	"dreinsights/pkg/contracts/domain"
)

func newTestService(t *testing.T) (*DashboardService, *store.Store) {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"), slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	ctx := context.Background()
	require.NoError(t, st.ReplaceAreas(ctx, []domain.Area{
		{Name: "dubai marina", Latitude: 25.07, Longitude: 55.14},
	}))
	require.NoError(t, st.ReplaceTransactions(ctx, store.DatasetCurrent, []domain.Transaction{
		{
			TxNumber: "1-1", TxTime: time.Date(2023, 3, 1, 10, 0, 0, 0, time.UTC),
			TxType: "Sales", RegType: "Ready", Area: "Dubai Marina",
			PropType: "Unit", TxValue: 3672500, PropSizeSqm: 100, Project: "Marina Heights",
		},
		{
			TxNumber: "1-2", TxTime: time.Date(2023, 3, 5, 10, 0, 0, 0, time.UTC),
			TxType: "Mortgage", RegType: "Off-Plan", Area: "Dubai Marina",
			PropType: "Unit", TxValue: 7345000, PropSizeSqm: 200, Project: "Marina Heights",
		},
	}))

	return NewDashboardService(st, slog.Default()), st
}

func marchFilter() domain.TxFilter {
	return domain.TxFilter{
		From: time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2023, 3, 31, 0, 0, 0, 0, time.UTC),
	}
}

func TestServiceMetrics(t *testing.T) {
	svc, _ := newTestService(t)

	m, err := svc.Metrics(context.Background(), marchFilter())
	require.NoError(t, err)
	assert.Equal(t, float64(2), m.TxCount.Value)
	assert.InDelta(t, 3000000, m.TotalValueUSD.Value, 1)
}

func TestServiceTransactionsDerivedFields(t *testing.T) {
	svc, _ := newTestService(t)

	records, err := svc.Transactions(context.Background(), marchFilter())
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Derived fields are recomputed on every read.
	assert.Equal(t, "2023-03-01", records[0].TxDate)
	assert.InDelta(t, 1000000, records[0].TxValueUSD, 1)
	assert.InDelta(t, 10000, records[0].PriceSqm, 1)
	// Coordinates joined from the areas table.
	assert.True(t, records[0].HasCoordinates())
}

func TestServiceEmptySliceIsNotError(t *testing.T) {
	svc, _ := newTestService(t)

	f := domain.TxFilter{
		From: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
	}
	records, err := svc.Transactions(context.Background(), f)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestServiceRejectsReversedRange(t *testing.T) {
	svc, _ := newTestService(t)

	f := domain.TxFilter{
		From: time.Date(2023, 3, 31, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	_, err := svc.Transactions(context.Background(), f)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestServiceClampsToEpoch(t *testing.T) {
	svc, _ := newTestService(t)

	f := domain.TxFilter{
		From: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2023, 3, 31, 0, 0, 0, 0, time.UTC),
	}
	records, err := svc.Transactions(context.Background(), f)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestServiceMapColumnsInvalidMetric(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.MapColumns(context.Background(), marchFilter(), analytics.MapMetric("bogus"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidMapMetric)
}

func TestServiceMapColumns(t *testing.T) {
	svc, _ := newTestService(t)

	columns, err := svc.MapColumns(context.Background(), marchFilter(), analytics.MapMetricCount)
	require.NoError(t, err)
	require.Len(t, columns, 1)
	assert.Equal(t, float64(2), columns[0].Value)
}

func TestServiceReplaceAreasValidation(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.ReplaceAreas(context.Background(), []domain.Area{
		{Name: "nowhere", Latitude: 1234, Longitude: 55},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidArea)
}

func TestServiceReplaceAreasRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.ReplaceAreas(ctx, []domain.Area{
		{Name: "palm jumeirah", Latitude: 25.11, Longitude: 55.13},
	}))

	areas, err := svc.Areas(ctx)
	require.NoError(t, err)
	require.Len(t, areas, 1)
	assert.Equal(t, "palm jumeirah", areas[0].Name)
}

func TestServicePicksUpStoreReplacement(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	before, err := svc.Transactions(ctx, marchFilter())
	require.NoError(t, err)
	require.Len(t, before, 2)

	// Simulate the external refresh replacing the dataset.
	require.NoError(t, st.ReplaceTransactions(ctx, store.DatasetCurrent, []domain.Transaction{
		{
			TxNumber: "2-1", TxTime: time.Date(2023, 3, 10, 0, 0, 0, 0, time.UTC),
			TxType: "Sales", RegType: "Ready", Area: "Dubai Marina",
			PropType: "Villa", TxValue: 1000, PropSizeSqm: 10,
		},
	}))

	after, err := svc.Transactions(ctx, marchFilter())
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, "2-1", after[0].TxNumber)
}
