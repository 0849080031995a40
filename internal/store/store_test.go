package store

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dreinsights/pkg/contracts/domain"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"), slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleTx(number string, ts time.Time, area string) domain.Transaction {
	return domain.Transaction{
		TxNumber: number,
		TxTime:   ts,
		TxType:   "Sales",
		Area:     area,
		PropType: "Unit",
		TxValue:  1000000,
	}
}

func TestOpenExistingMissingFile(t *testing.T) {
	_, err := OpenExisting(filepath.Join(t.TempDir(), "absent.db"), slog.Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestReplaceAndReadTransactions(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()

	records := []domain.Transaction{
		sampleTx("1-2", time.Date(2023, 3, 2, 12, 0, 0, 0, time.UTC), "Dubai Marina"),
		sampleTx("1-1", time.Date(2023, 3, 1, 12, 0, 0, 0, time.UTC), "Business Bay"),
	}
	require.NoError(t, s.ReplaceTransactions(ctx, DatasetCurrent, records))

	got, err := s.Transactions(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Ordered by timestamp ascending regardless of insert order.
	assert.Equal(t, "1-1", got[0].TxNumber)
	assert.Equal(t, "1-2", got[1].TxNumber)
	assert.Equal(t, time.Date(2023, 3, 1, 12, 0, 0, 0, time.UTC), got[0].TxTime)

	// No areas loaded yet: coordinates absent, rows still returned.
	assert.False(t, got[0].HasCoordinates())
	assert.Empty(t, got[0].AreaNorm)
}

func TestTransactionsUnionBothDatasets(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceTransactions(ctx, DatasetCurrent,
		[]domain.Transaction{sampleTx("c-1", time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC), "Dubai Marina")}))
	require.NoError(t, s.ReplaceTransactions(ctx, DatasetHistorical,
		[]domain.Transaction{sampleTx("h-1", time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC), "Jumeirah")}))

	got, err := s.Transactions(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "h-1", got[0].TxNumber)
	assert.Equal(t, "c-1", got[1].TxNumber)
}

func TestAreaJoinIsCaseInsensitive(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceAreas(ctx, []domain.Area{
		{Name: "Dubai Marina", Latitude: 25.07, Longitude: 55.14},
	}))
	require.NoError(t, s.ReplaceTransactions(ctx, DatasetCurrent, []domain.Transaction{
		sampleTx("1-1", time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC), "DUBAI MARINA"),
		sampleTx("1-2", time.Date(2023, 3, 2, 0, 0, 0, 0, time.UTC), "Nowhere"),
	}))

	got, err := s.Transactions(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	require.True(t, got[0].HasCoordinates())
	assert.Equal(t, "dubai marina", got[0].AreaNorm)
	assert.InDelta(t, 25.07, *got[0].Latitude, 1e-9)

	// Unmatched area keeps the row, without coordinates.
	assert.False(t, got[1].HasCoordinates())
}

func TestReplaceTransactionsDropsOldRows(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceTransactions(ctx, DatasetCurrent,
		[]domain.Transaction{sampleTx("old", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), "A")}))
	require.NoError(t, s.ReplaceTransactions(ctx, DatasetCurrent,
		[]domain.Transaction{sampleTx("new", time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC), "B")}))

	got, err := s.Transactions(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].TxNumber)
}

func TestAreasRoundTrip(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceAreas(ctx, []domain.Area{
		{Name: "zabeel", Latitude: 25.2, Longitude: 55.3},
		{Name: "business bay", Latitude: 25.19, Longitude: 55.27},
	}))

	got, err := s.Areas(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Ordered by name.
	assert.Equal(t, "business bay", got[0].Name)
	assert.Equal(t, "zabeel", got[1].Name)
}

func TestRentalsRoundTrip(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceRentals(ctx, []domain.RentalContract{
		{ContractNumber: "R-2", StartDate: time.Date(2023, 3, 2, 0, 0, 0, 0, time.UTC), Area: "Dubai Marina", AnnualRent: 120000},
		{ContractNumber: "R-1", StartDate: time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC), Area: "Business Bay", AnnualRent: 90000},
	}))

	got, err := s.Rentals(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "R-1", got[0].ContractNumber)
	assert.InDelta(t, 90000, got[0].AnnualRent, 1e-9)
}

func TestModTime(t *testing.T) {
	s := tempStore(t)
	mtime, err := s.ModTime()
	require.NoError(t, err)
	assert.False(t, mtime.IsZero())
}
