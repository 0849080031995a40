// Command indexer loads the Dubailand open-data CSV exports into the
// SQLite store the dashboard reads. Each given file replaces its table
// wholesale; the dashboard picks the new data up on its next render.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"dreinsights/internal/dataprocessing"
	"dreinsights/internal/store"
	"dreinsights/pkg/contracts/domain"
)

func main() {
	var (
		dbPath      = flag.String("db", "data/dre.db", "path to the SQLite store")
		txPath      = flag.String("tx", "", "rolling transactions CSV export")
		txHistPath  = flag.String("tx-hist", "", "historical transactions CSV export")
		areasPath   = flag.String("areas", "", "area coordinates CSV")
		rentalsPath = flag.String("rentals", "", "rental contracts CSV export")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := run(*dbPath, *txPath, *txHistPath, *areasPath, *rentalsPath, logger); err != nil {
		logger.Error("indexing failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(dbPath, txPath, txHistPath, areasPath, rentalsPath string, logger *slog.Logger) error {
	if txPath == "" && txHistPath == "" && areasPath == "" && rentalsPath == "" {
		return fmt.Errorf("nothing to do: give at least one of -tx, -tx-hist, -areas, -rentals")
	}

	started := time.Now()

	// Parse all inputs before touching the store. A missing or unreadable
	// file aborts the run with nothing replaced.
	var (
		g       errgroup.Group
		txs     []domain.Transaction
		txsHist []domain.Transaction
		areas   []domain.Area
		rentals []domain.RentalContract
	)

	if txPath != "" {
		g.Go(func() error {
			var err error
			txs, err = dataprocessing.ParseTransactionsFile(txPath)
			return err
		})
	}
	if txHistPath != "" {
		g.Go(func() error {
			var err error
			txsHist, err = dataprocessing.ParseTransactionsFile(txHistPath)
			return err
		})
	}
	if areasPath != "" {
		g.Go(func() error {
			var err error
			areas, err = dataprocessing.ParseAreasFile(areasPath)
			return err
		})
	}
	if rentalsPath != "" {
		g.Go(func() error {
			var err error
			rentals, err = dataprocessing.ParseRentalsFile(rentalsPath)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	st, err := store.Open(dbPath, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()

	if txPath != "" {
		if err := st.ReplaceTransactions(ctx, store.DatasetCurrent, txs); err != nil {
			return fmt.Errorf("replace transactions: %w", err)
		}
	}
	if txHistPath != "" {
		if err := st.ReplaceTransactions(ctx, store.DatasetHistorical, txsHist); err != nil {
			return fmt.Errorf("replace historical transactions: %w", err)
		}
	}
	if areasPath != "" {
		if err := st.ReplaceAreas(ctx, areas); err != nil {
			return fmt.Errorf("replace areas: %w", err)
		}
	}
	if rentalsPath != "" {
		if err := st.ReplaceRentals(ctx, rentals); err != nil {
			return fmt.Errorf("replace rentals: %w", err)
		}
	}

	logger.Info("indexing complete",
		slog.Int("transactions", len(txs)),
		slog.Int("historical", len(txsHist)),
		slog.Int("areas", len(areas)),
		slog.Int("rentals", len(rentals)),
		slog.Duration("duration", time.Since(started)))
	return nil
}
