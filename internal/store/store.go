// Package store persists the pre-pulled open-data sets in a local SQLite
// database. The database plays the role the external refresh process
// writes into: the indexer replaces whole tables, the dashboard re-reads
// them on every render.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "modernc.org/sqlite"

	"dreinsights/pkg/contracts/domain"
)

// Dataset names a transactions table in the store.
type Dataset string

const (
	// DatasetCurrent holds the rolling open-data export.
	DatasetCurrent Dataset = "transactions"
	// DatasetHistorical holds the one-off historical backfill export.
	DatasetHistorical Dataset = "transactions_hist"
)

// Store wraps the SQLite database holding transactions, areas and rentals.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// Open opens (or creates) the database at path and runs migrations.
// Used by the indexer, which is allowed to create a fresh store.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboard reads don't block indexer writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &Store{db: db, path: path, logger: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("store opened", slog.String("path", path))
	return s, nil
}

// OpenExisting opens the database at path, failing when the file does not
// exist. The dashboard server must never silently start on an empty store.
func OpenExisting(path string, logger *slog.Logger) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("data store not found at %s: %w", path, err)
	}
	return Open(path, logger)
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// ModTime returns the database file's last modification time, used by the
// refresh watcher to detect out-of-band replacements.
func (s *Store) ModTime() (time.Time, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return time.Time{}, fmt.Errorf("stat data store: %w", err)
	}
	return info.ModTime(), nil
}

func (s *Store) migrate() error {
	stmts := []string{
		txTableDDL(DatasetCurrent),
		txTableDDL(DatasetHistorical),
		`CREATE INDEX IF NOT EXISTS idx_transactions_ts ON transactions(tx_ts)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_hist_ts ON transactions_hist(tx_ts)`,

		`CREATE TABLE IF NOT EXISTS areas (
			area      TEXT PRIMARY KEY,
			latitude  REAL,
			longitude REAL
		)`,

		`CREATE TABLE IF NOT EXISTS rentals (
			contract_number TEXT,
			start_date      INTEGER NOT NULL,
			area            TEXT,
			prop_type       TEXT,
			annual_rent     REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rentals_start ON rentals(start_date)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

func txTableDDL(ds Dataset) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		tx_number      TEXT,
		tx_ts          INTEGER NOT NULL,
		tx_type        TEXT,
		tx_subtype     TEXT,
		reg_type       TEXT,
		is_free_hold   TEXT,
		usage          TEXT,
		area           TEXT,
		prop_type      TEXT,
		prop_subtype   TEXT,
		tx_value       REAL,
		tx_size_sqm    REAL,
		prop_size_sqm  REAL,
		rooms          TEXT,
		parking        TEXT,
		near_metro     TEXT,
		near_mall      TEXT,
		near_landmark  TEXT,
		buy_count      INTEGER,
		sell_count     INTEGER,
		master_project TEXT,
		project        TEXT
	)`, ds)
}

// ReplaceTransactions drops and reloads one transactions dataset, matching
// the drop-and-recreate behavior of the original table scripts.
func (s *Store) ReplaceTransactions(ctx context.Context, ds Dataset, records []domain.Transaction) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", ds)); err != nil {
		return fmt.Errorf("clear %s: %w", ds, err)
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO %s (
		tx_number, tx_ts, tx_type, tx_subtype, reg_type, is_free_hold, usage,
		area, prop_type, prop_subtype, tx_value, tx_size_sqm, prop_size_sqm,
		rooms, parking, near_metro, near_mall, near_landmark, buy_count,
		sell_count, master_project, project
	) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`, ds))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range records {
		r := &records[i]
		if _, err := stmt.ExecContext(ctx,
			r.TxNumber, r.TxTime.UTC().Unix(), r.TxType, r.TxSubtype, r.RegType,
			r.IsFreeHold, r.Usage, r.Area, r.PropType, r.PropSubtype,
			r.TxValue, r.TxSizeSqm, r.PropSizeSqm, r.Rooms, r.Parking,
			r.NearMetro, r.NearMall, r.NearLandmark, r.BuyerCount,
			r.SellerCount, r.MasterProject, r.Project,
		); err != nil {
			return fmt.Errorf("insert record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	s.logger.Info("transactions dataset replaced",
		slog.String("dataset", string(ds)),
		slog.Int("records", len(records)))
	return nil
}

// Transactions returns every stored transaction across both datasets,
// joined to areas for coordinates, ordered by timestamp ascending.
// Rows whose area has no coordinates entry are kept with nil coordinates.
func (s *Store) Transactions(ctx context.Context) ([]domain.Transaction, error) {
	const query = `
		WITH tx_data AS (
			SELECT * FROM transactions
			UNION ALL
			SELECT * FROM transactions_hist
		)
		SELECT
			tx.tx_number, tx.tx_ts, tx.tx_type, tx.tx_subtype, tx.reg_type,
			tx.is_free_hold, tx.usage, tx.area, tx.prop_type, tx.prop_subtype,
			tx.tx_value, tx.tx_size_sqm, tx.prop_size_sqm, tx.rooms, tx.parking,
			tx.near_metro, tx.near_mall, tx.near_landmark, tx.buy_count,
			tx.sell_count, tx.master_project, tx.project,
			da.area, da.latitude, da.longitude
		FROM tx_data tx
		LEFT JOIN areas da ON LOWER(tx.area) = da.area
		ORDER BY tx.tx_ts ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var records []domain.Transaction
	for rows.Next() {
		var r domain.Transaction
		var ts int64
		var areaNorm sql.NullString
		var lat, lon sql.NullFloat64

		if err := rows.Scan(
			&r.TxNumber, &ts, &r.TxType, &r.TxSubtype, &r.RegType,
			&r.IsFreeHold, &r.Usage, &r.Area, &r.PropType, &r.PropSubtype,
			&r.TxValue, &r.TxSizeSqm, &r.PropSizeSqm, &r.Rooms, &r.Parking,
			&r.NearMetro, &r.NearMall, &r.NearLandmark, &r.BuyerCount,
			&r.SellerCount, &r.MasterProject, &r.Project,
			&areaNorm, &lat, &lon,
		); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}

		r.TxTime = time.Unix(ts, 0).UTC()
		if areaNorm.Valid {
			r.AreaNorm = areaNorm.String
		}
		if lat.Valid && lon.Valid {
			r.Latitude = &lat.Float64
			r.Longitude = &lon.Float64
		}

		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return records, nil
}

// Areas returns every area with coordinates, ordered by name.
func (s *Store) Areas(ctx context.Context) ([]domain.Area, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT area, latitude, longitude FROM areas ORDER BY area ASC`)
	if err != nil {
		return nil, fmt.Errorf("query areas: %w", err)
	}
	defer rows.Close()

	var areas []domain.Area
	for rows.Next() {
		var a domain.Area
		if err := rows.Scan(&a.Name, &a.Latitude, &a.Longitude); err != nil {
			return nil, fmt.Errorf("scan area: %w", err)
		}
		areas = append(areas, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate areas: %w", err)
	}
	return areas, nil
}

// ReplaceAreas drops and reloads the areas table, mirroring the editable
// areas table of the original dashboard.
func (s *Store) ReplaceAreas(ctx context.Context, areas []domain.Area) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM areas"); err != nil {
		return fmt.Errorf("clear areas: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO areas (area, latitude, longitude) VALUES (LOWER(?), ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range areas {
		a := &areas[i]
		if _, err := stmt.ExecContext(ctx, a.Name, a.Latitude, a.Longitude); err != nil {
			return fmt.Errorf("insert area %q: %w", a.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	s.logger.Info("areas replaced", slog.Int("count", len(areas)))
	return nil
}

// ReplaceRentals drops and reloads the rentals dataset.
func (s *Store) ReplaceRentals(ctx context.Context, rentals []domain.RentalContract) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM rentals"); err != nil {
		return fmt.Errorf("clear rentals: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO rentals
		(contract_number, start_date, area, prop_type, annual_rent)
		VALUES (?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range rentals {
		r := &rentals[i]
		if _, err := stmt.ExecContext(ctx,
			r.ContractNumber, r.StartDate.UTC().Unix(), r.Area, r.PropType, r.AnnualRent,
		); err != nil {
			return fmt.Errorf("insert rental %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	s.logger.Info("rentals replaced", slog.Int("count", len(rentals)))
	return nil
}

// Rentals returns every stored rental contract ordered by start date.
func (s *Store) Rentals(ctx context.Context) ([]domain.RentalContract, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT contract_number, start_date, area, prop_type, annual_rent FROM rentals ORDER BY start_date ASC`)
	if err != nil {
		return nil, fmt.Errorf("query rentals: %w", err)
	}
	defer rows.Close()

	var rentals []domain.RentalContract
	for rows.Next() {
		var r domain.RentalContract
		var ts int64
		if err := rows.Scan(&r.ContractNumber, &ts, &r.Area, &r.PropType, &r.AnnualRent); err != nil {
			return nil, fmt.Errorf("scan rental: %w", err)
		}
		r.StartDate = time.Unix(ts, 0).UTC()
		rentals = append(rentals, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rentals: %w", err)
	}
	return rentals, nil
}
