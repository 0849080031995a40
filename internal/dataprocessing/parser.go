// Package dataprocessing parses the Dubailand open-data CSV exports into
// domain records. Two export dialects exist: the rolling export uses
// upper-case API field names, the historical backfill uses snake_case
// names plus a few extra columns. Both are resolved by header name, never
// by position.
package dataprocessing

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"dreinsights/pkg/contracts/domain"
)

// timestampLayouts covers the date formats seen across export dialects.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02-01-2006 15:04:05",
	"02-01-2006",
	"01/02/2006 03:04:05 PM",
}

// columnAliases maps each canonical field to the header names that carry
// it in either dialect. Headers are matched case-insensitively.
var columnAliases = map[string][]string{
	"tx_number":      {"TRANSACTION_NUMBER", "transaction_number"},
	"tx_ts":          {"INSTANCE_DATE", "transaction_date"},
	"tx_type":        {"GROUP_EN", "transaction_type"},
	"tx_subtype":     {"PROCEDURE_EN", "transaction_subtype"},
	"reg_type":       {"IS_OFFPLAN_EN", "registration_type"},
	"is_free_hold":   {"IS_FREE_HOLD_EN", "is_free_hold"},
	"usage":          {"USAGE_EN", "usage"},
	"area":           {"AREA_EN", "area"},
	"prop_type":      {"PROP_TYPE_EN", "property_type"},
	"prop_subtype":   {"PROP_SB_TYPE_EN", "property_subtype"},
	"tx_value":       {"TRANS_VALUE", "amount"},
	"tx_size_sqm":    {"PROCEDURE_AREA", "transaction_size_sq_m"},
	"prop_size_sqm":  {"ACTUAL_AREA", "property_size_sq_m"},
	"rooms":          {"ROOMS_EN", "rooms"},
	"parking":        {"PARKING", "parking"},
	"near_metro":     {"NEAREST_METRO_EN", "nearest_metro"},
	"near_mall":      {"NEAREST_MALL_EN", "nearest_mall"},
	"near_landmark":  {"NEAREST_LANDMARK_EN", "nearest_landmark"},
	"buy_count":      {"TOTAL_BUYER", "number_of_buyers"},
	"sell_count":     {"TOTAL_SELLER", "number_of_sellers"},
	"master_project": {"MASTER_PROJECT_EN", "master_project"},
	"project":        {"PROJECT_EN", "project"},
}

// requiredColumns must resolve for a header row to be accepted.
var requiredColumns = []string{"tx_number", "tx_ts", "area", "tx_value"}

// ParseTransactionsFile reads a Dubailand transactions CSV export.
// A missing or unreadable file is a hard error; callers treat it as fatal.
func ParseTransactionsFile(path string) ([]domain.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open transactions file: %w", err)
	}
	defer f.Close()

	records, err := ParseTransactions(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return records, nil
}

// ParseTransactions reads transactions CSV data from r.
func ParseTransactions(r io.Reader) ([]domain.Transaction, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var records []domain.Transaction
	var skipped int
	line := 1

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		line++

		rec, err := parseRow(row, columns)
		if err != nil {
			// Malformed rows are dropped, not fatal. The exports carry
			// occasional rows with blank or garbled dates.
			skipped++
			slog.Debug("skipping malformed row",
				slog.Int("line", line),
				slog.String("error", err.Error()))
			continue
		}
		records = append(records, rec)
	}

	if skipped > 0 {
		slog.Warn("skipped malformed rows",
			slog.Int("skipped", skipped),
			slog.Int("parsed", len(records)))
	}
	return records, nil
}

// mapColumns resolves canonical field names to header positions.
func mapColumns(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}

	columns := make(map[string]int, len(columnAliases))
	for field, aliases := range columnAliases {
		for _, alias := range aliases {
			if pos, ok := index[strings.ToLower(alias)]; ok {
				columns[field] = pos
				break
			}
		}
	}

	for _, field := range requiredColumns {
		if _, ok := columns[field]; !ok {
			return nil, fmt.Errorf("header missing required column %q", field)
		}
	}
	return columns, nil
}

func parseRow(row []string, columns map[string]int) (domain.Transaction, error) {
	cell := func(field string) string {
		pos, ok := columns[field]
		if !ok || pos >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[pos])
	}

	ts, err := parseTimestamp(cell("tx_ts"))
	if err != nil {
		return domain.Transaction{}, err
	}

	rec := domain.Transaction{
		TxNumber:      cell("tx_number"),
		TxTime:        ts,
		TxType:        cell("tx_type"),
		TxSubtype:     cell("tx_subtype"),
		RegType:       cell("reg_type"),
		IsFreeHold:    cell("is_free_hold"),
		Usage:         cell("usage"),
		Area:          cell("area"),
		PropType:      cell("prop_type"),
		PropSubtype:   cell("prop_subtype"),
		TxValue:       parseFloat(cell("tx_value")),
		TxSizeSqm:     parseFloat(cell("tx_size_sqm")),
		PropSizeSqm:   parseFloat(cell("prop_size_sqm")),
		Rooms:         cell("rooms"),
		Parking:       cell("parking"),
		NearMetro:     cell("near_metro"),
		NearMall:      cell("near_mall"),
		NearLandmark:  cell("near_landmark"),
		BuyerCount:    parseInt(cell("buy_count")),
		SellerCount:   parseInt(cell("sell_count")),
		MasterProject: cell("master_project"),
		Project:       cell("project"),
	}

	if rec.TxNumber == "" {
		return domain.Transaction{}, fmt.Errorf("empty transaction number")
	}
	return rec, nil
}

func parseTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

// parseFloat tolerates thousands separators and blank cells.
func parseFloat(value string) float64 {
	if value == "" {
		return 0
	}
	value = strings.ReplaceAll(value, ",", "")
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return f
}

func parseInt(value string) int64 {
	if value == "" {
		return 0
	}
	value = strings.ReplaceAll(value, ",", "")
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		// Historical exports carry counts as "2.0".
		if f, ferr := strconv.ParseFloat(value, 64); ferr == nil {
			return int64(f)
		}
		return 0
	}
	return n
}
