// Package exporter renders filtered transaction slices as downloadable
// CSV and Excel files.
package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"dreinsights/pkg/contracts/domain"
)

// transactionHeaders is the column order of both export formats.
var transactionHeaders = []string{
	"tx_number", "tx_date", "tx_type", "tx_subtype", "reg_type",
	"is_free_hold", "usage", "area", "prop_type", "prop_subtype",
	"tx_value", "tx_value_usd", "price_sqm", "tx_size_sqm",
	"prop_size_sqm", "rooms", "parking", "master_project", "project",
}

func transactionRow(t *domain.Transaction) []string {
	return []string{
		t.TxNumber, t.TxDate, t.TxType, t.TxSubtype, t.RegType,
		t.IsFreeHold, t.Usage, t.Area, t.PropType, t.PropSubtype,
		formatFloat(t.TxValue), formatFloat(t.TxValueUSD), formatFloat(t.PriceSqm),
		formatFloat(t.TxSizeSqm), formatFloat(t.PropSizeSqm),
		t.Rooms, t.Parking, t.MasterProject, t.Project,
	}
}

// WriteCSV streams the records as CSV to w. A UTF-8 BOM is written first
// so Excel opens the file correctly.
func WriteCSV(w io.Writer, records []domain.Transaction) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(transactionHeaders); err != nil {
		return fmt.Errorf("write headers: %w", err)
	}
	for i := range records {
		if err := writer.Write(transactionRow(&records[i])); err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteXLSX streams the records as an Excel workbook to w.
func WriteXLSX(w io.Writer, records []domain.Transaction) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Transactions"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headerRow := make([]interface{}, len(transactionHeaders))
	for i, h := range transactionHeaders {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return fmt.Errorf("write headers: %w", err)
	}

	for i := range records {
		t := &records[i]
		row := []interface{}{
			t.TxNumber, t.TxDate, t.TxType, t.TxSubtype, t.RegType,
			t.IsFreeHold, t.Usage, t.Area, t.PropType, t.PropSubtype,
			t.TxValue, t.TxValueUSD, t.PriceSqm, t.TxSizeSqm,
			t.PropSizeSqm, t.Rooms, t.Parking, t.MasterProject, t.Project,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("cell name for row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// formatFloat keeps two decimal places so 13.4 exports as 13.40.
func formatFloat(f float64) string {
	return fmt.Sprintf("%.2f", f)
}
