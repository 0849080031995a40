package dataprocessing

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"dreinsights/pkg/contracts/domain"
)

// rentalAliases maps canonical rental fields to export header names.
var rentalAliases = map[string][]string{
	"contract_number": {"CONTRACT_NUMBER", "contract_number"},
	"start_date":      {"CONTRACT_START_DATE", "contract_start_date", "start_date"},
	"area":            {"AREA_EN", "area"},
	"prop_type":       {"PROP_TYPE_EN", "property_type", "prop_type"},
	"annual_rent":     {"ANNUAL_AMOUNT", "annual_amount", "annual_rent"},
}

// ParseRentalsFile reads the rental contracts CSV export.
func ParseRentalsFile(path string) ([]domain.RentalContract, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rentals file: %w", err)
	}
	defer f.Close()

	rentals, err := ParseRentals(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return rentals, nil
}

// ParseRentals reads rental contract rows from r.
func ParseRentals(r io.Reader) ([]domain.RentalContract, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}

	columns := make(map[string]int, len(rentalAliases))
	for field, aliases := range rentalAliases {
		for _, alias := range aliases {
			if pos, ok := index[strings.ToLower(alias)]; ok {
				columns[field] = pos
				break
			}
		}
	}
	for _, field := range []string{"start_date", "annual_rent"} {
		if _, ok := columns[field]; !ok {
			return nil, fmt.Errorf("header missing required column %q", field)
		}
	}

	var rentals []domain.RentalContract
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

		cell := func(field string) string {
			pos, ok := columns[field]
			if !ok || pos >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[pos])
		}

		start, err := parseTimestamp(cell("start_date"))
		if err != nil {
			continue
		}

		rentals = append(rentals, domain.RentalContract{
			ContractNumber: cell("contract_number"),
			StartDate:      start,
			Area:           cell("area"),
			PropType:       cell("prop_type"),
			AnnualRent:     parseFloat(cell("annual_rent")),
		})
	}

	return rentals, nil
}
