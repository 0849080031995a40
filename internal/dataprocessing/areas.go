package dataprocessing

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"dreinsights/pkg/contracts/domain"
)

// ParseAreasFile reads the area coordinates CSV (area, latitude, longitude).
func ParseAreasFile(path string) ([]domain.Area, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open areas file: %w", err)
	}
	defer f.Close()

	areas, err := ParseAreas(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return areas, nil
}

// ParseAreas reads area rows from r. A leading header row is detected and
// skipped; area names are lowercased so the transactions join is
// case-insensitive.
func ParseAreas(r io.Reader) ([]domain.Area, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var areas []domain.Area
	line := 0

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line+1, err)
		}
		line++

		if len(row) < 3 {
			return nil, fmt.Errorf("row %d: expected 3 columns, got %d", line, len(row))
		}

		lat, latErr := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		lon, lonErr := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
		if latErr != nil || lonErr != nil {
			if line == 1 {
				// Header row.
				continue
			}
			return nil, fmt.Errorf("row %d: invalid coordinates %q,%q", line, row[1], row[2])
		}

		name := strings.ToLower(strings.TrimSpace(row[0]))
		if name == "" {
			return nil, fmt.Errorf("row %d: empty area name", line)
		}

		areas = append(areas, domain.Area{
			Name:      name,
			Latitude:  lat,
			Longitude: lon,
		})
	}

	return areas, nil
}
