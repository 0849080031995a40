package analytics

import (
	"math"
	"sort"

	"dreinsights/pkg/contracts/domain"
)

// MapMetric selects the aggregate rendered as map column height.
type MapMetric string

const (
	// MapMetricCount aggregates transaction counts per coordinate.
	MapMetricCount MapMetric = "tx_qty"
	// MapMetricValue aggregates summed USD value per coordinate.
	MapMetricValue MapMetric = "tx_value_usd"
	// MapMetricPriceSqm aggregates median USD price per square meter.
	MapMetricPriceSqm MapMetric = "price_sqm"
)

// ValidMapMetric reports whether m names a supported map aggregate.
func ValidMapMetric(m MapMetric) bool {
	switch m {
	case MapMetricCount, MapMetricValue, MapMetricPriceSqm:
		return true
	}
	return false
}

// MapColumns groups matching transactions by coordinate and aggregates
// the chosen metric, min-max normalizing the result to [0, 1]. Records
// without coordinates are excluded. A single coordinate normalizes to 0.
// Output is sorted by latitude then longitude.
func MapColumns(records []domain.Transaction, f domain.TxFilter, metric MapMetric) []domain.MapColumn {
	type coord struct{ lat, lon float64 }
	buckets := make(map[coord][]float64)

	for i := range records {
		r := &records[i]
		if !r.HasCoordinates() || !f.Matches(r) {
			continue
		}
		c := coord{*r.Latitude, *r.Longitude}
		switch metric {
		case MapMetricCount:
			buckets[c] = append(buckets[c], 1)
		case MapMetricValue:
			buckets[c] = append(buckets[c], r.TxValueUSD)
		case MapMetricPriceSqm:
			if r.PriceSqm > 0 {
				buckets[c] = append(buckets[c], r.PriceSqm)
			}
		}
	}

	out := make([]domain.MapColumn, 0, len(buckets))
	for c, vals := range buckets {
		if len(vals) == 0 {
			continue
		}
		var value float64
		switch metric {
		case MapMetricCount:
			value = float64(len(vals))
		case MapMetricValue:
			for _, v := range vals {
				value += v
			}
		case MapMetricPriceSqm:
			value = median(vals)
		}
		out = append(out, domain.MapColumn{Latitude: c.lat, Longitude: c.lon, Value: value})
	}

	normalize(out)

	sort.Slice(out, func(i, j int) bool {
		if out[i].Latitude != out[j].Latitude {
			return out[i].Latitude < out[j].Latitude
		}
		return out[i].Longitude < out[j].Longitude
	})
	return out
}

func normalize(columns []domain.MapColumn) {
	if len(columns) == 0 {
		return
	}

	min, max := math.Inf(1), math.Inf(-1)
	for i := range columns {
		min = math.Min(min, columns[i].Value)
		max = math.Max(max, columns[i].Value)
	}

	span := max - min
	if span == 0 {
		// All columns equal height, including the single-column case.
		return
	}
	for i := range columns {
		columns[i].Normalized = (columns[i].Value - min) / span
	}
}
