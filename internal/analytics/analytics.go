// Package analytics computes the dashboard aggregates over transaction
// slices. Every function is pure: it takes records plus a date filter and
// returns deterministic results, with ties broken by explicit secondary
// sort keys.
package analytics

import (
	"sort"
	"strings"
	"time"

	"dreinsights/pkg/contracts/domain"
)

// PercentChange returns the percent change from x1 to x2.
// A zero base yields 0, not an infinity.
func PercentChange(x1, x2 float64) float64 {
	if x1 == 0 {
		return 0
	}
	return (x2 - x1) / x1 * 100
}

// Augment fills the derived fields of each record in place: tx_date,
// ISO week number, USD value and USD price per square meter.
func Augment(records []domain.Transaction) {
	for i := range records {
		r := &records[i]
		r.TxDate = r.TxTime.Format("2006-01-02")
		_, r.WeekNumber = r.TxTime.ISOWeek()
		r.TxValueUSD = r.TxValue / domain.AEDToUSD
		if r.PropSizeSqm > 0 {
			r.PriceSqm = r.TxValueUSD / r.PropSizeSqm
		}
	}
}

// Slice returns the records matching the filter, preserving input order.
func Slice(records []domain.Transaction, f domain.TxFilter) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(records))
	for i := range records {
		if f.Matches(&records[i]) {
			out = append(out, records[i])
		}
	}
	return out
}

// Count returns the number of matching transactions.
func Count(records []domain.Transaction, f domain.TxFilter) int {
	n := 0
	for i := range records {
		if f.Matches(&records[i]) {
			n++
		}
	}
	return n
}

// TotalValueUSD sums the USD value of matching transactions.
func TotalValueUSD(records []domain.Transaction, f domain.TxFilter) float64 {
	var total float64
	for i := range records {
		if f.Matches(&records[i]) {
			total += records[i].TxValueUSD
		}
	}
	return total
}

// MedianPriceSqm returns the median USD price per square meter across
// matching transactions. Records with no computable price are excluded.
func MedianPriceSqm(records []domain.Transaction, f domain.TxFilter) float64 {
	var prices []float64
	for i := range records {
		if f.Matches(&records[i]) && records[i].PriceSqm > 0 {
			prices = append(prices, records[i].PriceSqm)
		}
	}
	return median(prices)
}

// LargestTxUSD returns the largest single USD transaction value.
func LargestTxUSD(records []domain.Transaction, f domain.TxFilter) float64 {
	var max float64
	for i := range records {
		if f.Matches(&records[i]) && records[i].TxValueUSD > max {
			max = records[i].TxValueUSD
		}
	}
	return max
}

// MedianRentalUSD returns the median annual rent, in USD, of rental
// contracts starting in the filter's date range. Returns 0 when the
// rentals data set is empty.
func MedianRentalUSD(rentals []domain.RentalContract, f domain.TxFilter) float64 {
	var rents []float64
	for i := range rentals {
		r := &rentals[i]
		day := r.StartDate.Truncate(24 * time.Hour)
		if day.Before(f.From.Truncate(24*time.Hour)) || day.After(f.To.Truncate(24*time.Hour)) {
			continue
		}
		if f.Area != "" && !strings.EqualFold(f.Area, r.Area) {
			continue
		}
		if f.PropType != "" && !strings.EqualFold(f.PropType, r.PropType) {
			continue
		}
		rents = append(rents, r.AnnualRent/domain.AEDToUSD)
	}
	return median(rents)
}

// Metrics builds the five headline cards for the filter range, with deltas
// against the preceding period of equal length.
func Metrics(records []domain.Transaction, rentals []domain.RentalContract, f domain.TxFilter) domain.DashboardMetrics {
	prev := f.Previous()

	card := func(label string, current, previous float64) domain.MetricCard {
		return domain.MetricCard{
			Label:         label,
			Value:         current,
			Previous:      previous,
			ChangePercent: PercentChange(previous, current),
		}
	}

	return domain.DashboardMetrics{
		TxCount:         card("Number of Transactions", float64(Count(records, f)), float64(Count(records, prev))),
		TotalValueUSD:   card("Total Transactions Value", TotalValueUSD(records, f), TotalValueUSD(records, prev)),
		MedianPriceSqm:  card("Median Price per Sq. M.", MedianPriceSqm(records, f), MedianPriceSqm(records, prev)),
		MedianRentalUSD: card("Median Rental Price", MedianRentalUSD(rentals, f), MedianRentalUSD(rentals, prev)),
		LargestTxUSD:    card("Largest Transaction", LargestTxUSD(records, f), LargestTxUSD(records, prev)),
	}
}

// ByTypePerDay counts matching transactions per (property type, day),
// sorted by day then type.
func ByTypePerDay(records []domain.Transaction, f domain.TxFilter) []domain.TypeCount {
	type key struct{ propType, txDate string }
	counts := make(map[key]int)
	for i := range records {
		if f.Matches(&records[i]) {
			counts[key{records[i].PropType, records[i].TxDate}]++
		}
	}

	out := make([]domain.TypeCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, domain.TypeCount{PropType: k.propType, TxDate: k.txDate, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TxDate != out[j].TxDate {
			return out[i].TxDate < out[j].TxDate
		}
		return out[i].PropType < out[j].PropType
	})
	return out
}

// ByRooms counts matching transactions per room label, sorted by label
// descending as the room axis reads.
func ByRooms(records []domain.Transaction, f domain.TxFilter) []domain.CategoryCount {
	out := countByCategory(records, f, func(t *domain.Transaction) string { return t.Rooms })
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category > out[j].Category
		}
		return out[i].Count > out[j].Count
	})
	return out
}

// ByRegistration counts matching transactions per registration type
// (ready vs off-plan).
func ByRegistration(records []domain.Transaction, f domain.TxFilter) []domain.CategoryCount {
	return countByCategory(records, f, func(t *domain.Transaction) string { return t.RegType })
}

// ByPayment counts matching transactions per payment type (sales,
// mortgages, gifts).
func ByPayment(records []domain.Transaction, f domain.TxFilter) []domain.CategoryCount {
	return countByCategory(records, f, func(t *domain.Transaction) string { return t.TxType })
}

func countByCategory(records []domain.Transaction, f domain.TxFilter, key func(*domain.Transaction) string) []domain.CategoryCount {
	counts := make(map[string]int)
	for i := range records {
		if f.Matches(&records[i]) {
			counts[key(&records[i])]++
		}
	}

	out := make([]domain.CategoryCount, 0, len(counts))
	for category, n := range counts {
		out = append(out, domain.CategoryCount{Category: category, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// DailyMedianPriceSqm returns the median USD price per square meter for
// each day in the range, sorted by day ascending.
func DailyMedianPriceSqm(records []domain.Transaction, f domain.TxFilter) []domain.DailyMedian {
	prices := make(map[string][]float64)
	for i := range records {
		if f.Matches(&records[i]) && records[i].PriceSqm > 0 {
			prices[records[i].TxDate] = append(prices[records[i].TxDate], records[i].PriceSqm)
		}
	}

	out := make([]domain.DailyMedian, 0, len(prices))
	for day, vals := range prices {
		out = append(out, domain.DailyMedian{TxDate: day, PriceSqm: median(vals)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TxDate < out[j].TxDate })
	return out
}

// TopTransactions returns the n largest matching transactions by USD
// value, excluding land plots. Ties break on transaction number so the
// listing is stable.
func TopTransactions(records []domain.Transaction, f domain.TxFilter, n int) []domain.TopTransaction {
	var matched []*domain.Transaction
	for i := range records {
		if records[i].PropType == domain.PropTypeLand {
			continue
		}
		if f.Matches(&records[i]) {
			matched = append(matched, &records[i])
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].TxValueUSD != matched[j].TxValueUSD {
			return matched[i].TxValueUSD > matched[j].TxValueUSD
		}
		return matched[i].TxNumber < matched[j].TxNumber
	})

	if len(matched) > n {
		matched = matched[:n]
	}

	out := make([]domain.TopTransaction, len(matched))
	for i, t := range matched {
		out[i] = domain.TopTransaction{
			Rank:        i + 1,
			Project:     t.Project,
			Area:        t.Area,
			TxValueUSD:  t.TxValueUSD,
			TxSizeSqm:   t.TxSizeSqm,
			PropSubtype: t.PropSubtype,
		}
	}
	return out
}

// TopProjects returns the n projects with the most matching transactions,
// with the summed USD value of each. Ties break on project name.
func TopProjects(records []domain.Transaction, f domain.TxFilter, n int) []domain.TopProject {
	type agg struct {
		units int
		total float64
	}
	projects := make(map[string]*agg)
	for i := range records {
		if !f.Matches(&records[i]) {
			continue
		}
		a, ok := projects[records[i].Project]
		if !ok {
			a = &agg{}
			projects[records[i].Project] = a
		}
		a.units++
		a.total += records[i].TxValueUSD
	}

	out := make([]domain.TopProject, 0, len(projects))
	for name, a := range projects {
		out = append(out, domain.TopProject{Project: name, UnitsSold: a.units, TotalValueUSD: a.total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UnitsSold != out[j].UnitsSold {
			return out[i].UnitsSold > out[j].UnitsSold
		}
		return out[i].Project < out[j].Project
	})

	if len(out) > n {
		out = out[:n]
	}
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
