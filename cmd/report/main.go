// Command report renders an offline market summary for a date range:
// a text report with the headline metrics and top listings, plus PNG
// charts, written to an output directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/olekukonko/tablewriter"

	"dreinsights/internal/analytics"
	"dreinsights/internal/chart"
	"dreinsights/internal/store"
	"dreinsights/pkg/contracts/domain"
)

const dateLayout = "2006-01-02"

func main() {
	var (
		dbPath = flag.String("db", "data/dre.db", "path to the SQLite store")
		outDir = flag.String("out", "reports", "output directory")
		from   = flag.String("from", "", "range start (YYYY-MM-DD)")
		to     = flag.String("to", "", "range end (YYYY-MM-DD)")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := run(*dbPath, *outDir, *from, *to, logger); err != nil {
		logger.Error("report failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(dbPath, outDir, fromStr, toStr string, logger *slog.Logger) error {
	f, err := parseRange(fromStr, toStr)
	if err != nil {
		return err
	}

	st, err := store.OpenExisting(dbPath, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	records, err := st.Transactions(ctx)
	if err != nil {
		return err
	}
	analytics.Augment(records)

	rentals, err := st.Rentals(ctx)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	if err := writeSummary(outDir, records, rentals, f); err != nil {
		return err
	}
	if err := writeCharts(outDir, records, f); err != nil {
		return err
	}

	logger.Info("report written",
		slog.String("out_dir", outDir),
		slog.String("from", f.From.Format(dateLayout)),
		slog.String("to", f.To.Format(dateLayout)))
	return nil
}

func parseRange(fromStr, toStr string) (domain.TxFilter, error) {
	now := time.Now().UTC()
	if fromStr == "" && toStr == "" {
		from, to, _ := domain.RangeLast30Days.Resolve(now)
		return domain.TxFilter{From: from, To: to}.Clamp(), nil
	}

	from, err := time.Parse(dateLayout, fromStr)
	if err != nil {
		return domain.TxFilter{}, fmt.Errorf("invalid -from date %q", fromStr)
	}
	to, err := time.Parse(dateLayout, toStr)
	if err != nil {
		return domain.TxFilter{}, fmt.Errorf("invalid -to date %q", toStr)
	}
	if to.Before(from) {
		return domain.TxFilter{}, fmt.Errorf("-to precedes -from")
	}
	return domain.TxFilter{From: from, To: to}.Clamp(), nil
}

func writeSummary(outDir string, records []domain.Transaction, rentals []domain.RentalContract, f domain.TxFilter) error {
	out, err := os.Create(filepath.Join(outDir, "summary.md"))
	if err != nil {
		return fmt.Errorf("create summary: %w", err)
	}
	defer out.Close()

	fmt.Fprintf(out, "# Dubai Real Estate Summary: %s to %s\n\n",
		f.From.Format(dateLayout), f.To.Format(dateLayout))

	m := analytics.Metrics(records, rentals, f)

	fmt.Fprintln(out, "## Headline Metrics")
	fmt.Fprintln(out)
	metricsTable := tablewriter.NewWriter(out)
	metricsTable.SetHeader([]string{"Metric", "Value", "Previous", "Change %"})
	metricsTable.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	metricsTable.SetCenterSeparator("|")
	for _, card := range []domain.MetricCard{
		m.TxCount, m.TotalValueUSD, m.MedianPriceSqm, m.MedianRentalUSD, m.LargestTxUSD,
	} {
		metricsTable.Append([]string{
			card.Label,
			grouped(card.Value),
			grouped(card.Previous),
			fmt.Sprintf("%.1f%%", card.ChangePercent),
		})
	}
	metricsTable.Render()
	fmt.Fprintln(out)

	fmt.Fprintln(out, "## Top 5 Transactions")
	fmt.Fprintln(out)
	txTable := tablewriter.NewWriter(out)
	txTable.SetHeader([]string{"#", "Project", "Area", "Value (USD)", "Size (sqm)", "Subtype"})
	txTable.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	txTable.SetCenterSeparator("|")
	for _, row := range analytics.TopTransactions(records, f, 5) {
		txTable.Append([]string{
			fmt.Sprintf("%d", row.Rank),
			row.Project,
			row.Area,
			grouped(row.TxValueUSD),
			fmt.Sprintf("%.0f", row.TxSizeSqm),
			row.PropSubtype,
		})
	}
	txTable.Render()
	fmt.Fprintln(out)

	fmt.Fprintln(out, "## Top 5 Projects")
	fmt.Fprintln(out)
	projTable := tablewriter.NewWriter(out)
	projTable.SetHeader([]string{"#", "Project", "Units Sold", "Total Value (USD)"})
	projTable.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	projTable.SetCenterSeparator("|")
	for _, row := range analytics.TopProjects(records, f, 5) {
		projTable.Append([]string{
			fmt.Sprintf("%d", row.Rank),
			row.Project,
			fmt.Sprintf("%d", row.UnitsSold),
			grouped(row.TotalValueUSD),
		})
	}
	projTable.Render()

	return nil
}

// grouped formats a value with thousands separators, e.g. 1234567 as
// "1,234,567".
func grouped(v float64) string {
	s := fmt.Sprintf("%.0f", v)
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}

	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}

func writeCharts(outDir string, records []domain.Transaction, f domain.TxFilter) error {
	charts := []struct {
		name   string
		render func(out *os.File) error
	}{
		{"by-rooms.png", func(out *os.File) error {
			return chart.RenderCategoryBars(out, "Transactions by Rooms", analytics.ByRooms(records, f))
		}},
		{"by-registration.png", func(out *os.File) error {
			return chart.RenderCategoryBars(out, "Ready vs Off-Plan", analytics.ByRegistration(records, f))
		}},
		{"by-payment.png", func(out *os.File) error {
			return chart.RenderCategoryBars(out, "Payment Types", analytics.ByPayment(records, f))
		}},
		{"median-price.png", func(out *os.File) error {
			return chart.RenderDailyMedian(out, "Median Price per Sq. M. (USD)", analytics.DailyMedianPriceSqm(records, f))
		}},
	}

	for _, c := range charts {
		out, err := os.Create(filepath.Join(outDir, c.name))
		if err != nil {
			return fmt.Errorf("create %s: %w", c.name, err)
		}
		if err := c.render(out); err != nil {
			out.Close()
			// An empty slice renders nothing; skip the chart, keep the report.
			slog.Warn("chart skipped", slog.String("chart", c.name), slog.String("error", err.Error()))
			os.Remove(filepath.Join(outDir, c.name))
			continue
		}
		if err := out.Close(); err != nil {
			return fmt.Errorf("close %s: %w", c.name, err)
		}
	}
	return nil
}
