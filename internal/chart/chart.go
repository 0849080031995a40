// Package chart renders the dashboard aggregates as PNG images for the
// offline report and the /api/charts endpoints.
package chart

import (
	"fmt"
	"io"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"dreinsights/pkg/contracts/domain"
)

const (
	chartWidth  = 1024
	chartHeight = 400
	barWidth    = 40
)

// RenderCategoryBars renders category counts as a bar chart.
func RenderCategoryBars(w io.Writer, title string, counts []domain.CategoryCount) error {
	if len(counts) == 0 {
		return fmt.Errorf("no data to chart")
	}

	bars := make([]chart.Value, len(counts))
	for i, c := range counts {
		label := c.Category
		if label == "" {
			label = "(none)"
		}
		bars[i] = chart.Value{Label: label, Value: float64(c.Count)}
	}

	graph := chart.BarChart{
		Title:    title,
		Width:    chartWidth,
		Height:   chartHeight,
		BarWidth: barWidth,
		Bars:     bars,
	}
	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render bar chart: %w", err)
	}
	return nil
}

// RenderDailyMedian renders the per-day median price series as a line
// chart over time.
func RenderDailyMedian(w io.Writer, title string, series []domain.DailyMedian) error {
	if len(series) == 0 {
		return fmt.Errorf("no data to chart")
	}

	xs := make([]time.Time, len(series))
	ys := make([]float64, len(series))
	for i, dm := range series {
		day, err := time.Parse("2006-01-02", dm.TxDate)
		if err != nil {
			return fmt.Errorf("parse day %q: %w", dm.TxDate, err)
		}
		xs[i] = day
		ys[i] = dm.PriceSqm
	}

	graph := chart.Chart{
		Title:  title,
		Width:  chartWidth,
		Height: chartHeight,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "median price per sqm (USD)",
				XValues: xs,
				YValues: ys,
			},
		},
	}
	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render line chart: %w", err)
	}
	return nil
}

// RenderDailyCounts renders per-day transaction counts by collapsing the
// by-type buckets to daily totals.
func RenderDailyCounts(w io.Writer, title string, buckets []domain.TypeCount) error {
	if len(buckets) == 0 {
		return fmt.Errorf("no data to chart")
	}

	totals := make(map[string]int)
	var days []string
	for _, b := range buckets {
		if _, seen := totals[b.TxDate]; !seen {
			days = append(days, b.TxDate)
		}
		totals[b.TxDate] += b.Count
	}

	xs := make([]time.Time, len(days))
	ys := make([]float64, len(days))
	for i, d := range days {
		day, err := time.Parse("2006-01-02", d)
		if err != nil {
			return fmt.Errorf("parse day %q: %w", d, err)
		}
		xs[i] = day
		ys[i] = float64(totals[d])
	}

	graph := chart.Chart{
		Title:  title,
		Width:  chartWidth,
		Height: chartHeight,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "transactions per day",
				XValues: xs,
				YValues: ys,
			},
		},
	}
	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render line chart: %w", err)
	}
	return nil
}
