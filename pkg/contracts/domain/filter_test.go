package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestQuickRangeResolve(t *testing.T) {
	now := date(2023, 6, 15)

	tests := []struct {
		name     string
		r        QuickRange
		wantFrom time.Time
		wantOK   bool
	}{
		{name: "last day", r: RangeLastDay, wantFrom: date(2023, 6, 14), wantOK: true},
		{name: "last week", r: RangeLastWeek, wantFrom: date(2023, 6, 8), wantOK: true},
		{name: "last two weeks", r: RangeLastTwo, wantFrom: date(2023, 6, 1), wantOK: true},
		{name: "last 30 days", r: RangeLast30Days, wantFrom: date(2023, 5, 16), wantOK: true},
		{name: "custom", r: RangeCustom, wantOK: false},
		{name: "unknown", r: QuickRange("fortnight"), wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to, ok := tt.r.Resolve(now)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantFrom, from)
				assert.Equal(t, now, to)
			}
		})
	}
}

func TestFilterClamp(t *testing.T) {
	f := TxFilter{From: date(2019, 1, 1), To: date(2023, 2, 1)}
	clamped := f.Clamp()
	assert.Equal(t, DatasetEpoch, clamped.From)
	assert.Equal(t, f.To, clamped.To)

	inRange := TxFilter{From: date(2023, 5, 1), To: date(2023, 6, 1)}
	assert.Equal(t, inRange, inRange.Clamp())
}

func TestFilterPrevious(t *testing.T) {
	f := TxFilter{From: date(2023, 3, 10), To: date(2023, 3, 20), Area: "dubai marina"}
	prev := f.Previous()

	// Equal-length window ending on the current window's first day.
	assert.Equal(t, date(2023, 2, 28), prev.From)
	assert.Equal(t, date(2023, 3, 10), prev.To)
	assert.Equal(t, "dubai marina", prev.Area)
}

func TestFilterMatches(t *testing.T) {
	f := TxFilter{From: date(2023, 3, 1), To: date(2023, 3, 31)}

	tx := Transaction{TxTime: time.Date(2023, 3, 31, 23, 59, 0, 0, time.UTC), Area: "Business Bay", PropType: "Unit"}
	assert.True(t, f.Matches(&tx), "end date is inclusive")

	tx.TxTime = time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)
	assert.False(t, f.Matches(&tx))

	tx.TxTime = time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, f.Matches(&tx), "start date is inclusive")
}

func TestFilterMatchesAreaAndPropType(t *testing.T) {
	tx := Transaction{TxTime: date(2023, 3, 15), Area: "Business Bay", AreaNorm: "business bay", PropType: "Unit"}

	f := TxFilter{From: date(2023, 3, 1), To: date(2023, 3, 31), Area: "BUSINESS BAY"}
	assert.True(t, f.Matches(&tx), "area match is case-insensitive")

	f.Area = "palm jumeirah"
	assert.False(t, f.Matches(&tx))

	f.Area = ""
	f.PropType = "unit"
	assert.True(t, f.Matches(&tx), "property type match is case-insensitive")

	f.PropType = "Villa"
	assert.False(t, f.Matches(&tx))
}
