package domain

import (
	"strings"
	"time"
)

// DatasetEpoch is the earliest date the open-data portal exports.
// Filter ranges are clamped to never start before it.
var DatasetEpoch = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

// QuickRange names a predefined date window ending today.
type QuickRange string

const (
	RangeCustom     QuickRange = "custom"
	RangeLastDay    QuickRange = "last_day"
	RangeLastWeek   QuickRange = "last_week"
	RangeLastTwo    QuickRange = "last_two_weeks"
	RangeLast30Days QuickRange = "last_30_days"
)

// Resolve turns a quick range into an explicit [from, to] pair ending at now.
// Custom (and unknown) ranges return ok=false and the caller's explicit dates
// stay in effect.
func (q QuickRange) Resolve(now time.Time) (from, to time.Time, ok bool) {
	to = now
	switch q {
	case RangeLastDay:
		return now.AddDate(0, 0, -1), to, true
	case RangeLastWeek:
		return now.AddDate(0, 0, -7), to, true
	case RangeLastTwo:
		return now.AddDate(0, 0, -14), to, true
	case RangeLast30Days:
		return now.AddDate(0, 0, -30), to, true
	}
	return time.Time{}, time.Time{}, false
}

// TxFilter is one render cycle's filter selection. It is transient: built
// from the request, applied, and discarded.
type TxFilter struct {
	From     time.Time `json:"from" validate:"required"`
	To       time.Time `json:"to" validate:"required,gtefield=From"`
	Area     string    `json:"area,omitempty"`
	PropType string    `json:"prop_type,omitempty"`
}

// Clamp bounds the range to the dataset epoch.
func (f TxFilter) Clamp() TxFilter {
	if f.From.Before(DatasetEpoch) {
		f.From = DatasetEpoch
	}
	return f
}

// Previous returns the immediately preceding range of equal length,
// used for metric-card deltas.
func (f TxFilter) Previous() TxFilter {
	span := f.To.Sub(f.From)
	return TxFilter{From: f.From.Add(-span), To: f.From, Area: f.Area, PropType: f.PropType}
}

// Matches reports whether the transaction falls inside the filter. Date
// comparison is on calendar dates, inclusive on both ends.
func (f TxFilter) Matches(t *Transaction) bool {
	d := t.TxTime.Truncate(24 * time.Hour)
	from := f.From.Truncate(24 * time.Hour)
	to := f.To.Truncate(24 * time.Hour)
	if d.Before(from) || d.After(to) {
		return false
	}
	if f.Area != "" && !strings.EqualFold(t.Area, f.Area) && !strings.EqualFold(t.AreaNorm, f.Area) {
		return false
	}
	if f.PropType != "" && !strings.EqualFold(t.PropType, f.PropType) {
		return false
	}
	return true
}
