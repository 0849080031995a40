package http

import (
	"fmt"
	"net/http"
	"time"

	"dreinsights/pkg/contracts/domain"
)

const dateLayout = "2006-01-02"

// filterFromRequest builds the render filter from query parameters.
//
//	range     quick range name; resolves from/to when not "custom"
//	from, to  explicit calendar dates (YYYY-MM-DD), inclusive
//	area      optional area name, matched case-insensitively
//	prop_type optional property type
//
// With no parameters at all the filter defaults to the last 30 days.
func filterFromRequest(r *http.Request) (domain.TxFilter, error) {
	q := r.URL.Query()
	now := time.Now().UTC()

	f := domain.TxFilter{
		Area:     q.Get("area"),
		PropType: q.Get("prop_type"),
	}

	if quick := q.Get("range"); quick != "" {
		if from, to, ok := domain.QuickRange(quick).Resolve(now); ok {
			f.From, f.To = from, to
			return f.Clamp(), nil
		}
		if domain.QuickRange(quick) != domain.RangeCustom {
			return domain.TxFilter{}, fmt.Errorf("unknown range %q", quick)
		}
	}

	fromStr, toStr := q.Get("from"), q.Get("to")
	if fromStr == "" && toStr == "" {
		f.From, f.To, _ = domain.RangeLast30Days.Resolve(now)
		return f.Clamp(), nil
	}

	from, err := time.Parse(dateLayout, fromStr)
	if err != nil {
		return domain.TxFilter{}, fmt.Errorf("invalid from date %q: expected YYYY-MM-DD", fromStr)
	}
	to, err := time.Parse(dateLayout, toStr)
	if err != nil {
		return domain.TxFilter{}, fmt.Errorf("invalid to date %q: expected YYYY-MM-DD", toStr)
	}
	if to.Before(from) {
		return domain.TxFilter{}, fmt.Errorf("to date precedes from date")
	}

	f.From, f.To = from, to
	return f.Clamp(), nil
}
