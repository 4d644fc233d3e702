// Package analytics implements the financial analytics engine: period
// resolution, spending aggregation, trend analysis and goal forecasting.
//
// Every function here is a pure transformation over in-memory records. The
// engine performs no I/O, keeps no state between calls, never mutates its
// inputs, and takes "now" as an explicit argument wherever time matters.
package analytics

import "time"

// Period tokens identifying a relative lookback window.
const (
	PeriodWeek    = "7d"
	PeriodMonth   = "30d"
	PeriodQuarter = "90d"
	PeriodYear    = "1y"
)

// Window is a half-open time interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// ResolvePeriod maps a period token to a concrete window ending at now.
// Unknown or empty tokens fall back to 30 days; that is deliberate policy,
// not an error.
func ResolvePeriod(token string, now time.Time) Window {
	var start time.Time
	switch token {
	case PeriodWeek:
		start = now.AddDate(0, 0, -7)
	case PeriodQuarter:
		start = now.AddDate(0, 0, -90)
	case PeriodYear:
		start = now.AddDate(-1, 0, 0)
	default:
		start = now.AddDate(0, 0, -30)
	}
	return Window{Start: start, End: now}
}
