package analytics

import (
	"time"

	"fincoach/internal/core"
)

const (
	StatusOnTrack   GoalStatus = "on_track"
	StatusModerate  GoalStatus = "moderate_track"
	StatusOffTrack  GoalStatus = "off_track"
	StatusNoSavings GoalStatus = "no_savings"
	StatusUnknown   GoalStatus = "unknown"
)

// Average Gregorian month length in days, used to project a fractional
// month count onto a calendar deadline.
const daysPerMonth = 30.44

type (
	// GoalStatus is the coarse classification of whether a goal is projected
	// to be met on schedule.
	GoalStatus string

	// GoalForecast is the projection for a single goal. MonthsNeeded is nil
	// when no completion estimate exists (no savings, or a malformed goal).
	GoalForecast struct {
		GoalID        string
		Title         string
		TargetAmount  core.Money
		CurrentAmount core.Money
		Remaining     core.Money
		MonthsNeeded  *float64
		Status        GoalStatus
	}

	// ForecastThresholds classify goals that carry no target date. The
	// cutoffs mirror the dashboard badges and are configuration, not
	// invariants: at most OnTrackMonths to completion reads on_track, at
	// most ModerateMonths reads moderate_track, anything longer off_track.
	ForecastThresholds struct {
		OnTrackMonths  float64
		ModerateMonths float64
	}
)

// DefaultThresholds returns the stock no-deadline cutoffs: a year to be on
// track, two years for moderate.
func DefaultThresholds() ForecastThresholds {
	return ForecastThresholds{OnTrackMonths: 12, ModerateMonths: 24}
}

// Forecast projects completion time and a status label for each goal given
// an estimated monthly savings rate. now anchors target-date comparisons.
func Forecast(goals []core.FinancialGoal, monthlyRate core.Money, now time.Time, th ForecastThresholds) []GoalForecast {
	forecasts := make([]GoalForecast, 0, len(goals))
	for _, g := range goals {
		forecasts = append(forecasts, forecastGoal(g, monthlyRate, now, th))
	}
	return forecasts
}

func forecastGoal(g core.FinancialGoal, rate core.Money, now time.Time, th ForecastThresholds) GoalForecast {
	f := GoalForecast{
		GoalID:        g.ID,
		Title:         g.Title,
		TargetAmount:  g.TargetAmount,
		CurrentAmount: g.CurrentAmount,
		Remaining:     g.Remaining(),
	}

	if g.TargetAmount.Cents <= 0 {
		f.Status = StatusUnknown
		return f
	}

	if f.Remaining.Cents <= 0 {
		zero := 0.0
		f.MonthsNeeded = &zero
		f.Status = StatusOnTrack
		return f
	}

	if rate.Cents <= 0 {
		f.Status = StatusNoSavings
		return f
	}

	months := f.Remaining.Dollars() / rate.Dollars()
	f.MonthsNeeded = &months

	if !g.TargetDate.IsZero() {
		projected := now.Add(time.Duration(months * daysPerMonth * 24 * float64(time.Hour)))
		if !projected.After(g.TargetDate) {
			f.Status = StatusOnTrack
		} else {
			f.Status = StatusModerate
		}
		return f
	}

	switch {
	case months <= th.OnTrackMonths:
		f.Status = StatusOnTrack
	case months <= th.ModerateMonths:
		f.Status = StatusModerate
	default:
		f.Status = StatusOffTrack
	}
	return f
}

// EstimateMonthlySavings derives a monthly savings rate from a 30-day
// summary. When the window shows spending but no recorded income, income is
// estimated at 1.3x spend, the heuristic the dashboard has always used for
// expense-only feeds. The result is floored at zero.
func EstimateMonthlySavings(s Summary) core.Money {
	spent := s.TotalSpent
	income := s.TotalIncome
	if income.Cents == 0 && spent.Cents > 0 {
		income = core.FromDollars(spent.Dollars() * 1.3)
	}
	savings := income.Cents - spent.Cents
	if savings < 0 {
		savings = 0
	}
	return core.Money{Cents: savings}
}
