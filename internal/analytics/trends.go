package analytics

import (
	"math"
	"sort"

	"fincoach/internal/core"
)

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

// Categories need at least this many spend samples to be trend-classified;
// anything below is omitted from the trend map, absence being the signal.
const minTrendSamples = 3

type (
	// TrendDirection is the coarse three-way classification of a category's
	// recent spending trajectory.
	TrendDirection string

	// TrendEntry describes one category's short-term trajectory.
	TrendEntry struct {
		PercentChange int
		Direction     TrendDirection
		RecentAverage float64
	}

	// MonthBreakdown is the spend total for one calendar month, with its
	// per-category split.
	MonthBreakdown struct {
		Total      core.Money
		ByCategory map[string]core.Money
	}

	// TrendReport is the full output of AnalyzeTrends. Monthly is keyed by
	// "YYYY-MM".
	TrendReport struct {
		Trends  map[string]TrendEntry
		Monthly map[string]MonthBreakdown
	}
)

// AnalyzeTrends classifies each spending category's trajectory over the
// supplied transactions. Income is excluded by design: trends describe
// spending behavior only.
//
// The classification works on the chronological sequence of individual
// transaction amounts per category, most-recent-last: the mean of the last
// three samples is compared against the mean of the up-to-three samples
// preceding them. With no prior baseline the change is exactly zero, and a
// zero baseline with prior samples is guarded to stable/zero rather than
// producing an undefined quotient.
func AnalyzeTrends(txns []core.Transaction) TrendReport {
	report := TrendReport{
		Trends:  make(map[string]TrendEntry),
		Monthly: make(map[string]MonthBreakdown),
	}

	spend := make([]core.Transaction, 0, len(txns))
	for _, t := range txns {
		if spendKind(t.Kind) {
			spend = append(spend, t)
		}
	}
	sort.SliceStable(spend, func(i, j int) bool {
		return spend[i].OccurredAt().Before(spend[j].OccurredAt())
	})

	samples := make(map[string][]float64)
	for _, t := range spend {
		amount := t.Amount
		if amount.Cents < 0 {
			amount = core.Money{}
		}
		cat := EffectiveCategory(t)
		samples[cat] = append(samples[cat], amount.Dollars())

		occurred := t.OccurredAt()
		if occurred.IsZero() {
			continue
		}
		monthKey := occurred.UTC().Format("2006-01")
		mb, ok := report.Monthly[monthKey]
		if !ok {
			mb = MonthBreakdown{ByCategory: make(map[string]core.Money)}
		}
		mb.Total = core.Money{Cents: mb.Total.Cents + amount.Cents}
		mb.ByCategory[cat] = core.Money{Cents: mb.ByCategory[cat].Cents + amount.Cents}
		report.Monthly[monthKey] = mb
	}

	for cat, amounts := range samples {
		if len(amounts) < minTrendSamples {
			continue
		}
		report.Trends[cat] = classify(amounts)
	}
	return report
}

func classify(amounts []float64) TrendEntry {
	recent := amounts[len(amounts)-minTrendSamples:]
	olderStart := len(amounts) - 2*minTrendSamples
	if olderStart < 0 {
		olderStart = 0
	}
	older := amounts[olderStart : len(amounts)-minTrendSamples]

	recentAvg := mean(recent)
	olderAvg := recentAvg
	if len(older) > 0 {
		olderAvg = mean(older)
	}

	// olderAvg == 0 with a non-empty baseline would divide by zero; treat
	// that as no change.
	change := 0
	if olderAvg != 0 {
		change = int(math.Round((recentAvg - olderAvg) / olderAvg * 100))
	}

	direction := TrendStable
	switch {
	case change > 10:
		direction = TrendIncreasing
	case change < -10:
		direction = TrendDecreasing
	}

	return TrendEntry{
		PercentChange: change,
		Direction:     direction,
		RecentAverage: recentAvg,
	}
}

func mean(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}
