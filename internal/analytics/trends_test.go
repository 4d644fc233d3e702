package analytics

import (
	"testing"
	"time"

	"fincoach/internal/core"
)

// spendSeq builds a chronological sequence of debit transactions for one
// category, one per month starting January 2025.
func spendSeq(category string, dollars ...int64) []core.Transaction {
	txns := make([]core.Transaction, len(dollars))
	for i, d := range dollars {
		txns[i] = core.Transaction{
			Amount:      core.Money{Cents: d * 100},
			Kind:        core.KindDebit,
			Category:    category,
			ProcessedAt: time.Date(2025, time.Month(1+i), 10, 0, 0, 0, 0, time.UTC),
		}
	}
	return txns
}

func TestAnalyzeTrendsIncreasing(t *testing.T) {
	// Chronological amounts [10,10,10,100,100,100]: recent avg 100 vs older
	// avg 10 -> +900%.
	report := AnalyzeTrends(spendSeq("food", 10, 10, 10, 100, 100, 100))

	entry, ok := report.Trends["food"]
	if !ok {
		t.Fatal("expected a trend entry for food")
	}
	if entry.PercentChange != 900 {
		t.Errorf("PercentChange = %d, want 900", entry.PercentChange)
	}
	if entry.Direction != TrendIncreasing {
		t.Errorf("Direction = %q, want %q", entry.Direction, TrendIncreasing)
	}
	if entry.RecentAverage != 100 {
		t.Errorf("RecentAverage = %v, want 100", entry.RecentAverage)
	}
}

func TestAnalyzeTrendsSampleThreshold(t *testing.T) {
	t.Run("two samples omitted", func(t *testing.T) {
		report := AnalyzeTrends(spendSeq("food", 10, 20))
		if _, ok := report.Trends["food"]; ok {
			t.Error("category with 2 samples must not appear in the trend map")
		}
	})

	t.Run("three samples always present", func(t *testing.T) {
		report := AnalyzeTrends(spendSeq("food", 10, 20, 30))
		entry, ok := report.Trends["food"]
		if !ok {
			t.Fatal("category with 3 samples must appear in the trend map")
		}
		// No older baseline: change is exactly zero, never NaN.
		if entry.PercentChange != 0 {
			t.Errorf("PercentChange = %d, want 0 with no baseline", entry.PercentChange)
		}
		if entry.Direction != TrendStable {
			t.Errorf("Direction = %q, want %q", entry.Direction, TrendStable)
		}
		if entry.RecentAverage != 20 {
			t.Errorf("RecentAverage = %v, want 20", entry.RecentAverage)
		}
	})
}

func TestAnalyzeTrendsPartialBaseline(t *testing.T) {
	// Four samples: older = [40] only, recent = [10,10,10].
	report := AnalyzeTrends(spendSeq("shopping", 40, 10, 10, 10))

	entry := report.Trends["shopping"]
	if entry.PercentChange != -75 {
		t.Errorf("PercentChange = %d, want -75", entry.PercentChange)
	}
	if entry.Direction != TrendDecreasing {
		t.Errorf("Direction = %q, want %q", entry.Direction, TrendDecreasing)
	}
}

func TestAnalyzeTrendsZeroBaseline(t *testing.T) {
	// Older samples sum to zero; the quotient is undefined and must be
	// guarded to stable/0.
	report := AnalyzeTrends(spendSeq("utilities", 0, 0, 0, 50, 50, 50))

	entry := report.Trends["utilities"]
	if entry.PercentChange != 0 {
		t.Errorf("PercentChange = %d, want 0 on zero baseline", entry.PercentChange)
	}
	if entry.Direction != TrendStable {
		t.Errorf("Direction = %q, want %q", entry.Direction, TrendStable)
	}
}

func TestAnalyzeTrendsStableBand(t *testing.T) {
	cases := []struct {
		name      string
		amounts   []int64
		direction TrendDirection
	}{
		{"plus 10 percent is stable", []int64{100, 100, 100, 110, 110, 110}, TrendStable},
		{"minus 10 percent is stable", []int64{100, 100, 100, 90, 90, 90}, TrendStable},
		{"plus 11 percent increases", []int64{100, 100, 100, 111, 111, 111}, TrendIncreasing},
		{"minus 11 percent decreases", []int64{100, 100, 100, 89, 89, 89}, TrendDecreasing},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			report := AnalyzeTrends(spendSeq("cat", tc.amounts...))
			if got := report.Trends["cat"].Direction; got != tc.direction {
				t.Errorf("Direction = %q, want %q", got, tc.direction)
			}
		})
	}
}

func TestAnalyzeTrendsExcludesIncome(t *testing.T) {
	txns := spendSeq("food", 10, 10, 10)
	for i := 0; i < 3; i++ {
		txns = append(txns, core.Transaction{
			Amount:      core.Money{Cents: 500000},
			Kind:        core.KindCredit,
			Category:    "salary",
			ProcessedAt: time.Date(2025, time.Month(1+i), 1, 0, 0, 0, 0, time.UTC),
		})
	}

	report := AnalyzeTrends(txns)

	if _, ok := report.Trends["salary"]; ok {
		t.Error("income categories must not appear in the trend map")
	}
	if got := report.Monthly["2025-01"].Total.Cents; got != 1000 {
		t.Errorf("monthly total = %d, want 1000 (spend only)", got)
	}
}

func TestAnalyzeTrendsMonthlyBreakdown(t *testing.T) {
	txns := []core.Transaction{
		{Amount: core.Money{Cents: 1000}, Kind: core.KindDebit, Category: "food",
			ProcessedAt: time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)},
		{Amount: core.Money{Cents: 2000}, Kind: core.KindPayment, Category: "rent",
			ProcessedAt: time.Date(2025, 3, 28, 0, 0, 0, 0, time.UTC)},
		{Amount: core.Money{Cents: 500}, Kind: core.KindDebit, Category: "food",
			ProcessedAt: time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC)},
	}

	report := AnalyzeTrends(txns)

	march := report.Monthly["2025-03"]
	if march.Total.Cents != 3000 {
		t.Errorf("march total = %d, want 3000", march.Total.Cents)
	}
	if march.ByCategory["food"].Cents != 1000 || march.ByCategory["rent"].Cents != 2000 {
		t.Errorf("march by-category = %+v", march.ByCategory)
	}
	if report.Monthly["2025-04"].Total.Cents != 500 {
		t.Errorf("april total = %d, want 500", report.Monthly["2025-04"].Total.Cents)
	}
}

func TestAnalyzeTrendsOrdersByOccurrence(t *testing.T) {
	// Same data as the increasing case but shuffled in the input slice; the
	// analyzer must order samples by occurrence, not input position.
	ordered := spendSeq("food", 10, 10, 10, 100, 100, 100)
	shuffled := []core.Transaction{ordered[4], ordered[0], ordered[5], ordered[2], ordered[3], ordered[1]}

	report := AnalyzeTrends(shuffled)

	if got := report.Trends["food"].PercentChange; got != 900 {
		t.Errorf("PercentChange = %d, want 900 regardless of input order", got)
	}
}
