package analytics

import (
	"time"

	"fincoach/internal/core"
)

// Fallback labels used when a transaction carries no category or merchant.
const (
	FallbackCategory = "other"
	FallbackMerchant = "Unknown"
)

// Summary is the derived spending/income breakdown for one transaction set.
// Maps are keyed by category, merchant and ISO calendar date; a missing key
// means zero. The struct is a value object owned by the caller.
type Summary struct {
	TotalSpent       core.Money
	TotalIncome      core.Money
	NetCashflow      core.Money
	CategoryTotals   map[string]core.Money
	MerchantTotals   map[string]core.Money
	DailyTotals      map[string]core.Money
	TransactionCount int
}

// EffectiveCategory resolves the category fallback chain: the assigned
// category, else the categorizer's guess, else "other". The same resolution
// order is used by both the aggregator and the trend analyzer.
func EffectiveCategory(t core.Transaction) string {
	if t.Category != "" {
		return t.Category
	}
	if t.AutoCategory != "" {
		return t.AutoCategory
	}
	return FallbackCategory
}

// EffectiveMerchant resolves the merchant with its documented fallback.
func EffectiveMerchant(t core.Transaction) string {
	if t.Merchant != "" {
		return t.Merchant
	}
	return FallbackMerchant
}

// effectiveDay returns the ISO calendar date (UTC, date-only granularity) of
// the transaction, and false when neither timestamp is usable.
func effectiveDay(t core.Transaction) (string, bool) {
	occurred := t.OccurredAt()
	if occurred.IsZero() {
		return "", false
	}
	return occurred.UTC().Format(time.DateOnly), true
}

// spendKind reports whether the kind contributes to spending buckets.
// Only debit and payment count as spend; credit and deposit count as income;
// every other kind is excluded from the summary entirely.
func spendKind(k core.TxnKind) bool {
	return k == core.KindDebit || k == core.KindPayment
}

func incomeKind(k core.TxnKind) bool {
	return k == core.KindCredit || k == core.KindDeposit
}

// Aggregate classifies and sums a transaction set into a Summary.
//
// Data-quality policy is degrade-never-fail: a negative amount counts as
// zero, missing category/merchant fall back to their documented defaults,
// and transactions without a usable timestamp are left out of the daily
// buckets while still counting toward the totals.
func Aggregate(txns []core.Transaction) Summary {
	s := Summary{
		CategoryTotals: make(map[string]core.Money),
		MerchantTotals: make(map[string]core.Money),
		DailyTotals:    make(map[string]core.Money),
	}

	for _, t := range txns {
		amount := t.Amount
		if amount.Cents < 0 {
			amount = core.Money{}
		}

		switch {
		case spendKind(t.Kind):
			s.TotalSpent.Cents += amount.Cents

			cat := EffectiveCategory(t)
			s.CategoryTotals[cat] = core.Money{Cents: s.CategoryTotals[cat].Cents + amount.Cents}

			merchant := EffectiveMerchant(t)
			s.MerchantTotals[merchant] = core.Money{Cents: s.MerchantTotals[merchant].Cents + amount.Cents}

			if day, ok := effectiveDay(t); ok {
				s.DailyTotals[day] = core.Money{Cents: s.DailyTotals[day].Cents + amount.Cents}
			}
		case incomeKind(t.Kind):
			s.TotalIncome.Cents += amount.Cents
		}
	}

	// Derived fields are computed once at the end so that
	// NetCashflow == TotalIncome - TotalSpent holds exactly.
	s.NetCashflow = core.Money{Cents: s.TotalIncome.Cents - s.TotalSpent.Cents}
	s.TransactionCount = len(txns)
	return s
}
