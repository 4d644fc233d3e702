// Package categorize assigns spending categories to transactions from
// keywords in the merchant and description fields. It is the deterministic
// backstop applied by the worker to transactions that arrive uncategorized.
package categorize

import (
	"strings"

	"fincoach/internal/core"
)

// keyword rules, checked in order; the first hit wins.
var rules = []struct {
	category string
	keywords []string
}{
	{"food", []string{"grocery", "market", "food", "restaurant", "cafe", "coffee", "chipotle", "mcdonald"}},
	{"transportation", []string{"gas", "fuel", "uber", "lyft", "taxi", "transport", "shell"}},
	{"entertainment", []string{"movie", "entertainment", "netflix", "spotify", "game"}},
	{"utilities", []string{"electric", "water", "internet", "phone", "utility", "at&t"}},
	{"shopping", []string{"amazon", "store", "mall", "shop", "target", "walmart", "costco", "best buy"}},
	{"healthcare", []string{"pharmacy", "cvs", "doctor", "clinic", "dental"}},
	{"housing", []string{"rent", "mortgage", "landlord"}},
}

// Guess returns the category inferred from the transaction's merchant and
// description, or the engine's fallback label when nothing matches.
func Guess(t core.Transaction) string {
	haystack := strings.ToLower(t.Merchant + " " + t.Description)
	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if strings.Contains(haystack, kw) {
				return rule.category
			}
		}
	}
	return "other"
}

// Needed reports whether the transaction still needs a categorizer pass:
// spend records with neither an assigned nor an auto category.
func Needed(t core.Transaction) bool {
	if t.Kind != core.KindDebit && t.Kind != core.KindPayment {
		return false
	}
	return t.Category == "" && t.AutoCategory == ""
}
