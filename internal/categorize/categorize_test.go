package categorize

import (
	"testing"

	"fincoach/internal/core"
)

func TestGuess(t *testing.T) {
	cases := []struct {
		merchant    string
		description string
		want        string
	}{
		{"Whole Foods Market", "weekly groceries", "food"},
		{"Starbucks", "coffee run", "food"},
		{"Shell Gas Station", "", "transportation"},
		{"", "Uber trip downtown", "transportation"},
		{"Netflix", "monthly subscription", "entertainment"},
		{"Electric Company", "", "utilities"},
		{"Amazon", "", "shopping"},
		{"CVS Pharmacy", "", "healthcare"},
		{"", "Rent payment May", "housing"},
		{"Acme Corp", "misc purchase", "other"},
		{"", "", "other"},
	}
	for _, tc := range cases {
		tx := core.Transaction{Merchant: tc.merchant, Description: tc.description}
		if got := Guess(tx); got != tc.want {
			t.Errorf("Guess(%q, %q) = %q, want %q", tc.merchant, tc.description, got, tc.want)
		}
	}
}

func TestNeeded(t *testing.T) {
	cases := []struct {
		name string
		tx   core.Transaction
		want bool
	}{
		{"uncategorized debit", core.Transaction{Kind: core.KindDebit}, true},
		{"uncategorized payment", core.Transaction{Kind: core.KindPayment}, true},
		{"already categorized", core.Transaction{Kind: core.KindDebit, Category: "food"}, false},
		{"already auto-categorized", core.Transaction{Kind: core.KindDebit, AutoCategory: "food"}, false},
		{"income record", core.Transaction{Kind: core.KindCredit}, false},
		{"transfer record", core.Transaction{Kind: core.KindTransfer}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Needed(tc.tx); got != tc.want {
				t.Errorf("Needed = %v, want %v", got, tc.want)
			}
		})
	}
}
