// Package synth generates realistic sample data so a fresh install has
// something to chart.
package synth

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"fincoach/internal/core"
)

var merchants = []string{
	"Whole Foods", "Starbucks", "Shell Gas Station", "Amazon", "Netflix",
	"Uber", "Target", "McDonald's", "Best Buy", "CVS Pharmacy",
	"AT&T", "Electric Company", "Water Department", "Rent Payment",
	"Chipotle", "Home Depot", "Walmart", "Costco", "Apple Store",
}

var merchantCategories = map[string]string{
	"Whole Foods": "food", "Starbucks": "food", "McDonald's": "food", "Chipotle": "food",
	"Shell Gas Station": "transportation", "Uber": "transportation",
	"Amazon": "shopping", "Target": "shopping", "Best Buy": "shopping", "Apple Store": "shopping",
	"Netflix": "entertainment", "Costco": "shopping", "Walmart": "shopping",
	"AT&T": "utilities", "Electric Company": "utilities", "Water Department": "utilities",
	"CVS Pharmacy": "healthcare", "Home Depot": "home", "Rent Payment": "housing",
}

// Generator produces sample transactions and goals. It carries its own
// random source so seeded runs are reproducible.
type Generator struct {
	rng *rand.Rand
	now func() time.Time
}

func NewGenerator(seed int64) *Generator {
	return &Generator{
		rng: rand.New(rand.NewSource(seed)),
		now: time.Now,
	}
}

// Transactions returns n sample spend transactions for the user, spread over
// the last 30 days. Rent runs noticeably larger than everything else.
func (g *Generator) Transactions(userID string, n int) []core.Transaction {
	now := g.now().UTC()
	start := now.AddDate(0, 0, -30)

	txns := make([]core.Transaction, 0, n)
	for i := 0; i < n; i++ {
		merchant := merchants[g.rng.Intn(len(merchants))]

		cents := 599 + int64(g.rng.Intn(29400))
		if merchant == "Rent Payment" {
			cents = 80000 + int64(g.rng.Intn(120000))
		}

		at := start.AddDate(0, 0, g.rng.Intn(31))
		category := merchantCategories[merchant]
		if category == "" {
			category = "other"
		}

		txns = append(txns, core.Transaction{
			ID:          uuid.NewString(),
			UserID:      userID,
			Amount:      core.Money{Cents: cents},
			Kind:        core.KindDebit,
			Description: fmt.Sprintf("Purchase at %s", merchant),
			Category:    category,
			Merchant:    merchant,
			ProcessedAt: at,
			CreatedAt:   at,
		})
	}
	return txns
}

// Goals returns two sample goals: a well-funded emergency fund with a near
// deadline and a barely-started vacation fund.
func (g *Generator) Goals(userID string) []core.FinancialGoal {
	now := g.now().UTC()
	return []core.FinancialGoal{
		{
			ID:            uuid.NewString(),
			UserID:        userID,
			Title:         "Emergency Fund",
			TargetAmount:  core.Money{Cents: 1500000},
			CurrentAmount: core.Money{Cents: 1245000},
			TargetDate:    now.AddDate(0, 0, 120),
			Active:        true,
			CreatedAt:     now.AddDate(0, 0, -60),
		},
		{
			ID:            uuid.NewString(),
			UserID:        userID,
			Title:         "Vacation Fund",
			TargetAmount:  core.Money{Cents: 500000},
			CurrentAmount: core.Money{Cents: 120000},
			TargetDate:    now.AddDate(0, 0, 180),
			Active:        true,
			CreatedAt:     now.AddDate(0, 0, -30),
		},
	}
}
