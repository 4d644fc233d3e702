package synth

import (
	"testing"
	"time"
)

func TestTransactions(t *testing.T) {
	g := NewGenerator(1)
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return now }

	txns := g.Transactions("user-1", 50)
	if len(txns) != 50 {
		t.Fatalf("got %d transactions, want 50", len(txns))
	}

	seen := map[string]bool{}
	earliest := now.AddDate(0, 0, -30)
	for _, tx := range txns {
		if seen[tx.ID] {
			t.Fatalf("duplicate ID %s", tx.ID)
		}
		seen[tx.ID] = true

		if err := tx.Validate(); err != nil {
			t.Errorf("invalid transaction: %v", err)
		}
		if tx.UserID != "user-1" {
			t.Errorf("UserID = %q", tx.UserID)
		}
		if tx.Category == "" || tx.Merchant == "" {
			t.Errorf("missing classification: %+v", tx)
		}
		at := tx.OccurredAt()
		if at.Before(earliest) || at.After(now.AddDate(0, 0, 1)) {
			t.Errorf("timestamp %v outside the 30-day spread", at)
		}
		if tx.Merchant == "Rent Payment" && tx.Amount.Cents < 80000 {
			t.Errorf("rent amount %d too small", tx.Amount.Cents)
		}
	}
}

func TestTransactionsReproducible(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	a := NewGenerator(42)
	a.now = func() time.Time { return now }
	b := NewGenerator(42)
	b.now = func() time.Time { return now }

	ta := a.Transactions("u", 10)
	tb := b.Transactions("u", 10)
	for i := range ta {
		if ta[i].Merchant != tb[i].Merchant || ta[i].Amount != tb[i].Amount {
			t.Fatalf("same seed diverged at %d: %+v vs %+v", i, ta[i], tb[i])
		}
	}
}

func TestGoals(t *testing.T) {
	g := NewGenerator(1)
	goals := g.Goals("user-1")
	if len(goals) != 2 {
		t.Fatalf("got %d goals, want 2", len(goals))
	}
	for _, goal := range goals {
		if err := goal.Validate(); err != nil {
			t.Errorf("invalid goal %q: %v", goal.Title, err)
		}
		if !goal.Active || goal.TargetDate.IsZero() {
			t.Errorf("got %+v", goal)
		}
	}
}
