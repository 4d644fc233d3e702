package memory

import (
	"context"
	"testing"

	"fincoach/internal/core"
	"fincoach/internal/export"
)

func TestAppendAndRows(t *testing.T) {
	s := New()
	ctx := context.Background()

	ref, err := s.Append(ctx, export.SummaryRow{
		UserID:      "user-1",
		Month:       "2025-06",
		TotalSpent:  core.Money{Cents: 123400},
		TopCategory: "food",
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if ref != "mem:1" {
		t.Errorf("ref = %q, want mem:1", ref)
	}

	if _, err := s.Append(ctx, export.SummaryRow{UserID: "user-1", Month: "2025-07"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	rows := s.Rows()
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Month != "2025-06" || rows[1].Month != "2025-07" {
		t.Errorf("rows out of order: %+v", rows)
	}

	// Rows returns a copy; mutating it must not affect the store.
	rows[0].UserID = "mutated"
	if s.Rows()[0].UserID != "user-1" {
		t.Error("Rows should return a copy")
	}
}
