// Package worker implements the background side of the system: applying the
// keyword categorizer to queued transactions and exporting monthly summary
// rows.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fincoach/internal/amqp"
	"fincoach/internal/analytics"
	"fincoach/internal/categorize"
	"fincoach/internal/core"
	"fincoach/internal/export"
	"fincoach/internal/storage"
)

// Store is what the worker needs from persistence.
type Store interface {
	GetTransaction(ctx context.Context, id string) (core.Transaction, error)
	SetAutoCategory(ctx context.Context, id, category string) error
	ListUncategorized(ctx context.Context, limit int) ([]core.Transaction, error)
	ListUserIDs(ctx context.Context) ([]string, error)
	ListTransactions(ctx context.Context, userID string, from, to time.Time) ([]core.Transaction, error)
}

// CategorizeWorker consumes categorize messages and periodically backfills
// transactions the queue missed.
type CategorizeWorker struct {
	store     Store
	exporter  export.SummaryWriter
	batchSize int
}

// NewCategorizeWorker wires the worker. exporter may be nil when summary
// export is disabled.
func NewCategorizeWorker(store Store, exporter export.SummaryWriter, batchSize int) *CategorizeWorker {
	return &CategorizeWorker{
		store:     store,
		exporter:  exporter,
		batchSize: batchSize,
	}
}

// HandleCategorizeMessage processes one queued categorization request.
// Missing rows are dropped rather than requeued; a transaction deleted
// between publish and delivery will never become categorizable.
func (w *CategorizeWorker) HandleCategorizeMessage(ctx context.Context, msg *amqp.CategorizeMessage) error {
	t, err := w.store.GetTransaction(ctx, msg.TransactionID)
	if errors.Is(err, storage.ErrNotFound) {
		slog.WarnContext(ctx, "Transaction vanished before categorization",
			"transaction_id", msg.TransactionID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction: %w", err)
	}

	return w.categorizeOne(ctx, t)
}

// Backfill categorizes up to batchSize transactions that never got a queue
// message. This is the recovery path for lost deliveries.
func (w *CategorizeWorker) Backfill(ctx context.Context) error {
	return w.backfill(ctx, w.batchSize)
}

// StartupCheck runs a larger backfill at worker start to recover from
// downtime.
func (w *CategorizeWorker) StartupCheck(ctx context.Context) error {
	pending, err := w.store.ListUncategorized(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("list uncategorized for startup check: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "No uncategorized transactions found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found uncategorized transactions on startup, processing...",
		"count", len(pending))

	success := 0
	failed := 0
	for _, t := range pending {
		if err := w.categorizeOne(ctx, t); err != nil {
			slog.ErrorContext(ctx, "Failed to categorize during startup",
				"transaction_id", t.ID, "error", err)
			failed++
			continue
		}
		success++
	}

	slog.InfoContext(ctx, "Startup categorization completed",
		"total", len(pending),
		"categorized", success,
		"errors", failed)

	return nil
}

func (w *CategorizeWorker) backfill(ctx context.Context, limit int) error {
	pending, err := w.store.ListUncategorized(ctx, limit)
	if err != nil {
		return fmt.Errorf("list uncategorized: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Backfilling categories", "count", len(pending))

	for _, t := range pending {
		if err := w.categorizeOne(ctx, t); err != nil {
			slog.ErrorContext(ctx, "Failed to categorize transaction",
				"transaction_id", t.ID, "error", err)
		}
	}
	return nil
}

func (w *CategorizeWorker) categorizeOne(ctx context.Context, t core.Transaction) error {
	// Skip transactions categorized since the message was published.
	if !categorize.Needed(t) {
		slog.DebugContext(ctx, "Transaction no longer needs categorization",
			"transaction_id", t.ID)
		return nil
	}

	category := categorize.Guess(t)
	if err := w.store.SetAutoCategory(ctx, t.ID, category); err != nil {
		return fmt.Errorf("set auto category: %w", err)
	}
	return nil
}

// ExportMonthlySummaries writes one summary row per user for the calendar
// month preceding now. Per-user failures are logged and skipped so one bad
// user cannot block the rest.
func (w *CategorizeWorker) ExportMonthlySummaries(ctx context.Context, now time.Time) error {
	if w.exporter == nil {
		slog.DebugContext(ctx, "Summary export disabled, skipping")
		return nil
	}

	monthEnd := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthStart := monthEnd.AddDate(0, -1, 0)
	month := monthStart.Format("2006-01")

	userIDs, err := w.store.ListUserIDs(ctx)
	if err != nil {
		return fmt.Errorf("list users for export: %w", err)
	}

	exported := 0
	for _, userID := range userIDs {
		txns, err := w.store.ListTransactions(ctx, userID, monthStart, monthEnd)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to load transactions for export",
				"user_id", userID, "month", month, "error", err)
			continue
		}
		if len(txns) == 0 {
			continue
		}

		summary := analytics.Aggregate(txns)
		row := export.SummaryRow{
			UserID:           userID,
			Month:            month,
			TotalSpent:       summary.TotalSpent,
			TotalIncome:      summary.TotalIncome,
			NetCashflow:      summary.NetCashflow,
			TopCategory:      topCategory(summary),
			TransactionCount: summary.TransactionCount,
		}
		if _, err := w.exporter.Append(ctx, row); err != nil {
			slog.ErrorContext(ctx, "Failed to export summary row",
				"user_id", userID, "month", month, "error", err)
			continue
		}
		exported++
	}

	slog.InfoContext(ctx, "Monthly summary export completed",
		"month", month,
		"users", len(userIDs),
		"exported", exported)

	return nil
}

// topCategory picks the category with the largest spend, lowest name first
// on ties so the export is deterministic.
func topCategory(s analytics.Summary) string {
	best := ""
	var bestCents int64 = -1
	for name, amount := range s.CategoryTotals {
		if amount.Cents > bestCents || (amount.Cents == bestCents && name < best) {
			best = name
			bestCents = amount.Cents
		}
	}
	return best
}
