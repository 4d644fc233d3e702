// Package export defines the outbound port for publishing monthly summary
// rows to an external sink, with Google Sheets and in-memory adapters.
package export

import (
	"context"

	"fincoach/internal/core"
)

// SummaryRow is one exported line: a user's totals for one calendar month.
type SummaryRow struct {
	UserID           string
	Month            string // "2006-01"
	TotalSpent       core.Money
	TotalIncome      core.Money
	NetCashflow      core.Money
	TopCategory      string
	TransactionCount int
}

// SummaryWriter is the port for outbound summary adapters.
type SummaryWriter interface {
	Append(ctx context.Context, row SummaryRow) (rowRef string, err error)
}
