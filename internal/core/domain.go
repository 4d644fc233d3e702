package core

import (
	"errors"
	"strings"
	"time"
)

const (
	KindDebit      TxnKind = "debit"
	KindCredit     TxnKind = "credit"
	KindPayment    TxnKind = "payment"
	KindDeposit    TxnKind = "deposit"
	KindTransfer   TxnKind = "transfer"
	KindWithdrawal TxnKind = "withdrawal"
)

type (
	// TxnKind is the cash-flow direction/type of a transaction. Direction is
	// always derived from the kind, never from the sign of the amount.
	TxnKind string

	Money struct {
		Cents int64
	}

	// Transaction is an immutable, externally sourced ledger record.
	// Category may be empty; AutoCategory holds the categorizer's guess and
	// acts as the secondary fallback during aggregation.
	Transaction struct {
		ID           string
		UserID       string
		Amount       Money
		Kind         TxnKind
		Description  string
		Category     string
		AutoCategory string
		Merchant     string
		ProcessedAt  time.Time
		CreatedAt    time.Time
	}

	// FinancialGoal is a savings target. TargetDate is optional; a zero time
	// means no deadline was set.
	FinancialGoal struct {
		ID            string
		UserID        string
		Title         string
		TargetAmount  Money
		CurrentAmount Money
		TargetDate    time.Time
		Active        bool
		CreatedAt     time.Time
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidKind      = errors.New("invalid transaction kind")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyTitle       = errors.New("empty goal title")
	ErrInvalidTarget    = errors.New("target amount must be positive")
)

// ValidKind reports whether k is one of the known transaction kinds.
func ValidKind(k TxnKind) bool {
	switch k {
	case KindDebit, KindCredit, KindPayment, KindDeposit, KindTransfer, KindWithdrawal:
		return true
	}
	return false
}

// OccurredAt returns the effective timestamp of the transaction: the
// processed timestamp when present, otherwise the created timestamp.
func (t Transaction) OccurredAt() time.Time {
	if !t.ProcessedAt.IsZero() {
		return t.ProcessedAt
	}
	return t.CreatedAt
}

func (t Transaction) Validate() error {
	if t.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	if !ValidKind(t.Kind) {
		return ErrInvalidKind
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

// Remaining returns the amount still needed to reach the target, floored at
// zero for over-funded goals.
func (g FinancialGoal) Remaining() Money {
	rem := g.TargetAmount.Cents - g.CurrentAmount.Cents
	if rem < 0 {
		rem = 0
	}
	return Money{Cents: rem}
}

func (g FinancialGoal) Validate() error {
	if len(strings.TrimSpace(g.Title)) == 0 {
		return ErrEmptyTitle
	}
	if len(g.Title) > 200 {
		return errors.New("goal title too long (max 200 characters)")
	}
	if g.TargetAmount.Cents <= 0 {
		return ErrInvalidTarget
	}
	if g.CurrentAmount.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}
