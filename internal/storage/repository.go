package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"fincoach/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, amount_cents, kind, description, category, auto_category, merchant, processed_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.Amount.Cents, string(t.Kind), t.Description,
		t.Category, t.AutoCategory, t.Merchant, nullTime(t.ProcessedAt), t.CreatedAt)
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"user_id", t.UserID,
		"kind", t.Kind,
		"amount_cents", t.Amount.Cents)

	return nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, selectTransaction+` WHERE id = ?`, id)

	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("get transaction %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %s: %w", id, err)
	}
	return t, nil
}

// ListTransactions returns a user's transactions whose effective timestamp
// falls inside [from, to). The effective timestamp is processed_at when set,
// created_at otherwise, matching the engine's date resolution.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID string, from, to time.Time) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, selectTransaction+`
		WHERE user_id = ?
		  AND COALESCE(processed_at, created_at) >= ?
		  AND COALESCE(processed_at, created_at) < ?
		ORDER BY COALESCE(processed_at, created_at)`,
		userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// ListRecentTransactions returns a user's most recent transactions, newest first.
func (r *SQLiteRepository) ListRecentTransactions(ctx context.Context, userID string, limit int) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, selectTransaction+`
		WHERE user_id = ?
		ORDER BY COALESCE(processed_at, created_at) DESC
		LIMIT ?`,
		userID, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list recent transactions: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// ListUncategorized returns spend transactions awaiting a categorizer pass,
// oldest first.
func (r *SQLiteRepository) ListUncategorized(ctx context.Context, limit int) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, selectTransaction+`
		WHERE category = '' AND auto_category = '' AND kind IN ('debit', 'payment')
		ORDER BY created_at
		LIMIT ?`,
		int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list uncategorized transactions: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// ListUserIDs returns every user with at least one transaction.
func (r *SQLiteRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT user_id FROM transactions ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list user ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user ids: %w", err)
	}
	return ids, nil
}

func (r *SQLiteRepository) SetAutoCategory(ctx context.Context, id, category string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET auto_category = ? WHERE id = ?`, category, id)
	if err != nil {
		return fmt.Errorf("set auto category: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("set auto category for %s: %w", id, ErrNotFound)
	}

	slog.InfoContext(ctx, "Transaction auto-categorized", "id", id, "category", category)
	return nil
}

func (r *SQLiteRepository) CreateGoal(ctx context.Context, g core.FinancialGoal) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO goals (id, user_id, title, target_cents, current_cents, target_date, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.UserID, g.Title, g.TargetAmount.Cents, g.CurrentAmount.Cents,
		nullTime(g.TargetDate), boolToInt(g.Active), g.CreatedAt)
	if err != nil {
		return fmt.Errorf("create goal: %w", err)
	}

	slog.InfoContext(ctx, "Goal saved",
		"id", g.ID,
		"user_id", g.UserID,
		"title", g.Title,
		"target_cents", g.TargetAmount.Cents)

	return nil
}

func (r *SQLiteRepository) GetGoal(ctx context.Context, id string) (core.FinancialGoal, error) {
	row := r.db.QueryRowContext(ctx, selectGoal+` WHERE id = ?`, id)

	g, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.FinancialGoal{}, fmt.Errorf("get goal %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.FinancialGoal{}, fmt.Errorf("get goal %s: %w", id, err)
	}
	return g, nil
}

// ListActiveGoals returns a user's active goals, oldest first.
func (r *SQLiteRepository) ListActiveGoals(ctx context.Context, userID string) ([]core.FinancialGoal, error) {
	rows, err := r.db.QueryContext(ctx, selectGoal+`
		WHERE user_id = ? AND is_active = 1
		ORDER BY created_at`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list active goals: %w", err)
	}
	defer rows.Close()

	var goals []core.FinancialGoal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate goals: %w", err)
	}
	return goals, nil
}

func (r *SQLiteRepository) UpdateGoal(ctx context.Context, g core.FinancialGoal) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE goals
		SET title = ?, target_cents = ?, current_cents = ?, target_date = ?
		WHERE id = ? AND is_active = 1`,
		g.Title, g.TargetAmount.Cents, g.CurrentAmount.Cents, nullTime(g.TargetDate), g.ID)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update goal %s: %w", g.ID, ErrNotFound)
	}

	slog.InfoContext(ctx, "Goal updated", "id", g.ID, "title", g.Title)
	return nil
}

// DeactivateGoal soft-deletes a goal so historical forecasts stay reproducible.
func (r *SQLiteRepository) DeactivateGoal(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE goals SET is_active = 0 WHERE id = ? AND is_active = 1`, id)
	if err != nil {
		return fmt.Errorf("deactivate goal: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("deactivate goal %s: %w", id, ErrNotFound)
	}

	slog.InfoContext(ctx, "Goal deactivated", "id", id)
	return nil
}

const selectTransaction = `
	SELECT id, user_id, amount_cents, kind, description, category, auto_category, merchant, processed_at, created_at
	FROM transactions`

const selectGoal = `
	SELECT id, user_id, title, target_cents, current_cents, target_date, is_active, created_at
	FROM goals`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t           core.Transaction
		kind        string
		processedAt sql.NullTime
	)
	err := row.Scan(&t.ID, &t.UserID, &t.Amount.Cents, &kind, &t.Description,
		&t.Category, &t.AutoCategory, &t.Merchant, &processedAt, &t.CreatedAt)
	if err != nil {
		return core.Transaction{}, err
	}
	t.Kind = core.TxnKind(kind)
	if processedAt.Valid {
		t.ProcessedAt = processedAt.Time
	}
	return t, nil
}

func scanGoal(row rowScanner) (core.FinancialGoal, error) {
	var (
		g          core.FinancialGoal
		targetDate sql.NullTime
		active     int64
	)
	err := row.Scan(&g.ID, &g.UserID, &g.Title, &g.TargetAmount.Cents,
		&g.CurrentAmount.Cents, &targetDate, &active, &g.CreatedAt)
	if err != nil {
		return core.FinancialGoal{}, err
	}
	if targetDate.Valid {
		g.TargetDate = targetDate.Time
	}
	g.Active = active != 0
	return g, nil
}

func collectTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	var txns []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txns, nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
