// Package service orchestrates the analytics engine over storage, the
// message queue, and the report caches.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"fincoach/internal/analytics"
	"fincoach/internal/cache"
	"fincoach/internal/categorize"
	"fincoach/internal/core"
)

// Trend analysis looks further back than any summary period so that the
// monthly breakdown always covers half a year.
const trendLookbackMonths = 6

const defaultRecentLimit = 50

// Store is what the service needs from persistence.
type Store interface {
	CreateTransaction(ctx context.Context, t core.Transaction) error
	ListTransactions(ctx context.Context, userID string, from, to time.Time) ([]core.Transaction, error)
	ListRecentTransactions(ctx context.Context, userID string, limit int) ([]core.Transaction, error)

	CreateGoal(ctx context.Context, g core.FinancialGoal) error
	GetGoal(ctx context.Context, id string) (core.FinancialGoal, error)
	ListActiveGoals(ctx context.Context, userID string) ([]core.FinancialGoal, error)
	UpdateGoal(ctx context.Context, g core.FinancialGoal) error
	DeactivateGoal(ctx context.Context, id string) error
}

// Publisher queues categorization work for the worker.
type Publisher interface {
	PublishCategorize(ctx context.Context, transactionID, userID string) error
}

// Dashboard bundles everything the overview page renders in one response.
type Dashboard struct {
	Summary        analytics.Summary
	Trends         analytics.TrendReport
	Goals          []analytics.GoalForecast
	MonthlySavings core.Money
	Recent         []core.Transaction
}

// AnalyticsService serves reports and accepts writes, keeping the report
// caches coherent with the underlying data.
type AnalyticsService struct {
	store      Store
	publisher  Publisher
	summaries  cache.Cache[analytics.Summary]
	trends     cache.Cache[analytics.TrendReport]
	thresholds analytics.ForecastThresholds
	now        func() time.Time
}

// NewAnalyticsService wires the service. publisher may be nil when the queue
// is unavailable; categorization then falls back to the worker's periodic
// backfill. Caches may be nil to disable caching.
func NewAnalyticsService(store Store, publisher Publisher, summaries cache.Cache[analytics.Summary], trends cache.Cache[analytics.TrendReport], th analytics.ForecastThresholds) *AnalyticsService {
	return &AnalyticsService{
		store:      store,
		publisher:  publisher,
		summaries:  summaries,
		trends:     trends,
		thresholds: th,
		now:        time.Now,
	}
}

// Summary computes a user's spending summary for the given period token.
func (s *AnalyticsService) Summary(ctx context.Context, userID, period string) (analytics.Summary, error) {
	key := userID + ":summary:" + period
	if s.summaries != nil {
		if cached, ok := s.summaries.Get(key); ok {
			return cached, nil
		}
	}

	w := analytics.ResolvePeriod(period, s.now())
	txns, err := s.store.ListTransactions(ctx, userID, w.Start, w.End)
	if err != nil {
		return analytics.Summary{}, fmt.Errorf("load transactions: %w", err)
	}

	summary := analytics.Aggregate(txns)
	if s.summaries != nil {
		s.summaries.Set(key, summary)
	}
	return summary, nil
}

// Trends computes per-category spending trends over the lookback window.
func (s *AnalyticsService) Trends(ctx context.Context, userID string) (analytics.TrendReport, error) {
	key := userID + ":trends"
	if s.trends != nil {
		if cached, ok := s.trends.Get(key); ok {
			return cached, nil
		}
	}

	now := s.now()
	txns, err := s.store.ListTransactions(ctx, userID, now.AddDate(0, -trendLookbackMonths, 0), now)
	if err != nil {
		return analytics.TrendReport{}, fmt.Errorf("load transactions: %w", err)
	}

	report := analytics.AnalyzeTrends(txns)
	if s.trends != nil {
		s.trends.Set(key, report)
	}
	return report, nil
}

// GoalForecast projects every active goal against the user's estimated
// monthly savings rate. Transactions and goals load concurrently.
func (s *AnalyticsService) GoalForecast(ctx context.Context, userID string) ([]analytics.GoalForecast, core.Money, error) {
	var (
		summary analytics.Summary
		goals   []core.FinancialGoal
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summary, err = s.Summary(gctx, userID, analytics.PeriodMonth)
		return err
	})
	g.Go(func() error {
		var err error
		goals, err = s.store.ListActiveGoals(gctx, userID)
		if err != nil {
			return fmt.Errorf("load goals: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, core.Money{}, err
	}

	rate := analytics.EstimateMonthlySavings(summary)
	return analytics.Forecast(goals, rate, s.now(), s.thresholds), rate, nil
}

// Dashboard assembles the full overview in one call, fetching the pieces
// concurrently.
func (s *AnalyticsService) Dashboard(ctx context.Context, userID, period string) (Dashboard, error) {
	var d Dashboard

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		d.Summary, err = s.Summary(gctx, userID, period)
		return err
	})
	g.Go(func() error {
		var err error
		d.Trends, err = s.Trends(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		d.Goals, d.MonthlySavings, err = s.GoalForecast(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		d.Recent, err = s.RecentTransactions(gctx, userID, defaultRecentLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	return d, nil
}

// RecentTransactions returns a user's latest transactions, newest first.
func (s *AnalyticsService) RecentTransactions(ctx context.Context, userID string, limit int) ([]core.Transaction, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	txns, err := s.store.ListRecentTransactions(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("load recent transactions: %w", err)
	}
	return txns, nil
}

// AddTransaction validates and persists a transaction, then queues it for
// categorization when it arrives without a category. A queue failure never
// fails the request; the row is saved and the backfill will catch it.
func (s *AnalyticsService) AddTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.now().UTC()
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	if err := s.store.CreateTransaction(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	if categorize.Needed(t) {
		if err := s.publishCategorize(ctx, t.ID, t.UserID); err != nil {
			slog.ErrorContext(ctx, "Failed to publish categorize message",
				"transaction_id", t.ID, "error", err)
		}
	}

	s.invalidate(t.UserID)
	return t, nil
}

// Goals lists a user's active goals.
func (s *AnalyticsService) Goals(ctx context.Context, userID string) ([]core.FinancialGoal, error) {
	goals, err := s.store.ListActiveGoals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load goals: %w", err)
	}
	return goals, nil
}

// CreateGoal validates and persists a new active goal.
func (s *AnalyticsService) CreateGoal(ctx context.Context, g core.FinancialGoal) (core.FinancialGoal, error) {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = s.now().UTC()
	}
	g.Active = true

	if err := g.Validate(); err != nil {
		return core.FinancialGoal{}, err
	}
	if err := s.store.CreateGoal(ctx, g); err != nil {
		return core.FinancialGoal{}, fmt.Errorf("save goal: %w", err)
	}

	s.invalidate(g.UserID)
	return g, nil
}

// UpdateGoal applies changes to an existing active goal.
func (s *AnalyticsService) UpdateGoal(ctx context.Context, g core.FinancialGoal) (core.FinancialGoal, error) {
	current, err := s.store.GetGoal(ctx, g.ID)
	if err != nil {
		return core.FinancialGoal{}, err
	}

	current.Title = g.Title
	current.TargetAmount = g.TargetAmount
	current.CurrentAmount = g.CurrentAmount
	current.TargetDate = g.TargetDate

	if err := current.Validate(); err != nil {
		return core.FinancialGoal{}, err
	}
	if err := s.store.UpdateGoal(ctx, current); err != nil {
		return core.FinancialGoal{}, err
	}

	s.invalidate(current.UserID)
	return current, nil
}

// DeleteGoal deactivates a goal so it no longer appears in forecasts.
func (s *AnalyticsService) DeleteGoal(ctx context.Context, id string) error {
	g, err := s.store.GetGoal(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeactivateGoal(ctx, id); err != nil {
		return err
	}

	s.invalidate(g.UserID)
	return nil
}

func (s *AnalyticsService) publishCategorize(ctx context.Context, transactionID, userID string) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "Queue not available, skipping categorize message",
			"transaction_id", transactionID)
		return nil
	}
	return s.publisher.PublishCategorize(ctx, transactionID, userID)
}

// invalidate drops every cached report for the user after a write.
func (s *AnalyticsService) invalidate(userID string) {
	if s.summaries != nil {
		s.summaries.DeletePrefix(userID + ":")
	}
	if s.trends != nil {
		s.trends.DeletePrefix(userID + ":")
	}
}
