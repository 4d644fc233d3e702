package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fincoach/internal/analytics"
	"fincoach/internal/core"
	"fincoach/internal/service"
	"fincoach/internal/storage"
)

// stubAnalytics returns canned values and records the last call arguments.
type stubAnalytics struct {
	summary   analytics.Summary
	trends    analytics.TrendReport
	forecasts []analytics.GoalForecast
	rate      core.Money
	dashboard service.Dashboard
	txns      []core.Transaction
	goals     []core.FinancialGoal

	err error

	lastUserID string
	lastPeriod string
	added      []core.Transaction
	deleted    []string
}

func (s *stubAnalytics) Summary(_ context.Context, userID, period string) (analytics.Summary, error) {
	s.lastUserID, s.lastPeriod = userID, period
	return s.summary, s.err
}

func (s *stubAnalytics) Trends(_ context.Context, userID string) (analytics.TrendReport, error) {
	s.lastUserID = userID
	return s.trends, s.err
}

func (s *stubAnalytics) GoalForecast(_ context.Context, userID string) ([]analytics.GoalForecast, core.Money, error) {
	s.lastUserID = userID
	return s.forecasts, s.rate, s.err
}

func (s *stubAnalytics) Dashboard(_ context.Context, userID, period string) (service.Dashboard, error) {
	s.lastUserID, s.lastPeriod = userID, period
	return s.dashboard, s.err
}

func (s *stubAnalytics) RecentTransactions(_ context.Context, userID string, _ int) ([]core.Transaction, error) {
	s.lastUserID = userID
	return s.txns, s.err
}

func (s *stubAnalytics) AddTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	if s.err != nil {
		return core.Transaction{}, s.err
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	t.ID = "generated-id"
	t.CreatedAt = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	s.added = append(s.added, t)
	return t, nil
}

func (s *stubAnalytics) Goals(_ context.Context, userID string) ([]core.FinancialGoal, error) {
	s.lastUserID = userID
	return s.goals, s.err
}

func (s *stubAnalytics) CreateGoal(_ context.Context, g core.FinancialGoal) (core.FinancialGoal, error) {
	if s.err != nil {
		return core.FinancialGoal{}, s.err
	}
	if err := g.Validate(); err != nil {
		return core.FinancialGoal{}, err
	}
	g.ID = "goal-id"
	return g, nil
}

func (s *stubAnalytics) UpdateGoal(_ context.Context, g core.FinancialGoal) (core.FinancialGoal, error) {
	if s.err != nil {
		return core.FinancialGoal{}, s.err
	}
	return g, nil
}

func (s *stubAnalytics) DeleteGoal(_ context.Context, id string) error {
	if s.err != nil {
		return s.err
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func newTestServer(stub *stubAnalytics) *Server {
	return NewServer(":0", stub, nil)
}

func doRequest(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(&stubAnalytics{})

	if rec := doRequest(t, srv, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Errorf("healthz = %d", rec.Code)
	}
	if rec := doRequest(t, srv, http.MethodGet, "/readyz", ""); rec.Code != http.StatusOK {
		t.Errorf("readyz = %d", rec.Code)
	}
}

func TestSummaryEndpoint(t *testing.T) {
	stub := &stubAnalytics{
		summary: analytics.Summary{
			TotalSpent:       core.Money{Cents: 123456},
			TotalIncome:      core.Money{Cents: 200000},
			NetCashflow:      core.Money{Cents: 76544},
			CategoryTotals:   map[string]core.Money{"food": {Cents: 123456}},
			MerchantTotals:   map[string]core.Money{"Cafe": {Cents: 123456}},
			DailyTotals:      map[string]core.Money{"2025-06-10": {Cents: 123456}},
			TransactionCount: 2,
		},
	}
	srv := newTestServer(stub)

	rec := doRequest(t, srv, http.MethodGet, "/api/users/user-1/summary?period=7d", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if stub.lastUserID != "user-1" || stub.lastPeriod != "7d" {
		t.Errorf("service called with %q %q", stub.lastUserID, stub.lastPeriod)
	}

	var got summaryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.TotalSpent != 1234.56 || got.NetCashflow != 765.44 {
		t.Errorf("got %+v", got)
	}
	if got.CategorySpending["food"] != 1234.56 {
		t.Errorf("categorySpending = %v", got.CategorySpending)
	}
	if got.Period != "7d" {
		t.Errorf("period = %q", got.Period)
	}
}

func TestTrendsEndpoint(t *testing.T) {
	stub := &stubAnalytics{
		trends: analytics.TrendReport{
			Trends: map[string]analytics.TrendEntry{
				"food": {PercentChange: 42, Direction: analytics.TrendIncreasing, RecentAverage: 55.5},
			},
			Monthly: map[string]analytics.MonthBreakdown{
				"2025-05": {
					Total:      core.Money{Cents: 10000},
					ByCategory: map[string]core.Money{"food": {Cents: 10000}},
				},
			},
		},
	}
	srv := newTestServer(stub)

	rec := doRequest(t, srv, http.MethodGet, "/api/users/user-1/trends", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var got trendsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	entry, ok := got.Trends["food"]
	if !ok {
		t.Fatalf("missing food trend: %s", rec.Body)
	}
	if entry.Change != 42 || entry.Trend != "increasing" {
		t.Errorf("got %+v", entry)
	}
	if got.MonthlyData["2025-05"].Total != 100 {
		t.Errorf("monthlyData = %+v", got.MonthlyData)
	}
}

func TestGoalForecastEndpoint(t *testing.T) {
	months := 3.5
	stub := &stubAnalytics{
		forecasts: []analytics.GoalForecast{
			{
				GoalID:       "g1",
				Title:        "Bike",
				TargetAmount: core.Money{Cents: 60000},
				Remaining:    core.Money{Cents: 60000},
				MonthsNeeded: &months,
				Status:       analytics.StatusOnTrack,
			},
			{GoalID: "g2", Title: "Idle", Status: analytics.StatusNoSavings},
		},
		rate: core.Money{Cents: 20000},
	}
	srv := newTestServer(stub)

	rec := doRequest(t, srv, http.MethodGet, "/api/users/user-1/goal-forecast", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var got forecastResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.MonthlySavings != 200 {
		t.Errorf("monthlySavings = %v", got.MonthlySavings)
	}
	if len(got.Goals) != 2 {
		t.Fatalf("got %d goals", len(got.Goals))
	}
	if got.Goals[0].MonthsNeeded == nil || *got.Goals[0].MonthsNeeded != 3.5 {
		t.Errorf("monthsNeeded = %v", got.Goals[0].MonthsNeeded)
	}
	// no_savings goals must serialize monthsNeeded as null, not zero.
	if got.Goals[1].MonthsNeeded != nil {
		t.Errorf("monthsNeeded = %v, want null", got.Goals[1].MonthsNeeded)
	}
}

func TestCreateTransaction(t *testing.T) {
	stub := &stubAnalytics{}
	srv := newTestServer(stub)

	body := `{"amount": 42.50, "kind": "debit", "description": "groceries", "merchant": "Market"}`
	rec := doRequest(t, srv, http.MethodPost, "/api/users/user-1/transactions", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	if len(stub.added) != 1 {
		t.Fatalf("added %d transactions", len(stub.added))
	}
	added := stub.added[0]
	if added.Amount.Cents != 4250 || added.UserID != "user-1" || added.Kind != core.KindDebit {
		t.Errorf("got %+v", added)
	}

	var got transactionJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID == "" || got.Amount != 42.5 {
		t.Errorf("got %+v", got)
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"negative amount", `{"amount": -5, "kind": "debit", "description": "x"}`},
		{"zero amount", `{"amount": 0, "kind": "debit", "description": "x"}`},
		{"bad kind", `{"amount": 5, "kind": "wire", "description": "x"}`},
		{"empty description", `{"amount": 5, "kind": "debit", "description": "  "}`},
		{"bad timestamp", `{"amount": 5, "kind": "debit", "description": "x", "processedAt": "yesterday"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer(&stubAnalytics{})
			rec := doRequest(t, srv, http.MethodPost, "/api/users/user-1/transactions", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400 (body %s)", rec.Code, rec.Body)
			}
		})
	}
}

func TestGoalCRUD(t *testing.T) {
	stub := &stubAnalytics{}
	srv := newTestServer(stub)

	body := `{"title": "Vacation", "targetAmount": "2500", "currentAmount": 0, "targetDate": "2026-06-01"}`
	rec := doRequest(t, srv, http.MethodPost, "/api/users/user-1/goals", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body)
	}
	var created goalJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.TargetAmount != 2500 || created.TargetDate != "2026-06-01" {
		t.Errorf("got %+v", created)
	}

	rec = doRequest(t, srv, http.MethodPut, "/api/goals/goal-id",
		`{"title": "Vacation", "targetAmount": "3000", "currentAmount": "100"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rec.Code, rec.Body)
	}

	rec = doRequest(t, srv, http.MethodDelete, "/api/goals/goal-id", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if len(stub.deleted) != 1 || stub.deleted[0] != "goal-id" {
		t.Errorf("deleted = %v", stub.deleted)
	}
}

func TestNotFoundMapping(t *testing.T) {
	stub := &stubAnalytics{err: fmt.Errorf("get goal g1: %w", storage.ErrNotFound)}
	srv := newTestServer(stub)

	rec := doRequest(t, srv, http.MethodDelete, "/api/goals/g1", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestListTransactionsLimitValidation(t *testing.T) {
	srv := newTestServer(&stubAnalytics{})

	rec := doRequest(t, srv, http.MethodGet, "/api/users/user-1/transactions?limit=9999", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestWriteRateLimit(t *testing.T) {
	srv := newTestServer(&stubAnalytics{})

	body := `{"amount": 1, "kind": "debit", "description": "x"}`
	limited := false
	for i := 0; i < 70; i++ {
		rec := doRequest(t, srv, http.MethodPost, "/api/users/user-1/transactions", body)
		if rec.Code == http.StatusTooManyRequests {
			limited = true
			if rec.Header().Get("Retry-After") != "60" {
				t.Error("expected Retry-After header")
			}
			break
		}
	}
	if !limited {
		t.Error("expected rate limiting to trigger within 70 writes")
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(&stubAnalytics{})

	rec := doRequest(t, srv, http.MethodGet, "/api/users/user-1/summary", "")
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
}
