package http

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"fincoach/internal/analytics"
	"fincoach/internal/core"
	"fincoach/internal/service"
)

// Wire types. Amounts are decimal dollars in responses; requests carry
// amounts as JSON numbers or numeric strings and are parsed strictly.

type summaryResponse struct {
	Period           string             `json:"period"`
	TotalSpent       float64            `json:"totalSpent"`
	TotalIncome      float64            `json:"totalIncome"`
	NetCashflow      float64            `json:"netCashflow"`
	CategorySpending map[string]float64 `json:"categorySpending"`
	MerchantSpending map[string]float64 `json:"merchantSpending"`
	DailySpending    map[string]float64 `json:"dailySpending"`
	TransactionCount int                `json:"transactionCount"`
}

type trendEntryJSON struct {
	Change        int     `json:"change"`
	Trend         string  `json:"trend"`
	RecentAverage float64 `json:"recentAverage"`
}

type monthBreakdownJSON struct {
	Total      float64            `json:"total"`
	Categories map[string]float64 `json:"categories"`
}

type trendsResponse struct {
	Trends      map[string]trendEntryJSON     `json:"trends"`
	MonthlyData map[string]monthBreakdownJSON `json:"monthlyData"`
}

type goalForecastJSON struct {
	GoalID        string   `json:"goalId"`
	Title         string   `json:"title"`
	TargetAmount  float64  `json:"targetAmount"`
	CurrentAmount float64  `json:"currentAmount"`
	Remaining     float64  `json:"remaining"`
	MonthsNeeded  *float64 `json:"monthsNeeded"`
	Status        string   `json:"status"`
}

type forecastResponse struct {
	MonthlySavings float64            `json:"monthlySavings"`
	Goals          []goalForecastJSON `json:"goals"`
}

type transactionJSON struct {
	ID           string  `json:"id"`
	UserID       string  `json:"userId"`
	Amount       float64 `json:"amount"`
	Kind         string  `json:"kind"`
	Description  string  `json:"description"`
	Category     string  `json:"category,omitempty"`
	AutoCategory string  `json:"autoCategory,omitempty"`
	Merchant     string  `json:"merchant,omitempty"`
	ProcessedAt  string  `json:"processedAt,omitempty"`
	CreatedAt    string  `json:"createdAt"`
}

type goalJSON struct {
	ID            string  `json:"id"`
	UserID        string  `json:"userId"`
	Title         string  `json:"title"`
	TargetAmount  float64 `json:"targetAmount"`
	CurrentAmount float64 `json:"currentAmount"`
	TargetDate    string  `json:"targetDate,omitempty"`
	CreatedAt     string  `json:"createdAt"`
}

type dashboardResponse struct {
	Summary            summaryResponse   `json:"summary"`
	Trends             trendsResponse    `json:"trends"`
	GoalForecast       forecastResponse  `json:"goalForecast"`
	RecentTransactions []transactionJSON `json:"recentTransactions"`
}

// amount accepts a JSON number or a numeric string; validation happens in
// the strict cent parser, not here.
type amount string

func (a *amount) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = amount(s)
		return nil
	}
	*a = amount(data)
	return nil
}

func (a amount) String() string { return string(a) }

type createTransactionRequest struct {
	Amount      amount `json:"amount"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Merchant    string `json:"merchant"`
	ProcessedAt string `json:"processedAt"`
}

type goalRequest struct {
	Title         string `json:"title"`
	TargetAmount  amount `json:"targetAmount"`
	CurrentAmount amount `json:"currentAmount"`
	TargetDate    string `json:"targetDate"`
}

func moneyMap(in map[string]core.Money) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v.Dollars()
	}
	return out
}

func toSummaryResponse(period string, s analytics.Summary) summaryResponse {
	return summaryResponse{
		Period:           period,
		TotalSpent:       s.TotalSpent.Dollars(),
		TotalIncome:      s.TotalIncome.Dollars(),
		NetCashflow:      s.NetCashflow.Dollars(),
		CategorySpending: moneyMap(s.CategoryTotals),
		MerchantSpending: moneyMap(s.MerchantTotals),
		DailySpending:    moneyMap(s.DailyTotals),
		TransactionCount: s.TransactionCount,
	}
}

func toTrendsResponse(r analytics.TrendReport) trendsResponse {
	out := trendsResponse{
		Trends:      make(map[string]trendEntryJSON, len(r.Trends)),
		MonthlyData: make(map[string]monthBreakdownJSON, len(r.Monthly)),
	}
	for cat, e := range r.Trends {
		out.Trends[cat] = trendEntryJSON{
			Change:        e.PercentChange,
			Trend:         string(e.Direction),
			RecentAverage: e.RecentAverage,
		}
	}
	for month, mb := range r.Monthly {
		out.MonthlyData[month] = monthBreakdownJSON{
			Total:      mb.Total.Dollars(),
			Categories: moneyMap(mb.ByCategory),
		}
	}
	return out
}

func toForecastResponse(goals []analytics.GoalForecast, rate core.Money) forecastResponse {
	out := forecastResponse{
		MonthlySavings: rate.Dollars(),
		Goals:          make([]goalForecastJSON, 0, len(goals)),
	}
	for _, f := range goals {
		out.Goals = append(out.Goals, goalForecastJSON{
			GoalID:        f.GoalID,
			Title:         f.Title,
			TargetAmount:  f.TargetAmount.Dollars(),
			CurrentAmount: f.CurrentAmount.Dollars(),
			Remaining:     f.Remaining.Dollars(),
			MonthsNeeded:  f.MonthsNeeded,
			Status:        string(f.Status),
		})
	}
	return out
}

func toTransactionJSON(t core.Transaction) transactionJSON {
	out := transactionJSON{
		ID:           t.ID,
		UserID:       t.UserID,
		Amount:       t.Amount.Dollars(),
		Kind:         string(t.Kind),
		Description:  t.Description,
		Category:     t.Category,
		AutoCategory: t.AutoCategory,
		Merchant:     t.Merchant,
		CreatedAt:    t.CreatedAt.UTC().Format(time.RFC3339),
	}
	if !t.ProcessedAt.IsZero() {
		out.ProcessedAt = t.ProcessedAt.UTC().Format(time.RFC3339)
	}
	return out
}

func toTransactionList(txns []core.Transaction) []transactionJSON {
	out := make([]transactionJSON, 0, len(txns))
	for _, t := range txns {
		out = append(out, toTransactionJSON(t))
	}
	return out
}

func toGoalJSON(g core.FinancialGoal) goalJSON {
	out := goalJSON{
		ID:            g.ID,
		UserID:        g.UserID,
		Title:         g.Title,
		TargetAmount:  g.TargetAmount.Dollars(),
		CurrentAmount: g.CurrentAmount.Dollars(),
		CreatedAt:     g.CreatedAt.UTC().Format(time.RFC3339),
	}
	if !g.TargetDate.IsZero() {
		out.TargetDate = g.TargetDate.UTC().Format(time.DateOnly)
	}
	return out
}

func toDashboardResponse(period string, d service.Dashboard) dashboardResponse {
	return dashboardResponse{
		Summary:            toSummaryResponse(period, d.Summary),
		Trends:             toTrendsResponse(d.Trends),
		GoalForecast:       toForecastResponse(d.Goals, d.MonthlySavings),
		RecentTransactions: toTransactionList(d.Recent),
	}
}

func (req createTransactionRequest) toTransaction(userID string) (core.Transaction, error) {
	cents, err := core.ParseDecimalToCents(req.Amount.String())
	if err != nil {
		return core.Transaction{}, fmt.Errorf("amount: %w", err)
	}

	t := core.Transaction{
		UserID:      userID,
		Amount:      core.Money{Cents: cents},
		Kind:        core.TxnKind(strings.ToLower(strings.TrimSpace(req.Kind))),
		Description: strings.TrimSpace(req.Description),
		Category:    strings.TrimSpace(req.Category),
		Merchant:    strings.TrimSpace(req.Merchant),
	}

	if req.ProcessedAt != "" {
		at, err := parseTimestamp(req.ProcessedAt)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("processedAt: %w", err)
		}
		t.ProcessedAt = at
	}
	return t, nil
}

func (req goalRequest) toGoal(userID string) (core.FinancialGoal, error) {
	target, err := core.ParseDecimalToCents(req.TargetAmount.String())
	if err != nil {
		return core.FinancialGoal{}, fmt.Errorf("targetAmount: %w", err)
	}

	g := core.FinancialGoal{
		UserID:       userID,
		Title:        strings.TrimSpace(req.Title),
		TargetAmount: core.Money{Cents: target},
	}

	// Zero is a legitimate starting balance, so it bypasses the strict
	// positive-amount parser.
	if req.CurrentAmount != "" {
		if f, ferr := strconv.ParseFloat(req.CurrentAmount.String(), 64); ferr == nil && f == 0 {
			g.CurrentAmount = core.Money{}
		} else {
			current, err := core.ParseDecimalToCents(req.CurrentAmount.String())
			if err != nil {
				return core.FinancialGoal{}, fmt.Errorf("currentAmount: %w", err)
			}
			g.CurrentAmount = core.Money{Cents: current}
		}
	}

	if req.TargetDate != "" {
		d, err := parseTimestamp(req.TargetDate)
		if err != nil {
			return core.FinancialGoal{}, fmt.Errorf("targetDate: %w", err)
		}
		g.TargetDate = d
	}
	return g, nil
}

// parseTimestamp accepts RFC 3339 or a bare calendar date.
func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}
