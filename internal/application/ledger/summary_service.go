package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/hamkkebu/transaction-service/internal/domain/ledger"
)

// SummaryService aggregates a ledger's transactions into income,
// expense and balance figures over various time buckets. Sums over
// empty sets are zero; sub-periods without transactions are omitted
// from breakdowns.
type SummaryService struct {
	transactions ledger.TransactionRepository
	access       *AccessResolver
	logger       *zap.Logger
}

// NewSummaryService creates a new SummaryService
func NewSummaryService(
	transactions ledger.TransactionRepository,
	access *AccessResolver,
	logger *zap.Logger,
) *SummaryService {
	return &SummaryService{
		transactions: transactions,
		access:       access,
		logger:       logger,
	}
}

// SummaryResponse holds aggregate figures for one period
type SummaryResponse struct {
	LedgerID int64           `json:"ledger_id"`
	Income   decimal.Decimal `json:"income"`
	Expense  decimal.Decimal `json:"expense"`
	Balance  decimal.Decimal `json:"balance"`
	Count    int64           `json:"count"`
}

// PeriodTotals is one sub-period's figures within a breakdown
type PeriodTotals struct {
	Period  string          `json:"period"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
	Count   int64           `json:"count"`
}

// BreakdownResponse is a period summary with per-sub-period details
type BreakdownResponse struct {
	SummaryResponse
	Details []PeriodTotals `json:"details"`
}

// Summary returns a ledger's lifetime totals
func (s *SummaryService) Summary(ctx context.Context, userID, ledgerID int64) (*SummaryResponse, error) {
	if err := s.access.CheckAccess(ctx, ledgerID, userID); err != nil {
		return nil, err
	}

	totals, err := s.transactions.Totals(ctx, ledgerID)
	if err != nil {
		return nil, err
	}
	return toSummaryResponse(ledgerID, totals), nil
}

// DailySummary returns totals for a single calendar day
func (s *SummaryService) DailySummary(ctx context.Context, userID, ledgerID int64, date time.Time) (*SummaryResponse, error) {
	if err := s.access.CheckAccess(ctx, ledgerID, userID); err != nil {
		return nil, err
	}

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	totals, err := s.transactions.TotalsBetween(ctx, ledgerID, day, day)
	if err != nil {
		return nil, err
	}
	return toSummaryResponse(ledgerID, totals), nil
}

// MonthlySummary returns a month's totals with a per-day breakdown.
// Days without transactions are omitted; details run newest first.
func (s *SummaryService) MonthlySummary(ctx context.Context, userID, ledgerID int64, year int, month time.Month) (*BreakdownResponse, error) {
	if err := s.access.CheckAccess(ctx, ledgerID, userID); err != nil {
		return nil, err
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	totals, err := s.transactions.TotalsBetween(ctx, ledgerID, first, last)
	if err != nil {
		return nil, err
	}

	days, err := s.transactions.DailyTotals(ctx, ledgerID, first, last)
	if err != nil {
		return nil, err
	}

	details := make([]PeriodTotals, 0, len(days))
	for i := len(days) - 1; i >= 0; i-- {
		d := days[i]
		details = append(details, toPeriodTotals(d.Day.Format("2006-01-02"), d.Totals))
	}

	return &BreakdownResponse{
		SummaryResponse: *toSummaryResponse(ledgerID, totals),
		Details:         details,
	}, nil
}

// YearlySummary returns a year's totals with a per-month breakdown in
// calendar order. Months without transactions are omitted.
func (s *SummaryService) YearlySummary(ctx context.Context, userID, ledgerID int64, year int) (*BreakdownResponse, error) {
	if err := s.access.CheckAccess(ctx, ledgerID, userID); err != nil {
		return nil, err
	}

	first := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

	totals, err := s.transactions.TotalsBetween(ctx, ledgerID, first, last)
	if err != nil {
		return nil, err
	}

	months, err := s.transactions.MonthlyTotals(ctx, ledgerID, year)
	if err != nil {
		return nil, err
	}

	details := make([]PeriodTotals, 0, len(months))
	for _, m := range months {
		label := fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
		details = append(details, toPeriodTotals(label, m.Totals))
	}

	return &BreakdownResponse{
		SummaryResponse: *toSummaryResponse(ledgerID, totals),
		Details:         details,
	}, nil
}

// PeriodSummary returns totals for an arbitrary [from, to] date range
func (s *SummaryService) PeriodSummary(ctx context.Context, userID, ledgerID int64, from, to time.Time) (*SummaryResponse, error) {
	if err := s.access.CheckAccess(ctx, ledgerID, userID); err != nil {
		return nil, err
	}

	totals, err := s.transactions.TotalsBetween(ctx, ledgerID, from, to)
	if err != nil {
		return nil, err
	}
	return toSummaryResponse(ledgerID, totals), nil
}

func toSummaryResponse(ledgerID int64, t *ledger.Totals) *SummaryResponse {
	return &SummaryResponse{
		LedgerID: ledgerID,
		Income:   t.Income,
		Expense:  t.Expense,
		Balance:  t.Balance(),
		Count:    t.Count,
	}
}

func toPeriodTotals(period string, t ledger.Totals) PeriodTotals {
	return PeriodTotals{
		Period:  period,
		Income:  t.Income,
		Expense: t.Expense,
		Balance: t.Balance(),
		Count:   t.Count,
	}
}
