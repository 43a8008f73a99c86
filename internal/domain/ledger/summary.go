package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Totals holds the aggregate figures for a set of transactions.
// Sums over an empty set are zero, never null.
type Totals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Count   int64
}

// Balance is income minus expense
func (t Totals) Balance() decimal.Decimal {
	return t.Income.Sub(t.Expense)
}

// DayTotals is one day's totals within a monthly breakdown.
// Days with no transactions produce no row.
type DayTotals struct {
	Day time.Time
	Totals
}

// MonthTotals is one month's totals within a yearly breakdown.
// Months with no transactions produce no row.
type MonthTotals struct {
	Year  int
	Month time.Month
	Totals
}
