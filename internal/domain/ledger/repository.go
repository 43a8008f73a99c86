package ledger

import (
	"context"
	"time"

	"github.com/hamkkebu/transaction-service/internal/domain/shared"
)

// TransactionRepository persists transactions. Save and Update must also
// persist the aggregate's pending domain events to the outbox within the
// same database transaction.
type TransactionRepository interface {
	// Save inserts a new transaction and its pending events atomically.
	// The assigned row ID is written back to the aggregate.
	Save(ctx context.Context, tx *Transaction) error
	// Update persists changes to an existing transaction and its pending
	// events atomically
	Update(ctx context.Context, tx *Transaction) error
	// FindByID returns a live (not soft-deleted) transaction
	FindByID(ctx context.Context, id int64) (*Transaction, error)
	// FindByLedger returns a page of live transactions on a ledger,
	// ordered by transaction date then ID, newest first. Filter.Filters
	// may carry a "category" entry.
	FindByLedger(ctx context.Context, ledgerID int64, filter shared.Filter) (shared.Paginated[Transaction], error)
	// FindAllByLedger returns every live transaction on a ledger,
	// newest first
	FindAllByLedger(ctx context.Context, ledgerID int64) ([]Transaction, error)
	// FindByLedgerAndPeriod returns live transactions whose date falls in
	// [from, to], newest first
	FindByLedgerAndPeriod(ctx context.Context, ledgerID int64, from, to time.Time) ([]Transaction, error)
	// ExistsByLedgerAndUser reports whether the user has any live
	// transaction on the ledger
	ExistsByLedgerAndUser(ctx context.Context, ledgerID, userID int64) (bool, error)
	// ExistsByLedger reports whether the ledger has any live transaction
	// at all
	ExistsByLedger(ctx context.Context, ledgerID int64) (bool, error)
	// Totals returns lifetime totals for a ledger
	Totals(ctx context.Context, ledgerID int64) (*Totals, error)
	// TotalsBetween returns totals for transactions dated in [from, to]
	TotalsBetween(ctx context.Context, ledgerID int64, from, to time.Time) (*Totals, error)
	// DailyTotals returns per-day totals for dates in [from, to], one row
	// per day that has transactions, in calendar order
	DailyTotals(ctx context.Context, ledgerID int64, from, to time.Time) ([]DayTotals, error)
	// MonthlyTotals returns per-month totals for a year, one row per
	// month that has transactions, in calendar order
	MonthlyTotals(ctx context.Context, ledgerID int64, year int) ([]MonthTotals, error)
}

// SyncedUserRepository persists user replicas
type SyncedUserRepository interface {
	// Save inserts or updates a replica keyed by the foreign primary key
	Save(ctx context.Context, user *SyncedUser) error
	// FindByID returns a replica regardless of deletion state, or nil
	// when no row exists
	FindByID(ctx context.Context, id int64) (*SyncedUser, error)
	// ExistsLive reports whether a live replica exists
	ExistsLive(ctx context.Context, id int64) (bool, error)
}

// SyncedLedgerRepository persists ledger replicas
type SyncedLedgerRepository interface {
	// Save inserts or updates a replica keyed by the foreign primary key
	Save(ctx context.Context, l *SyncedLedger) error
	// FindByID returns a replica regardless of deletion state, or nil
	// when no row exists
	FindByID(ctx context.Context, id int64) (*SyncedLedger, error)
}
