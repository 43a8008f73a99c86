package ledger

import (
	"context"

	"go.uber.org/zap"

	"github.com/hamkkebu/transaction-service/internal/domain/ledger"
)

// AccessResolver answers whether a user may touch a ledger. It works
// from the local ledger replica; when the replica has not arrived yet
// (sync lag), read paths fall back to the user's own transaction
// history on that ledger.
type AccessResolver struct {
	ledgers      ledger.SyncedLedgerRepository
	transactions ledger.TransactionRepository
	logger       *zap.Logger
}

// NewAccessResolver creates a new access resolver
func NewAccessResolver(
	ledgers ledger.SyncedLedgerRepository,
	transactions ledger.TransactionRepository,
	logger *zap.Logger,
) *AccessResolver {
	return &AccessResolver{
		ledgers:      ledgers,
		transactions: transactions,
		logger:       logger,
	}
}

// AssertOwnership requires a live replica owned by the user. Used by
// writes: creating a transaction on a ledger whose replica has not
// synced yet fails rather than guessing.
func (r *AccessResolver) AssertOwnership(ctx context.Context, ledgerID, userID int64) error {
	replica, err := r.ledgers.FindByID(ctx, ledgerID)
	if err != nil {
		return err
	}
	if replica == nil || !replica.IsLive() {
		return ledger.ErrLedgerNotFound
	}
	if !replica.IsOwnedBy(userID) {
		return ledger.ErrLedgerAccessDenied
	}
	return nil
}

// CheckAccess decides read access. A live replica is authoritative;
// without one, a user who already has transactions on the ledger keeps
// access to their own data while the replica catches up.
func (r *AccessResolver) CheckAccess(ctx context.Context, ledgerID, userID int64) error {
	replica, err := r.ledgers.FindByID(ctx, ledgerID)
	if err != nil {
		return err
	}
	if replica != nil {
		if !replica.IsLive() {
			return ledger.ErrLedgerNotFound
		}
		if !replica.IsOwnedBy(userID) {
			return ledger.ErrLedgerAccessDenied
		}
		return nil
	}

	// Sync lag: no replica yet. The user's own history on the ledger
	// grants access; someone else's history does not.
	own, err := r.transactions.ExistsByLedgerAndUser(ctx, ledgerID, userID)
	if err != nil {
		return err
	}
	if own {
		r.logger.Debug("ledger replica missing, access granted from transaction history",
			zap.Int64("ledger_id", ledgerID),
			zap.Int64("user_id", userID))
		return nil
	}

	any, err := r.transactions.ExistsByLedger(ctx, ledgerID)
	if err != nil {
		return err
	}
	if any {
		return ledger.ErrLedgerAccessDenied
	}
	return ledger.ErrLedgerNotFound
}
