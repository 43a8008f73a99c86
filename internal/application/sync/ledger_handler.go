package sync

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hamkkebu/transaction-service/internal/domain/ledger"
	"github.com/hamkkebu/transaction-service/internal/domain/shared"
)

// LedgerEventHandler maintains the local ledger replica table from
// ledgering service events. Ledger events are fat: they carry the full
// snapshot, so no enrichment call is needed. The owning service is
// authoritative; an update revives a soft-deleted replica.
type LedgerEventHandler struct {
	ledgers ledger.SyncedLedgerRepository
	logger  *zap.Logger
}

// NewLedgerEventHandler creates a new ledger event handler
func NewLedgerEventHandler(ledgers ledger.SyncedLedgerRepository, logger *zap.Logger) *LedgerEventHandler {
	return &LedgerEventHandler{
		ledgers: ledgers,
		logger:  logger,
	}
}

// EventTypes returns the event types this handler consumes
func (h *LedgerEventHandler) EventTypes() []string {
	return []string{
		ledger.EventTypeLedgerCreated,
		ledger.EventTypeLedgerUpdated,
		ledger.EventTypeLedgerDeleted,
	}
}

// Handle processes a ledger event
func (h *LedgerEventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *ledger.LedgerCreatedEvent:
		return h.upsert(ctx, ledgerSnapshot{e.LedgerPK, e.OwnerPK, e.Name, e.Description, e.Currency, e.IsDefault})
	case *ledger.LedgerUpdatedEvent:
		return h.upsert(ctx, ledgerSnapshot{e.LedgerPK, e.OwnerPK, e.Name, e.Description, e.Currency, e.IsDefault})
	case *ledger.LedgerDeletedEvent:
		return h.handleDeleted(ctx, e)
	default:
		return fmt.Errorf("unexpected event type %s", event.EventType())
	}
}

// ledgerSnapshot is the full replica state carried by a fat ledger event
type ledgerSnapshot struct {
	LedgerPK    int64
	OwnerPK     int64
	Name        string
	Description string
	Currency    string
	IsDefault   bool
}

// upsert applies a created or updated snapshot. Events on one ledger
// arrive in order through the partition key, so the latest snapshot
// always wins.
func (h *LedgerEventHandler) upsert(ctx context.Context, snap ledgerSnapshot) error {
	replica, err := h.ledgers.FindByID(ctx, snap.LedgerPK)
	if err != nil {
		return err
	}

	if replica == nil {
		replica = ledger.NewSyncedLedger(snap.LedgerPK, snap.OwnerPK, snap.Name, snap.Description, snap.Currency, snap.IsDefault)
	} else {
		replica.ApplyUpdate(snap.OwnerPK, snap.Name, snap.Description, snap.Currency, snap.IsDefault)
	}

	if err := h.ledgers.Save(ctx, replica); err != nil {
		return err
	}

	h.logger.Info("ledger replica synced",
		zap.Int64("ledger_id", snap.LedgerPK),
		zap.Int64("owner_id", snap.OwnerPK))
	return nil
}

func (h *LedgerEventHandler) handleDeleted(ctx context.Context, e *ledger.LedgerDeletedEvent) error {
	replica, err := h.ledgers.FindByID(ctx, e.LedgerPK)
	if err != nil {
		return err
	}
	if replica == nil {
		h.logger.Info("delete for unknown ledger replica",
			zap.Int64("ledger_id", e.LedgerPK))
		return nil
	}
	if replica.IsDeleted {
		return nil
	}

	replica.SoftDelete()
	if err := h.ledgers.Save(ctx, replica); err != nil {
		return err
	}

	h.logger.Info("ledger replica soft-deleted",
		zap.Int64("ledger_id", e.LedgerPK))
	return nil
}

// Ensure LedgerEventHandler implements EventHandler
var _ shared.EventHandler = (*LedgerEventHandler)(nil)
