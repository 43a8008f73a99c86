package sync

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hamkkebu/transaction-service/internal/domain/ledger"
	"github.com/hamkkebu/transaction-service/internal/domain/shared"
)

// UserEventHandler maintains the local user replica table from identity
// service events. USER_REGISTERED is a thin event carrying only the
// user's primary key; the handler enriches it with a lookup before
// inserting the replica.
type UserEventHandler struct {
	users     ledger.SyncedUserRepository
	directory ledger.UserDirectory
	logger    *zap.Logger
}

// NewUserEventHandler creates a new user event handler
func NewUserEventHandler(
	users ledger.SyncedUserRepository,
	directory ledger.UserDirectory,
	logger *zap.Logger,
) *UserEventHandler {
	return &UserEventHandler{
		users:     users,
		directory: directory,
		logger:    logger,
	}
}

// EventTypes returns the event types this handler consumes
func (h *UserEventHandler) EventTypes() []string {
	return []string{
		ledger.EventTypeUserRegistered,
		ledger.EventTypeUserDeleted,
	}
}

// Handle processes a user event
func (h *UserEventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *ledger.UserRegisteredEvent:
		return h.handleRegistered(ctx, e)
	case *ledger.UserDeletedEvent:
		return h.handleDeleted(ctx, e)
	default:
		return fmt.Errorf("unexpected event type %s", event.EventType())
	}
}

func (h *UserEventHandler) handleRegistered(ctx context.Context, e *ledger.UserRegisteredEvent) error {
	exists, err := h.users.ExistsLive(ctx, e.UserPK)
	if err != nil {
		return err
	}
	if exists {
		h.logger.Debug("user replica already present",
			zap.Int64("user_id", e.UserPK))
		return nil
	}

	user, err := h.directory.GetUser(ctx, e.UserPK)
	if err != nil {
		return err
	}
	if user == nil {
		// Enrichment miss: the user vanished upstream or the identity
		// service is unavailable. The event is acknowledged; a later
		// event or JIT provisioning will fill the gap.
		h.logger.Warn("enrichment returned no user, skipping replica insert",
			zap.Int64("user_id", e.UserPK))
		return nil
	}

	if err := h.users.Save(ctx, user); err != nil {
		return err
	}

	h.logger.Info("user replica created",
		zap.Int64("user_id", user.ID),
		zap.String("username", user.Username))
	return nil
}

func (h *UserEventHandler) handleDeleted(ctx context.Context, e *ledger.UserDeletedEvent) error {
	user, err := h.users.FindByID(ctx, e.UserPK)
	if err != nil {
		return err
	}
	if user == nil {
		h.logger.Info("delete for unknown user replica",
			zap.Int64("user_id", e.UserPK))
		return nil
	}
	if user.IsDeleted {
		return nil
	}

	user.SoftDelete()
	if err := h.users.Save(ctx, user); err != nil {
		return err
	}

	h.logger.Info("user replica soft-deleted",
		zap.Int64("user_id", e.UserPK))
	return nil
}

// Ensure UserEventHandler implements EventHandler
var _ shared.EventHandler = (*UserEventHandler)(nil)
