package sync

import (
	"context"

	"go.uber.org/zap"

	"github.com/hamkkebu/transaction-service/internal/domain/ledger"
)

// UserProvisioner creates a user replica on demand when an
// authenticated request arrives before the USER_REGISTERED event.
// Provisioning is best effort: when the identity service cannot answer,
// the request proceeds without a replica.
type UserProvisioner struct {
	users     ledger.SyncedUserRepository
	directory ledger.UserDirectory
	logger    *zap.Logger
}

// NewUserProvisioner creates a new user provisioner
func NewUserProvisioner(
	users ledger.SyncedUserRepository,
	directory ledger.UserDirectory,
	logger *zap.Logger,
) *UserProvisioner {
	return &UserProvisioner{
		users:     users,
		directory: directory,
		logger:    logger,
	}
}

// EnsureUser makes sure a live replica exists for the user, fetching it
// from the identity service when missing
func (p *UserProvisioner) EnsureUser(ctx context.Context, userID int64) error {
	exists, err := p.users.ExistsLive(ctx, userID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	user, err := p.directory.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		p.logger.Warn("could not provision user replica",
			zap.Int64("user_id", userID))
		return nil
	}

	if err := p.users.Save(ctx, user); err != nil {
		return err
	}

	p.logger.Info("user replica provisioned just in time",
		zap.Int64("user_id", userID))
	return nil
}
