package ledger

import "context"

// UserDirectory looks up users in the identity service. Implementations
// degrade gracefully: when the dependency is down or its circuit is
// open, GetUser returns (nil, nil) and UserExists returns (false, nil),
// meaning "temporarily unknown" rather than a hard failure.
type UserDirectory interface {
	// GetUser fetches a user's profile for replica enrichment.
	// Returns (nil, nil) when the user does not exist upstream.
	GetUser(ctx context.Context, userID int64) (*SyncedUser, error)
	// UserExists reports whether the user exists upstream
	UserExists(ctx context.Context, userID int64) (bool, error)
}
