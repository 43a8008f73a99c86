package shared

import (
	"context"
	"time"
)

// IdempotencyStore records which inbound event IDs have already been
// applied, so redelivered broker messages are acked without re-running
// the handler.
type IdempotencyStore interface {
	// MarkProcessed claims an event ID with a TTL. Returns true if this
	// call claimed it, false if it was already claimed.
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)

	// IsProcessed checks if an event has already been processed
	IsProcessed(ctx context.Context, eventID string) (bool, error)

	// Remove releases a claimed event ID. Called when the handler fails
	// after the claim, so the broker's redelivery re-runs the handler
	// instead of hitting the duplicate branch.
	Remove(ctx context.Context, eventID string) error

	// Close closes the store and releases resources
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is how long a processed event ID stays claimed. It only needs
	// to outlive the broker's redelivery window. Default: 24 hours.
	TTL time.Duration

	// Enabled determines whether idempotency checking is enabled
	// Default: true
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
