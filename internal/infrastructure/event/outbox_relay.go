package event

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hamkkebu/transaction-service/internal/domain/shared"
	"go.uber.org/zap"
)

// StreamPublisher delivers a stored outbox entry to the message broker.
// The entry's payload goes out verbatim; the relay never re-serializes.
type StreamPublisher interface {
	PublishEntry(ctx context.Context, entry *shared.OutboxEntry) error
}

// OutboxRelayConfig holds configuration for the outbox relay
type OutboxRelayConfig struct {
	BatchSize int
	// BatchTimeout bounds one batch cycle so a slow broker cannot stall
	// the relay loop indefinitely
	BatchTimeout time.Duration
	PollInterval time.Duration
	// StuckThreshold is how long a PROCESSING claim may sit before it is
	// treated as abandoned by a crashed relay and returned to PENDING
	StuckThreshold   time.Duration
	CleanupEnabled   bool
	CleanupRetention time.Duration
	CleanupInterval  time.Duration
}

// DefaultOutboxRelayConfig returns default configuration
func DefaultOutboxRelayConfig() OutboxRelayConfig {
	return OutboxRelayConfig{
		BatchSize:        100,
		BatchTimeout:     30 * time.Second,
		PollInterval:     5 * time.Second,
		StuckThreshold:   5 * time.Minute,
		CleanupEnabled:   true,
		CleanupRetention: 7 * 24 * time.Hour, // 7 days
		CleanupInterval:  1 * time.Hour,
	}
}

// OutboxRelay moves stored outbox entries onto the broker in the
// background. Entries are claimed with SKIP LOCKED so multiple service
// instances never publish the same entry twice, and failures back off
// exponentially until the entry goes dead.
type OutboxRelay struct {
	repo      shared.OutboxRepository
	publisher StreamPublisher
	config    OutboxRelayConfig
	logger    *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOutboxRelay creates a new outbox relay
func NewOutboxRelay(
	repo shared.OutboxRepository,
	publisher StreamPublisher,
	config OutboxRelayConfig,
	logger *zap.Logger,
) *OutboxRelay {
	defaults := DefaultOutboxRelayConfig()
	if config.BatchTimeout <= 0 {
		config.BatchTimeout = defaults.BatchTimeout
	}
	if config.StuckThreshold <= 0 {
		config.StuckThreshold = defaults.StuckThreshold
	}
	return &OutboxRelay{
		repo:      repo,
		publisher: publisher,
		config:    config,
		logger:    logger,
	}
}

// Start starts the background processing
func (p *OutboxRelay) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.wg.Add(1)
	go p.processLoop(ctx)

	if p.config.CleanupEnabled {
		p.wg.Add(1)
		go p.cleanupLoop(ctx)
	}

	p.logger.Info("outbox relay started",
		zap.Int("batch_size", p.config.BatchSize),
		zap.Duration("poll_interval", p.config.PollInterval),
	)

	return nil
}

// Stop gracefully stops the relay
func (p *OutboxRelay) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("outbox relay stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// processLoop is the main processing loop
func (p *OutboxRelay) processLoop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.processBatch(ctx)
		}
	}
}

// processBatch processes a batch of pending and retryable entries
// within the configured time budget
func (p *OutboxRelay) processBatch(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, p.config.BatchTimeout)
	defer cancel()

	p.releaseStuck(ctx)

	pending, err := p.repo.FindPending(ctx, p.config.BatchSize)
	if err != nil {
		p.logger.Error("failed to find pending entries", zap.Error(err))
		return
	}

	if len(pending) > 0 {
		p.processEntries(ctx, pending)
	}

	retryable, err := p.repo.FindRetryable(ctx, time.Now(), p.config.BatchSize)
	if err != nil {
		p.logger.Error("failed to find retryable entries", zap.Error(err))
		return
	}

	if len(retryable) > 0 {
		p.processEntries(ctx, retryable)
	}
}

// releaseStuck returns abandoned PROCESSING claims to PENDING. A relay
// instance that crashes after claiming leaves its rows in PROCESSING,
// which no other query picks up; without this sweep they would never
// be delivered.
func (p *OutboxRelay) releaseStuck(ctx context.Context) {
	released, err := p.repo.ReleaseStuck(ctx, time.Now().Add(-p.config.StuckThreshold))
	if err != nil {
		p.logger.Error("failed to release stuck outbox claims", zap.Error(err))
		return
	}
	if released > 0 {
		p.logger.Warn("released stuck outbox claims",
			zap.Int64("released", released),
			zap.Duration("stuck_threshold", p.config.StuckThreshold),
		)
	}
}

// processEntries claims and publishes a slice of outbox entries
func (p *OutboxRelay) processEntries(ctx context.Context, entries []*shared.OutboxEntry) {
	ids := make([]uuid.UUID, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}

	// Atomically claim entries
	claimed, err := p.repo.MarkProcessing(ctx, ids)
	if err != nil {
		p.logger.Error("failed to mark entries as processing", zap.Error(err))
		return
	}

	for _, entry := range claimed {
		p.processEntry(ctx, entry)
	}
}

// processEntry publishes a single outbox entry to the broker
func (p *OutboxRelay) processEntry(ctx context.Context, entry *shared.OutboxEntry) {
	if err := p.publisher.PublishEntry(ctx, entry); err != nil {
		p.logger.Error("failed to publish event",
			zap.String("event_id", entry.EventID.String()),
			zap.String("event_type", entry.EventType),
			zap.Error(err),
		)
		entry.MarkFailed(err.Error())
		if entry.IsDead() {
			p.logger.Warn("event moved to dead letter queue",
				zap.String("event_id", entry.EventID.String()),
				zap.String("event_type", entry.EventType),
				zap.String("aggregate_type", entry.AggregateType),
				zap.String("aggregate_id", entry.AggregateID),
				zap.Int("retry_count", entry.RetryCount),
				zap.String("last_error", entry.LastError),
			)
		}
		if updateErr := p.repo.Update(ctx, entry); updateErr != nil {
			p.logger.Error("failed to update entry", zap.Error(updateErr))
		}
		return
	}

	entry.MarkSent()
	if err := p.repo.Update(ctx, entry); err != nil {
		p.logger.Error("failed to mark entry as sent",
			zap.String("event_id", entry.EventID.String()),
			zap.Error(err),
		)
	} else {
		p.logger.Debug("event published",
			zap.String("event_id", entry.EventID.String()),
			zap.String("event_type", entry.EventType),
		)
	}
}

// cleanupLoop periodically cleans up old sent entries
func (p *OutboxRelay) cleanupLoop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.cleanup(ctx)
		}
	}
}

// cleanup removes old sent entries
func (p *OutboxRelay) cleanup(ctx context.Context) {
	cutoff := time.Now().Add(-p.config.CleanupRetention)
	deleted, err := p.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		p.logger.Error("failed to cleanup old entries", zap.Error(err))
		return
	}

	if deleted > 0 {
		p.logger.Info("cleaned up old outbox entries",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff),
		)
	}
}
