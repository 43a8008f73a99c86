package broker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hamkkebu/transaction-service/internal/infrastructure/event"
)

// StreamConsumerConfig holds consumer group settings
type StreamConsumerConfig struct {
	Streams       []string
	ConsumerGroup string
	ConsumerName  string
	BlockTimeout  time.Duration
	ClaimMinIdle  time.Duration
	BatchSize     int64
}

// DefaultStreamConsumerConfig returns defaults for the given streams
func DefaultStreamConsumerConfig(streams ...string) StreamConsumerConfig {
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "consumer"
	}
	return StreamConsumerConfig{
		Streams:       streams,
		ConsumerGroup: "transaction-service",
		ConsumerName:  hostname,
		BlockTimeout:  5 * time.Second,
		ClaimMinIdle:  time.Minute,
		BatchSize:     10,
	}
}

// StreamConsumer reads foreign events from Redis Streams through a
// consumer group and dispatches them to registered handlers.
//
// Delivery is at-least-once: a message is acknowledged only after every
// handler succeeded, and messages stuck in another consumer's pending
// list are reclaimed with XAUTOCLAIM. Handlers are expected to be
// wrapped for idempotency so redeliveries are harmless.
type StreamConsumer struct {
	client     *redis.Client
	config     StreamConsumerConfig
	serializer *event.EventSerializer
	registry   *event.HandlerRegistry
	logger     *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewStreamConsumer creates a new stream consumer
func NewStreamConsumer(
	client *redis.Client,
	config StreamConsumerConfig,
	serializer *event.EventSerializer,
	registry *event.HandlerRegistry,
	logger *zap.Logger,
) *StreamConsumer {
	return &StreamConsumer{
		client:     client,
		config:     config,
		serializer: serializer,
		registry:   registry,
		logger:     logger,
	}
}

// Start creates the consumer groups and starts the read loops
func (c *StreamConsumer) Start(ctx context.Context) error {
	if len(c.config.Streams) == 0 {
		return errors.New("stream consumer requires at least one stream")
	}

	if err := c.ensureGroups(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	for _, stream := range c.config.Streams {
		c.wg.Add(2)
		go c.readLoop(ctx, stream)
		go c.claimLoop(ctx, stream)
	}

	c.logger.Info("stream consumer started",
		zap.Strings("streams", c.config.Streams),
		zap.String("group", c.config.ConsumerGroup),
		zap.String("consumer", c.config.ConsumerName))

	return nil
}

// Stop stops the consumer and waits for in-flight messages
func (c *StreamConsumer) Stop(ctx context.Context) error {
	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("stream consumer stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("stream consumer shutdown timed out: %w", ctx.Err())
	}
}

// ensureGroups creates the consumer group on each stream, creating the
// stream itself when it does not exist yet
func (c *StreamConsumer) ensureGroups(ctx context.Context) error {
	for _, stream := range c.config.Streams {
		err := c.client.XGroupCreateMkStream(ctx, stream, c.config.ConsumerGroup, "0").Err()
		if err != nil && !isBusyGroup(err) {
			return fmt.Errorf("failed to create consumer group on stream %s: %w", stream, err)
		}
	}
	return nil
}

// isBusyGroup reports whether the error means the group already exists
func isBusyGroup(err error) bool {
	return err != nil && strings.Contains(err.Error(), "BUSYGROUP")
}

func (c *StreamConsumer) readLoop(ctx context.Context, stream string) {
	defer c.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.config.ConsumerGroup,
			Consumer: c.config.ConsumerName,
			Streams:  []string{stream, ">"},
			Count:    c.config.BatchSize,
			Block:    c.config.BlockTimeout,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
				continue
			}
			c.logger.Error("failed to read from stream",
				zap.String("stream", stream),
				zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		for _, s := range streams {
			for _, msg := range s.Messages {
				c.processMessage(ctx, s.Stream, msg)
			}
		}
	}
}

// claimLoop periodically reclaims messages another consumer read but
// never acknowledged, so crashed instances do not strand deliveries
func (c *StreamConsumer) claimLoop(ctx context.Context, stream string) {
	defer c.wg.Done()

	interval := c.config.ClaimMinIdle
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.claimStuck(ctx, stream)
		}
	}
}

func (c *StreamConsumer) claimStuck(ctx context.Context, stream string) {
	start := "0-0"
	for {
		msgs, next, err := c.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
			Stream:   stream,
			Group:    c.config.ConsumerGroup,
			Consumer: c.config.ConsumerName,
			MinIdle:  c.config.ClaimMinIdle,
			Start:    start,
			Count:    c.config.BatchSize,
		}).Result()
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				c.logger.Error("failed to claim stuck messages",
					zap.String("stream", stream),
					zap.Error(err))
			}
			return
		}

		for _, msg := range msgs {
			c.processMessage(ctx, stream, msg)
		}

		if next == "0-0" || len(msgs) == 0 {
			return
		}
		start = next
	}
}

// processMessage dispatches one message and acknowledges it on success
func (c *StreamConsumer) processMessage(ctx context.Context, stream string, msg redis.XMessage) {
	if err := c.dispatch(ctx, msg); err != nil {
		if errors.Is(err, errPoisonMessage) {
			// A message that can never deserialize would block the
			// pending list forever. Acknowledge and move on.
			c.logger.Error("dropping undecodable message",
				zap.String("stream", stream),
				zap.String("message_id", msg.ID),
				zap.Error(err))
			c.ack(ctx, stream, msg.ID)
			return
		}
		c.logger.Error("failed to handle message, leaving for redelivery",
			zap.String("stream", stream),
			zap.String("message_id", msg.ID),
			zap.Error(err))
		return
	}

	c.ack(ctx, stream, msg.ID)
}

var errPoisonMessage = errors.New("poison message")

// dispatch decodes a stream message and runs every registered handler
// for its event type. Returns errPoisonMessage when the message shape
// is broken beyond retry.
func (c *StreamConsumer) dispatch(ctx context.Context, msg redis.XMessage) error {
	eventType, ok := stringField(msg, fieldEventType)
	if !ok {
		return fmt.Errorf("%w: missing %s field", errPoisonMessage, fieldEventType)
	}
	payload, ok := stringField(msg, fieldPayload)
	if !ok {
		return fmt.Errorf("%w: missing %s field", errPoisonMessage, fieldPayload)
	}

	if !c.serializer.IsRegistered(eventType) {
		// Streams carry events for several consumers. Types we do not
		// handle are acknowledged without processing.
		return nil
	}

	domainEvent, err := c.serializer.Deserialize(eventType, []byte(payload))
	if err != nil {
		return fmt.Errorf("%w: %v", errPoisonMessage, err)
	}

	handlers := c.registry.GetHandlers(eventType)
	for _, handler := range handlers {
		if err := handler.Handle(ctx, domainEvent); err != nil {
			return fmt.Errorf("handler failed for event %s: %w", domainEvent.EventID(), err)
		}
	}

	return nil
}

func (c *StreamConsumer) ack(ctx context.Context, stream, messageID string) {
	if err := c.client.XAck(ctx, stream, c.config.ConsumerGroup, messageID).Err(); err != nil {
		c.logger.Error("failed to acknowledge message",
			zap.String("stream", stream),
			zap.String("message_id", messageID),
			zap.Error(err))
	}
}

func stringField(msg redis.XMessage, field string) (string, bool) {
	raw, ok := msg.Values[field]
	if !ok {
		return "", false
	}
	value, ok := raw.(string)
	return value, ok
}
