package broker

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/hamkkebu/transaction-service/internal/domain/shared"
	"github.com/hamkkebu/transaction-service/internal/infrastructure/event"
)

// Message field names shared by the publisher and the consumer.
// Other services publishing to our inbound streams use the same shape.
const (
	fieldEventID      = "event_id"
	fieldEventType    = "event_type"
	fieldPartitionKey = "partition_key"
	fieldPayload      = "payload"
)

// RedisStreamPublisher appends outbox entries to a Redis Stream.
// The stored payload is forwarded verbatim; consumers deserialize it
// with their own event registry.
type RedisStreamPublisher struct {
	client *redis.Client
	stream string
	maxLen int64
}

// NewRedisStreamPublisher creates a publisher for the given stream.
// maxLen caps the stream length approximately (XADD MAXLEN ~); zero
// disables trimming.
func NewRedisStreamPublisher(client *redis.Client, stream string, maxLen int64) *RedisStreamPublisher {
	return &RedisStreamPublisher{
		client: client,
		stream: stream,
		maxLen: maxLen,
	}
}

// PublishEntry appends a single outbox entry to the stream
func (p *RedisStreamPublisher) PublishEntry(ctx context.Context, entry *shared.OutboxEntry) error {
	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: entryValues(entry),
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}

	if err := p.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("failed to publish event %s to stream %s: %w", entry.EventID, p.stream, err)
	}
	return nil
}

// entryValues maps an outbox entry to stream message fields
func entryValues(entry *shared.OutboxEntry) map[string]interface{} {
	return map[string]interface{}{
		fieldEventID:      entry.EventID.String(),
		fieldEventType:    entry.EventType,
		fieldPartitionKey: entry.PartitionKey,
		fieldPayload:      string(entry.Payload),
	}
}

// Ensure RedisStreamPublisher satisfies the relay's publisher contract
var _ event.StreamPublisher = (*RedisStreamPublisher)(nil)
