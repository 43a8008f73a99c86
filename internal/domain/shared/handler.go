package shared

import "context"

// EventHandler consumes domain events delivered by the broker. A failed
// Handle blocks acknowledgement, so the same event may be delivered
// again; handlers are wrapped for idempotency before registration.
type EventHandler interface {
	// Handle processes a domain event
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes returns the event types this handler is interested in
	// An empty slice means the handler receives all events
	EventTypes() []string
}

// OutboxEventSaver saves domain events to the outbox table within a transaction
// This interface is used by repositories to implement the transactional outbox pattern
type OutboxEventSaver interface {
	// SaveEvents saves domain events to the outbox table within the current transaction
	// The txProvider should be a *gorm.DB transaction
	SaveEvents(ctx context.Context, txProvider interface{}, events ...DomainEvent) error
}
