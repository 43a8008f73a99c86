package event

import (
	"github.com/hamkkebu/transaction-service/internal/domain/ledger"
)

// RegisterAllEvents registers every event type this service produces or
// consumes. Inbound foreign events must be registered so the broker
// consumer can deserialize them; outbound events so the dead-letter
// admin surface can inspect payloads.
func RegisterAllEvents(serializer *EventSerializer) {
	// Outbound transaction events
	serializer.Register(ledger.EventTypeTransactionCreated, &ledger.TransactionCreatedEvent{})
	serializer.Register(ledger.EventTypeTransactionUpdated, &ledger.TransactionUpdatedEvent{})
	serializer.Register(ledger.EventTypeTransactionDeleted, &ledger.TransactionDeletedEvent{})

	// Inbound user events from the identity service
	serializer.Register(ledger.EventTypeUserRegistered, &ledger.UserRegisteredEvent{})
	serializer.Register(ledger.EventTypeUserDeleted, &ledger.UserDeletedEvent{})

	// Inbound ledger events from the ledgering service
	serializer.Register(ledger.EventTypeLedgerCreated, &ledger.LedgerCreatedEvent{})
	serializer.Register(ledger.EventTypeLedgerUpdated, &ledger.LedgerUpdatedEvent{})
	serializer.Register(ledger.EventTypeLedgerDeleted, &ledger.LedgerDeletedEvent{})
}
