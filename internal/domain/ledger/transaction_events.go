package ledger

import (
	"strconv"
	"time"

	"github.com/hamkkebu/transaction-service/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Outbound event types published by this service
const (
	EventTypeTransactionCreated = "TRANSACTION_CREATED"
	EventTypeTransactionUpdated = "TRANSACTION_UPDATED"
	EventTypeTransactionDeleted = "TRANSACTION_DELETED"
)

// transactionEvent carries the full transaction snapshot shared by all
// three outbound event types. Events are partitioned by ledger so that
// consumers see changes to one ledger in order.
type transactionEvent struct {
	shared.BaseDomainEvent
	TransactionID   int64           `json:"transactionId"`
	LedgerID        int64           `json:"ledgerId"`
	UserID          int64           `json:"userId"`
	TransactionType TransactionType `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	Category        string          `json:"category,omitempty"`
	TransactionDate time.Time       `json:"transactionDate"`
	Memo            string          `json:"memo,omitempty"`
}

// PartitionKey orders events per ledger on the broker
func (e *transactionEvent) PartitionKey() string {
	return strconv.FormatInt(e.LedgerID, 10)
}

func newTransactionEvent(eventType string, t *Transaction) transactionEvent {
	return transactionEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Transaction", strconv.FormatInt(t.ID, 10)),
		TransactionID:   t.ID,
		LedgerID:        t.LedgerID,
		UserID:          t.UserID,
		TransactionType: t.Type,
		Amount:          t.Amount,
		Description:     t.Description,
		Category:        t.Category,
		TransactionDate: t.TransactionDate,
		Memo:            t.Memo,
	}
}

// TransactionCreatedEvent is raised when a transaction is recorded
type TransactionCreatedEvent struct {
	transactionEvent
}

// EventType returns the event type name
func (e *TransactionCreatedEvent) EventType() string {
	return EventTypeTransactionCreated
}

// NewTransactionCreatedEvent creates a new TransactionCreatedEvent
func NewTransactionCreatedEvent(t *Transaction) *TransactionCreatedEvent {
	return &TransactionCreatedEvent{
		transactionEvent: newTransactionEvent(EventTypeTransactionCreated, t),
	}
}

// TransactionUpdatedEvent is raised when a transaction is modified
type TransactionUpdatedEvent struct {
	transactionEvent
}

// EventType returns the event type name
func (e *TransactionUpdatedEvent) EventType() string {
	return EventTypeTransactionUpdated
}

// NewTransactionUpdatedEvent creates a new TransactionUpdatedEvent
func NewTransactionUpdatedEvent(t *Transaction) *TransactionUpdatedEvent {
	return &TransactionUpdatedEvent{
		transactionEvent: newTransactionEvent(EventTypeTransactionUpdated, t),
	}
}

// TransactionDeletedEvent is raised when a transaction is soft-deleted
type TransactionDeletedEvent struct {
	transactionEvent
}

// EventType returns the event type name
func (e *TransactionDeletedEvent) EventType() string {
	return EventTypeTransactionDeleted
}

// NewTransactionDeletedEvent creates a new TransactionDeletedEvent
func NewTransactionDeletedEvent(t *Transaction) *TransactionDeletedEvent {
	return &TransactionDeletedEvent{
		transactionEvent: newTransactionEvent(EventTypeTransactionDeleted, t),
	}
}
