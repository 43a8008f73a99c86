package ledger

import (
	"strconv"

	"github.com/hamkkebu/transaction-service/internal/domain/shared"
)

// Inbound event types consumed from the identity and ledgering services
const (
	EventTypeUserRegistered = "USER_REGISTERED"
	EventTypeUserDeleted    = "USER_DELETED"
	EventTypeLedgerCreated  = "LEDGER_CREATED"
	EventTypeLedgerUpdated  = "LEDGER_UPDATED"
	EventTypeLedgerDeleted  = "LEDGER_DELETED"
)

// UserRegisteredEvent is a thin event: it carries only the user's primary
// key. The consumer must call the identity service to fetch the rest.
type UserRegisteredEvent struct {
	shared.BaseDomainEvent
	UserPK int64 `json:"userPk"`
}

// EventType returns the event type name
func (e *UserRegisteredEvent) EventType() string {
	return EventTypeUserRegistered
}

// PartitionKey orders user events per user
func (e *UserRegisteredEvent) PartitionKey() string {
	return strconv.FormatInt(e.UserPK, 10)
}

// NewUserRegisteredEvent creates a new UserRegisteredEvent
func NewUserRegisteredEvent(userPK int64) *UserRegisteredEvent {
	return &UserRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserRegistered, "User", strconv.FormatInt(userPK, 10)),
		UserPK:          userPK,
	}
}

// UserDeletedEvent signals that a user was removed upstream
type UserDeletedEvent struct {
	shared.BaseDomainEvent
	UserPK int64 `json:"userPk"`
}

// EventType returns the event type name
func (e *UserDeletedEvent) EventType() string {
	return EventTypeUserDeleted
}

// PartitionKey orders user events per user
func (e *UserDeletedEvent) PartitionKey() string {
	return strconv.FormatInt(e.UserPK, 10)
}

// NewUserDeletedEvent creates a new UserDeletedEvent
func NewUserDeletedEvent(userPK int64) *UserDeletedEvent {
	return &UserDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserDeleted, "User", strconv.FormatInt(userPK, 10)),
		UserPK:          userPK,
	}
}

// ledgerEvent carries the full ledger snapshot shared by the ledger
// event types. Unlike user events these are fat events; no enrichment
// call is needed.
type ledgerEvent struct {
	shared.BaseDomainEvent
	LedgerPK    int64  `json:"ledgerPk"`
	OwnerPK     int64  `json:"ownerPk"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Currency    string `json:"currency,omitempty"`
	IsDefault   bool   `json:"isDefault,omitempty"`
}

// PartitionKey orders ledger events per ledger
func (e *ledgerEvent) PartitionKey() string {
	return strconv.FormatInt(e.LedgerPK, 10)
}

func newLedgerEvent(eventType string, ledgerPK, ownerPK int64, name, description, currency string, isDefault bool) ledgerEvent {
	return ledgerEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Ledger", strconv.FormatInt(ledgerPK, 10)),
		LedgerPK:        ledgerPK,
		OwnerPK:         ownerPK,
		Name:            name,
		Description:     description,
		Currency:        currency,
		IsDefault:       isDefault,
	}
}

// LedgerCreatedEvent signals a new ledger upstream
type LedgerCreatedEvent struct {
	ledgerEvent
}

// EventType returns the event type name
func (e *LedgerCreatedEvent) EventType() string {
	return EventTypeLedgerCreated
}

// NewLedgerCreatedEvent creates a new LedgerCreatedEvent
func NewLedgerCreatedEvent(ledgerPK, ownerPK int64, name, description, currency string, isDefault bool) *LedgerCreatedEvent {
	return &LedgerCreatedEvent{
		ledgerEvent: newLedgerEvent(EventTypeLedgerCreated, ledgerPK, ownerPK, name, description, currency, isDefault),
	}
}

// LedgerUpdatedEvent signals that a ledger changed upstream
type LedgerUpdatedEvent struct {
	ledgerEvent
}

// EventType returns the event type name
func (e *LedgerUpdatedEvent) EventType() string {
	return EventTypeLedgerUpdated
}

// NewLedgerUpdatedEvent creates a new LedgerUpdatedEvent
func NewLedgerUpdatedEvent(ledgerPK, ownerPK int64, name, description, currency string, isDefault bool) *LedgerUpdatedEvent {
	return &LedgerUpdatedEvent{
		ledgerEvent: newLedgerEvent(EventTypeLedgerUpdated, ledgerPK, ownerPK, name, description, currency, isDefault),
	}
}

// LedgerDeletedEvent signals that a ledger was removed upstream
type LedgerDeletedEvent struct {
	ledgerEvent
}

// EventType returns the event type name
func (e *LedgerDeletedEvent) EventType() string {
	return EventTypeLedgerDeleted
}

// NewLedgerDeletedEvent creates a new LedgerDeletedEvent
func NewLedgerDeletedEvent(ledgerPK, ownerPK int64) *LedgerDeletedEvent {
	return &LedgerDeletedEvent{
		ledgerEvent: newLedgerEvent(EventTypeLedgerDeleted, ledgerPK, ownerPK, "", "", "", false),
	}
}
