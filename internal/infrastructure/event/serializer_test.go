package event

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hamkkebu/transaction-service/internal/domain/ledger"
)

func newCreatedEvent(t *testing.T) *ledger.TransactionCreatedEvent {
	tx, err := ledger.NewTransaction(10, 7, ledger.TransactionTypeExpense,
		decimal.NewFromInt(5000), "Groceries", "FOOD",
		time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), "weekly shop")
	require.NoError(t, err)
	tx.ID = 42
	return ledger.NewTransactionCreatedEvent(tx)
}

func TestEventSerializer_RoundTrip(t *testing.T) {
	serializer := NewEventSerializer()
	RegisterAllEvents(serializer)

	original := newCreatedEvent(t)

	data, err := serializer.Serialize(original)
	require.NoError(t, err)

	restored, err := serializer.Deserialize(ledger.EventTypeTransactionCreated, data)
	require.NoError(t, err)

	created, ok := restored.(*ledger.TransactionCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, original.EventID(), created.EventID())
	assert.Equal(t, int64(42), created.TransactionID)
	assert.Equal(t, int64(10), created.LedgerID)
	assert.Equal(t, "10", created.PartitionKey())
	assert.True(t, created.Amount.Equal(decimal.NewFromInt(5000)))
}

func TestEventSerializer_DeserializeForeignEvents(t *testing.T) {
	serializer := NewEventSerializer()
	RegisterAllEvents(serializer)

	t.Run("thin user event carries only the foreign key", func(t *testing.T) {
		payload := []byte(`{"eventId":"6f1c0f9e-9d2a-4f42-9f3a-1d58a3b1c111","eventType":"USER_REGISTERED","timestamp":"2025-03-15T10:00:00Z","aggregateId":"7","aggregateType":"User","userPk":7}`)

		event, err := serializer.Deserialize(ledger.EventTypeUserRegistered, payload)
		require.NoError(t, err)

		registered, ok := event.(*ledger.UserRegisteredEvent)
		require.True(t, ok)
		assert.Equal(t, int64(7), registered.UserPK)
		assert.Equal(t, "7", registered.PartitionKey())
	})

	t.Run("ledger event without currency keeps empty field for default handling", func(t *testing.T) {
		payload := []byte(`{"eventId":"6f1c0f9e-9d2a-4f42-9f3a-1d58a3b1c222","eventType":"LEDGER_CREATED","timestamp":"2025-03-15T10:00:00Z","aggregateId":"3","aggregateType":"Ledger","ledgerPk":3,"ownerPk":7,"name":"Household"}`)

		event, err := serializer.Deserialize(ledger.EventTypeLedgerCreated, payload)
		require.NoError(t, err)

		created, ok := event.(*ledger.LedgerCreatedEvent)
		require.True(t, ok)
		assert.Equal(t, int64(3), created.LedgerPK)
		assert.Equal(t, int64(7), created.OwnerPK)
		assert.Empty(t, created.Currency)
	})

	t.Run("ledger event carries description and default flag", func(t *testing.T) {
		payload := []byte(`{"eventId":"6f1c0f9e-9d2a-4f42-9f3a-1d58a3b1c333","eventType":"LEDGER_UPDATED","timestamp":"2025-03-15T10:00:00Z","aggregateId":"3","aggregateType":"Ledger","ledgerPk":3,"ownerPk":7,"name":"Household","description":"Family spending","currency":"KRW","isDefault":true}`)

		event, err := serializer.Deserialize(ledger.EventTypeLedgerUpdated, payload)
		require.NoError(t, err)

		updated, ok := event.(*ledger.LedgerUpdatedEvent)
		require.True(t, ok)
		assert.Equal(t, "Family spending", updated.Description)
		assert.True(t, updated.IsDefault)
	})
}

func TestEventSerializer_UnknownType(t *testing.T) {
	serializer := NewEventSerializer()

	_, err := serializer.Deserialize("NOT_REGISTERED", []byte(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown event type")
}

func TestEventSerializer_IsRegistered(t *testing.T) {
	serializer := NewEventSerializer()
	RegisterAllEvents(serializer)

	assert.True(t, serializer.IsRegistered(ledger.EventTypeTransactionCreated))
	assert.True(t, serializer.IsRegistered(ledger.EventTypeUserDeleted))
	assert.True(t, serializer.IsRegistered(ledger.EventTypeLedgerUpdated))
	assert.False(t, serializer.IsRegistered("SOMETHING_ELSE"))
	assert.Len(t, serializer.RegisteredTypes(), 8)
}
