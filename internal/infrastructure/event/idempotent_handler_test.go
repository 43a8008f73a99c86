package event

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hamkkebu/transaction-service/internal/domain/ledger"
	"github.com/hamkkebu/transaction-service/internal/domain/shared"
	"github.com/hamkkebu/transaction-service/internal/infrastructure/cache"
)

// MockEventHandler is a mock implementation of shared.EventHandler
type MockEventHandler struct {
	mock.Mock
}

func (m *MockEventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventHandler) EventTypes() []string {
	args := m.Called()
	return args.Get(0).([]string)
}

// MockIdempotencyStore is a mock implementation of shared.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, eventID, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Remove(ctx context.Context, eventID string) error {
	args := m.Called(ctx, eventID)
	return args.Error(0)
}

func (m *MockIdempotencyStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

func TestIdempotentHandler_Handle_NewEvent(t *testing.T) {
	logger := zap.NewNop()
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	mockHandler := new(MockEventHandler)
	event := ledger.NewUserRegisteredEvent(7)

	mockHandler.On("Handle", mock.Anything, event).Return(nil)

	handler := NewIdempotentHandler(mockHandler, store, logger)

	err := handler.Handle(context.Background(), event)
	require.NoError(t, err)

	mockHandler.AssertExpectations(t)
	assert.Equal(t, int64(1), handler.metrics.EventsProcessed.Load())
	assert.Equal(t, int64(0), handler.metrics.EventsDuplicate.Load())
}

func TestIdempotentHandler_Handle_DuplicateEvent(t *testing.T) {
	logger := zap.NewNop()
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	mockHandler := new(MockEventHandler)
	event := ledger.NewUserRegisteredEvent(7)

	// Handler should only be called once
	mockHandler.On("Handle", mock.Anything, event).Return(nil).Once()

	handler := NewIdempotentHandler(mockHandler, store, logger)

	err := handler.Handle(context.Background(), event)
	require.NoError(t, err)

	// Redelivery of the same event
	err = handler.Handle(context.Background(), event)
	require.NoError(t, err)

	err = handler.Handle(context.Background(), event)
	require.NoError(t, err)

	mockHandler.AssertExpectations(t)
	assert.Equal(t, int64(1), handler.metrics.EventsProcessed.Load())
	assert.Equal(t, int64(2), handler.metrics.EventsDuplicate.Load())
}

func TestIdempotentHandler_Handle_HandlerFailure(t *testing.T) {
	logger := zap.NewNop()
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	mockHandler := new(MockEventHandler)
	event := ledger.NewUserDeletedEvent(7)

	mockHandler.On("Handle", mock.Anything, event).Return(assert.AnError)

	handler := NewIdempotentHandler(mockHandler, store, logger)

	err := handler.Handle(context.Background(), event)
	require.Error(t, err)
	assert.Equal(t, int64(1), handler.metrics.EventsFailed.Load())

	// The failed event must not stay claimed in the store
	processed, err := store.IsProcessed(context.Background(), event.EventID().String())
	require.NoError(t, err)
	assert.False(t, processed)
}

func TestIdempotentHandler_Handle_RedeliveryAfterFailureReapplies(t *testing.T) {
	logger := zap.NewNop()
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	mockHandler := new(MockEventHandler)
	event := ledger.NewUserRegisteredEvent(7)

	// Transient failure on first delivery, success on redelivery
	mockHandler.On("Handle", mock.Anything, event).Return(assert.AnError).Once()
	mockHandler.On("Handle", mock.Anything, event).Return(nil).Once()

	handler := NewIdempotentHandler(mockHandler, store, logger)

	require.Error(t, handler.Handle(context.Background(), event))
	require.NoError(t, handler.Handle(context.Background(), event))

	// The redelivery ran the handler again instead of short-circuiting
	// as a duplicate
	mockHandler.AssertNumberOfCalls(t, "Handle", 2)
	assert.Equal(t, int64(1), handler.metrics.EventsProcessed.Load())
	assert.Equal(t, int64(0), handler.metrics.EventsDuplicate.Load())
	assert.Equal(t, int64(1), handler.metrics.EventsFailed.Load())

	// A third delivery is now a true duplicate
	require.NoError(t, handler.Handle(context.Background(), event))
	mockHandler.AssertNumberOfCalls(t, "Handle", 2)
	assert.Equal(t, int64(1), handler.metrics.EventsDuplicate.Load())
}

func TestIdempotentHandler_Handle_StoreFailureProcessesAnyway(t *testing.T) {
	logger := zap.NewNop()
	mockStore := new(MockIdempotencyStore)
	mockHandler := new(MockEventHandler)
	event := ledger.NewLedgerCreatedEvent(3, 7, "Household", "", "KRW", false)

	mockStore.On("MarkProcessed", mock.Anything, event.EventID().String(), mock.Anything).
		Return(false, assert.AnError)
	mockHandler.On("Handle", mock.Anything, event).Return(nil)

	handler := NewIdempotentHandler(mockHandler, mockStore, logger)

	// A broken idempotency store must not drop events
	err := handler.Handle(context.Background(), event)
	require.NoError(t, err)

	mockHandler.AssertExpectations(t)
}

func TestIdempotentHandler_Handle_Disabled(t *testing.T) {
	logger := zap.NewNop()
	mockStore := new(MockIdempotencyStore)
	mockHandler := new(MockEventHandler)
	event := ledger.NewUserRegisteredEvent(9)

	mockHandler.On("Handle", mock.Anything, event).Return(nil).Twice()

	handler := NewIdempotentHandler(mockHandler, mockStore, logger,
		WithIdempotencyConfig(shared.IdempotencyConfig{Enabled: false}),
	)

	require.NoError(t, handler.Handle(context.Background(), event))
	require.NoError(t, handler.Handle(context.Background(), event))

	// Store is never consulted when disabled
	mockStore.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything)
	mockHandler.AssertExpectations(t)
}

func TestIdempotentHandler_EventTypes(t *testing.T) {
	logger := zap.NewNop()
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	mockHandler := new(MockEventHandler)
	mockHandler.On("EventTypes").Return([]string{ledger.EventTypeUserRegistered, ledger.EventTypeUserDeleted})

	handler := NewIdempotentHandler(mockHandler, store, logger)

	assert.Equal(t, []string{ledger.EventTypeUserRegistered, ledger.EventTypeUserDeleted}, handler.EventTypes())
}

func TestWrapHandlersWithIdempotency(t *testing.T) {
	logger := zap.NewNop()
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	h1 := new(MockEventHandler)
	h2 := new(MockEventHandler)

	wrapped := WrapHandlersWithIdempotency([]shared.EventHandler{h1, h2}, store, logger)

	require.Len(t, wrapped, 2)
	for _, h := range wrapped {
		_, ok := h.(*IdempotentHandler)
		assert.True(t, ok)
	}
}
