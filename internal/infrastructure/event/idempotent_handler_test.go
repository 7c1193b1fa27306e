package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/atthompson13/aa-shoppingcart/internal/domain/shared"
	"github.com/atthompson13/aa-shoppingcart/internal/infrastructure/cache"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockEventHandler struct {
	mock.Mock
}

func (m *MockEventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventHandler) EventTypes() []string {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]string)
}

type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Close() error {
	return m.Called().Error(0)
}

func newStore(t *testing.T) shared.IdempotencyStore {
	t.Helper()
	store := cache.NewInMemoryIdempotencyStore(clockwork.NewFakeClock())
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestIdempotentHandler_HandlesEachEventOnce(t *testing.T) {
	inner := new(MockEventHandler)
	event := newTestEvent("ItemRequestCreated", 7)
	inner.On("Handle", mock.Anything, event).Return(nil).Once()

	h := NewIdempotentHandler(inner, newStore(t), shared.DefaultIdempotencyConfig(), zap.NewNop())
	ctx := context.Background()

	require.NoError(t, h.Handle(ctx, event))
	require.NoError(t, h.Handle(ctx, event))

	inner.AssertExpectations(t)
	assert.Equal(t, IdempotencyStats{Processed: 1, Duplicate: 1}, h.Stats())
}

func TestIdempotentHandler_DistinctEventsAreHandled(t *testing.T) {
	inner := new(MockEventHandler)
	inner.On("Handle", mock.Anything, mock.Anything).Return(nil).Twice()

	h := NewIdempotentHandler(inner, newStore(t), shared.DefaultIdempotencyConfig(), nil)
	ctx := context.Background()

	require.NoError(t, h.Handle(ctx, newTestEvent("ItemRequestCreated", 1)))
	require.NoError(t, h.Handle(ctx, newTestEvent("ItemRequestCreated", 1)))
	inner.AssertExpectations(t)
}

func TestIdempotentHandler_Disabled(t *testing.T) {
	inner := new(MockEventHandler)
	store := new(MockIdempotencyStore)
	event := newTestEvent("ItemRequestCreated", 1)
	inner.On("Handle", mock.Anything, event).Return(nil).Twice()

	h := NewIdempotentHandler(inner, store, shared.IdempotencyConfig{Enabled: false}, nil)
	require.NoError(t, h.Handle(context.Background(), event))
	require.NoError(t, h.Handle(context.Background(), event))

	inner.AssertExpectations(t)
	store.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything)
}

func TestIdempotentHandler_StoreErrorStillHandles(t *testing.T) {
	inner := new(MockEventHandler)
	store := new(MockIdempotencyStore)
	event := newTestEvent("ContractCreated", 4)
	key := "event:" + event.EventID().String()

	store.On("MarkProcessed", mock.Anything, key, 24*time.Hour).Return(false, errors.New("redis down"))
	inner.On("Handle", mock.Anything, event).Return(nil)

	h := NewIdempotentHandler(inner, store, shared.DefaultIdempotencyConfig(), nil)
	require.NoError(t, h.Handle(context.Background(), event))

	inner.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestIdempotentHandler_PropagatesHandlerError(t *testing.T) {
	inner := new(MockEventHandler)
	event := newTestEvent("ItemRequestClaimed", 2)
	inner.On("Handle", mock.Anything, event).Return(errors.New("queue full"))

	h := NewIdempotentHandler(inner, newStore(t), shared.DefaultIdempotencyConfig(), nil)
	err := h.Handle(context.Background(), event)

	assert.EqualError(t, err, "queue full")
	assert.Equal(t, int64(1), h.Stats().Failed)
}

func TestWrapHandlers(t *testing.T) {
	inner := new(MockEventHandler)
	inner.On("EventTypes").Return([]string{"ContractCreated"})

	wrapped := WrapHandlers([]shared.EventHandler{inner}, newStore(t), shared.DefaultIdempotencyConfig(), nil)
	require.Len(t, wrapped, 1)
	assert.Equal(t, []string{"ContractCreated"}, wrapped[0].EventTypes())
}
