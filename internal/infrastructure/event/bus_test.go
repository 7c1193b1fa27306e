package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/atthompson13/aa-shoppingcart/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string, aggregateID int64) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "ItemRequest", aggregateID, time.Now()),
	}
}

type testHandler struct {
	eventTypes []string
	err        error
	panicWith  any

	mu      sync.Mutex
	handled []shared.DomainEvent
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if h.panicWith != nil {
		panic(h.panicWith)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) getHandled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.handled...)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newTestHandler("ItemRequestCreated")
	bus.Subscribe(handler)

	event := newTestEvent("ItemRequestCreated", 1)
	require.NoError(t, bus.Publish(context.Background(), event))

	handled := handler.getHandled()
	require.Len(t, handled, 1)
	assert.Equal(t, event, handled[0])
}

func TestInMemoryEventBus_RoutesByEventType(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	created := newTestHandler("ItemRequestCreated")
	claimed := newTestHandler("ItemRequestClaimed")
	bus.Subscribe(created)
	bus.Subscribe(claimed)

	require.NoError(t, bus.Publish(context.Background(),
		newTestEvent("ItemRequestCreated", 1),
		newTestEvent("ItemRequestClaimed", 1),
		newTestEvent("ItemRequestClaimed", 2),
	))

	assert.Len(t, created.getHandled(), 1)
	assert.Len(t, claimed.getHandled(), 2)
}

func TestInMemoryEventBus_ExplicitTypesOverrideHandlerTypes(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newTestHandler("ItemRequestCreated")
	bus.Subscribe(handler, "ContractCreated")

	require.NoError(t, bus.Publish(context.Background(),
		newTestEvent("ItemRequestCreated", 1),
		newTestEvent("ContractCreated", 1),
	))

	handled := handler.getHandled()
	require.Len(t, handled, 1)
	assert.Equal(t, "ContractCreated", handled[0].EventType())
}

func TestInMemoryEventBus_FailingHandlerDoesNotBlockOthers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	failing := newTestHandler("ItemRequestCreated")
	failing.err = errors.New("queue full")
	panicking := newTestHandler("ItemRequestCreated")
	panicking.panicWith = "boom"
	healthy := newTestHandler("ItemRequestCreated")

	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("ItemRequestCreated", 3)))

	assert.Len(t, healthy.getHandled(), 1)
	stats := bus.Stats()
	assert.Equal(t, int64(1), stats["published"])
	assert.Equal(t, int64(2), stats["failed"])
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newTestHandler("ItemRequestCreated")
	bus.Subscribe(handler)
	bus.Unsubscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("ItemRequestCreated", 1)))
	assert.Empty(t, handler.getHandled())
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	ctx := context.Background()

	require.NoError(t, bus.Start(ctx))
	assert.True(t, bus.IsRunning())
	require.NoError(t, bus.Stop(ctx))
	assert.False(t, bus.IsRunning())
}
