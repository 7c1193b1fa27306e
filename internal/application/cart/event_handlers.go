package cart

import (
	"context"
	"fmt"

	"github.com/atthompson13/aa-shoppingcart/internal/domain/cart"
	"github.com/atthompson13/aa-shoppingcart/internal/domain/shared"
	"go.uber.org/zap"
)

// Background task names
const (
	TaskNotifyNewRequest      = "notify_new_request"
	TaskNotifyRequestClaimed  = "notify_request_claimed"
	TaskMonitorContractStatus = "monitor_contract_status"
)

// TaskEnqueuer hands a task to the background worker pool
type TaskEnqueuer interface {
	Enqueue(ctx context.Context, task string, requestID int64) error
}

// RequestCreatedHandler queues the new request notification
type RequestCreatedHandler struct {
	tasks    TaskEnqueuer
	settings Settings
	logger   *zap.Logger
}

// NewRequestCreatedHandler creates a new RequestCreatedHandler
func NewRequestCreatedHandler(tasks TaskEnqueuer, settings Settings, logger *zap.Logger) *RequestCreatedHandler {
	return &RequestCreatedHandler{tasks: tasks, settings: settings, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *RequestCreatedHandler) EventTypes() []string {
	return []string{cart.EventTypeItemRequestCreated}
}

// Handle processes an ItemRequestCreatedEvent
func (h *RequestCreatedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if _, ok := event.(*cart.ItemRequestCreatedEvent); !ok {
		return unexpectedEvent(h.logger, cart.EventTypeItemRequestCreated, event)
	}
	if !h.settings.NotifyOnNewRequest {
		return nil
	}
	return h.tasks.Enqueue(ctx, TaskNotifyNewRequest, event.AggregateID())
}

// RequestClaimedHandler queues the claim notification
type RequestClaimedHandler struct {
	tasks    TaskEnqueuer
	settings Settings
	logger   *zap.Logger
}

// NewRequestClaimedHandler creates a new RequestClaimedHandler
func NewRequestClaimedHandler(tasks TaskEnqueuer, settings Settings, logger *zap.Logger) *RequestClaimedHandler {
	return &RequestClaimedHandler{tasks: tasks, settings: settings, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *RequestClaimedHandler) EventTypes() []string {
	return []string{cart.EventTypeItemRequestClaimed}
}

// Handle processes an ItemRequestClaimedEvent
func (h *RequestClaimedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if _, ok := event.(*cart.ItemRequestClaimedEvent); !ok {
		return unexpectedEvent(h.logger, cart.EventTypeItemRequestClaimed, event)
	}
	if !h.settings.NotifyOnClaim {
		return nil
	}
	return h.tasks.Enqueue(ctx, TaskNotifyRequestClaimed, event.AggregateID())
}

// ContractCreatedHandler starts contract monitoring
type ContractCreatedHandler struct {
	tasks  TaskEnqueuer
	logger *zap.Logger
}

// NewContractCreatedHandler creates a new ContractCreatedHandler
func NewContractCreatedHandler(tasks TaskEnqueuer, logger *zap.Logger) *ContractCreatedHandler {
	return &ContractCreatedHandler{tasks: tasks, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *ContractCreatedHandler) EventTypes() []string {
	return []string{cart.EventTypeContractCreated}
}

// Handle processes a ContractCreatedEvent
func (h *ContractCreatedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	created, ok := event.(*cart.ContractCreatedEvent)
	if !ok {
		return unexpectedEvent(h.logger, cart.EventTypeContractCreated, event)
	}
	h.logger.Debug("contract linked",
		zap.Int64("request_id", created.AggregateID()),
		zap.Int64("contract_id", created.ContractID),
		zap.String("issuer", created.Issuer.String()),
	)
	return h.tasks.Enqueue(ctx, TaskMonitorContractStatus, created.AggregateID())
}

// EventHandlers returns every handler the shopping cart subscribes on the bus
func EventHandlers(tasks TaskEnqueuer, settings Settings, logger *zap.Logger) []shared.EventHandler {
	return []shared.EventHandler{
		NewRequestCreatedHandler(tasks, settings, logger),
		NewRequestClaimedHandler(tasks, settings, logger),
		NewContractCreatedHandler(tasks, logger),
	}
}

func unexpectedEvent(logger *zap.Logger, expected string, event shared.DomainEvent) error {
	logger.Error("unexpected event type",
		zap.String("expected", expected),
		zap.String("actual", event.EventType()),
	)
	return fmt.Errorf("unexpected event type: expected %s, got %s", expected, event.EventType())
}

var (
	_ shared.EventHandler = (*RequestCreatedHandler)(nil)
	_ shared.EventHandler = (*RequestClaimedHandler)(nil)
	_ shared.EventHandler = (*ContractCreatedHandler)(nil)
)
