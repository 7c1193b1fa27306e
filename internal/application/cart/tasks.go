package cart

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/atthompson13/aa-shoppingcart/internal/domain/cart"
	"github.com/atthompson13/aa-shoppingcart/internal/domain/shared"
	"github.com/atthompson13/aa-shoppingcart/internal/infrastructure/notify"
	"go.uber.org/zap"
)

// ErrUnknownTask is returned for a task name the runner does not know
var ErrUnknownTask = errors.New("unknown task")

// Notifier delivers a notification to an outside channel
type Notifier interface {
	Send(ctx context.Context, msg notify.Message) error
}

// TaskRunner executes the background tasks queued by the event handlers
type TaskRunner struct {
	requests  cart.ItemRequestRepository
	notifier  Notifier
	store     shared.IdempotencyStore
	dedupeTTL time.Duration
	appName   string
	logger    *zap.Logger
}

// NewTaskRunner creates a new TaskRunner. Notifications are only logged
// until SetNotifier is called.
func NewTaskRunner(requests cart.ItemRequestRepository, settings Settings, logger *zap.Logger) *TaskRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskRunner{
		requests:  requests,
		dedupeTTL: shared.DefaultIdempotencyConfig().TTL,
		appName:   settings.AppName,
		logger:    logger,
	}
}

// SetNotifier sets the channel notifications are posted to
func (r *TaskRunner) SetNotifier(notifier Notifier) {
	r.notifier = notifier
}

// SetIdempotencyStore makes notifications run once per task and request within ttl
func (r *TaskRunner) SetIdempotencyStore(store shared.IdempotencyStore, ttl time.Duration) {
	r.store = store
	if ttl > 0 {
		r.dedupeTTL = ttl
	}
}

// Execute runs one task for one request
func (r *TaskRunner) Execute(ctx context.Context, task string, requestID int64) error {
	switch task {
	case TaskNotifyNewRequest:
		r.logger.Info("New request notification: " + strconv.FormatInt(requestID, 10))
		return r.notifyOnce(ctx, task, requestID, newRequestMessage)
	case TaskNotifyRequestClaimed:
		r.logger.Info("Request claimed notification: " + strconv.FormatInt(requestID, 10))
		return r.notifyOnce(ctx, task, requestID, claimedMessage)
	case TaskMonitorContractStatus:
		r.logger.Info("Monitoring contract for request: " + strconv.FormatInt(requestID, 10))
		return r.monitorContract(ctx, requestID)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownTask, task)
	}
}

// notifyOnce claims the dedupe key before sending, so concurrent runs of the
// same task send at most one message. A failed send releases the key.
func (r *TaskRunner) notifyOnce(ctx context.Context, task string, requestID int64, build func(*cart.ItemRequest, string) notify.Message) error {
	if r.notifier == nil {
		return nil
	}

	key := task + ":" + strconv.FormatInt(requestID, 10)
	claimed := false
	if r.store != nil {
		isNew, err := r.store.MarkProcessed(ctx, key, r.dedupeTTL)
		switch {
		case err != nil:
			r.logger.Warn("idempotency check failed, sending anyway", zap.String("key", key), zap.Error(err))
		case !isNew:
			r.logger.Debug("notification already sent", zap.String("key", key))
			return nil
		default:
			claimed = true
		}
	}

	req, err := r.requests.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			r.logger.Warn("request gone before notification", zap.Int64("request_id", requestID))
			return nil
		}
		r.release(ctx, claimed, key)
		return err
	}

	if err := r.notifier.Send(ctx, build(req, r.appName)); err != nil {
		r.release(ctx, claimed, key)
		return fmt.Errorf("sending %s for request %d: %w", task, requestID, err)
	}
	return nil
}

func (r *TaskRunner) release(ctx context.Context, claimed bool, key string) {
	if !claimed {
		return
	}
	if err := r.store.Release(ctx, key); err != nil {
		r.logger.Warn("failed to release notification key", zap.String("key", key), zap.Error(err))
	}
}

func (r *TaskRunner) monitorContract(ctx context.Context, requestID int64) error {
	req, err := r.requests.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}

	fields := []zap.Field{
		zap.Int64("request_id", req.ID),
		zap.String("status", req.Status.String()),
		zap.String("issuer", req.ContractIssuer.String()),
	}
	if req.ContractID != nil {
		fields = append(fields, zap.Int64("contract_id", *req.ContractID))
	}
	if req.ESIMonitorCharacter != nil {
		fields = append(fields, zap.Int64("monitor_character_id", req.ESIMonitorCharacter.ID))
	}
	r.logger.Debug("contract status", fields...)
	return nil
}

func newRequestMessage(req *cart.ItemRequest, footer string) notify.Message {
	fields := []notify.Field{
		{Name: "Requester", Value: req.Character.Name, Inline: true},
		{Name: "Type", Value: req.RequestType.Label(), Inline: true},
		{Name: "Items", Value: strconv.Itoa(req.TotalItemsCount()), Inline: true},
	}
	if req.PickupLocation != "" {
		fields = append(fields, notify.Field{Name: "Pickup", Value: req.PickupLocation, Inline: true})
	}
	if req.DeliveryLocation != "" {
		fields = append(fields, notify.Field{Name: "Delivery", Value: req.DeliveryLocation, Inline: true})
	}
	if req.RequesterPrice != nil {
		fields = append(fields, notify.Field{Name: "Price", Value: cart.FormatISK(req.RequesterPrice), Inline: true})
	}
	return notify.Message{
		Title:       fmt.Sprintf("New item request #%d", req.ID),
		Description: req.String(),
		Color:       notify.ColorInfo,
		Fields:      fields,
		Footer:      footer,
		Timestamp:   req.CreatedAt,
	}
}

func claimedMessage(req *cart.ItemRequest, footer string) notify.Message {
	fulfiller := req.FulfillerUsername
	if req.FulfillerCharacter != nil {
		fulfiller = req.FulfillerCharacter.Name
	}
	msg := notify.Message{
		Title:       fmt.Sprintf("Item request #%d claimed", req.ID),
		Description: req.String(),
		Color:       notify.ColorSuccess,
		Fields: []notify.Field{
			{Name: "Requester", Value: req.Character.Name, Inline: true},
			{Name: "Fulfiller", Value: fulfiller, Inline: true},
		},
		Footer: footer,
	}
	if req.ClaimedAt != nil {
		msg.Timestamp = *req.ClaimedAt
	}
	return msg
}
