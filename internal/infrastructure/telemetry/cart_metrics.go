package telemetry

import (
	"context"
	"time"

	"github.com/atthompson13/aa-shoppingcart/internal/domain/cart"
	"github.com/atthompson13/aa-shoppingcart/internal/domain/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// StatusCounter counts item requests in a status
type StatusCounter interface {
	CountByStatus(ctx context.Context, status cart.Status) (int64, error)
}

// TaskFunc runs one background task for one item request
type TaskFunc func(ctx context.Context, task string, requestID int64) error

// CartMetrics holds the shopping cart business instruments. It subscribes
// to every domain event and observes open request counts per status.
type CartMetrics struct {
	events       *Counter
	taskRuns     *Counter
	taskDuration *Histogram
	registration metric.Registration
	logger       *zap.Logger
}

// NewCartMetrics creates the business instruments. When counter is not nil
// the number of open requests per status is observed on each collection.
func NewCartMetrics(mp *MeterProvider, counter StatusCounter, logger *zap.Logger) (*CartMetrics, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	meter := mp.Meter("aa-shoppingcart/cart")

	events, err := NewCounter(meter, "cart_events_total", "Item request domain events by type", "{event}")
	if err != nil {
		return nil, err
	}
	taskRuns, err := NewCounter(meter, "cart_task_runs_total", "Background task runs by task and outcome", "{run}")
	if err != nil {
		return nil, err
	}
	taskDuration, err := NewHistogram(meter, HistogramOpts{
		Name:        "cart_task_duration_seconds",
		Description: "Background task duration in seconds",
		Unit:        "s",
		Boundaries:  TaskDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	m := &CartMetrics{events: events, taskRuns: taskRuns, taskDuration: taskDuration, logger: logger}
	if counter != nil {
		if err := m.observeOpenRequests(meter, counter); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *CartMetrics) observeOpenRequests(meter metric.Meter, counter StatusCounter) error {
	gauge, err := meter.Int64ObservableGauge("cart_open_requests",
		metric.WithDescription("Item requests in a non-terminal status"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return err
	}
	m.registration, err = meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		for _, status := range cart.AllStatuses {
			if status.IsTerminal() {
				continue
			}
			n, err := counter.CountByStatus(ctx, status)
			if err != nil {
				m.logger.Warn("Failed to count requests for metrics",
					zap.String("status", status.String()),
					zap.Error(err),
				)
				continue
			}
			o.ObserveInt64(gauge, n, metric.WithAttributes(AttrStatus.String(status.String())))
		}
		return nil
	}, gauge)
	return err
}

// Handle counts the event
func (m *CartMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	m.events.Inc(ctx, AttrEventType.String(event.EventType()))
	return nil
}

// EventTypes returns nil so the handler receives every event
func (m *CartMetrics) EventTypes() []string {
	return nil
}

// InstrumentTask wraps next with a span, profiling labels, a duration
// histogram and an outcome counter.
func (m *CartMetrics) InstrumentTask(next TaskFunc) TaskFunc {
	return func(ctx context.Context, task string, requestID int64) error {
		ctx, span := StartServiceSpan(ctx, "task", task,
			AttrTask.String(task),
			attribute.Int64("item_request.id", requestID),
		)
		start := time.Now()

		var err error
		WithProfilingLabels(ctx, TaskLabels(task), func(ctx context.Context) {
			err = next(ctx, task, requestID)
		})

		outcome := "success"
		if err != nil {
			outcome = "failure"
		}
		m.taskDuration.RecordDuration(ctx, time.Since(start), AttrTask.String(task))
		m.taskRuns.Inc(ctx, AttrTask.String(task), AttrOutcome.String(outcome))
		EndSpan(span, err)
		return err
	}
}

// Stop unregisters the open request observer
func (m *CartMetrics) Stop() error {
	if m.registration == nil {
		return nil
	}
	return m.registration.Unregister()
}

var _ shared.EventHandler = (*CartMetrics)(nil)
