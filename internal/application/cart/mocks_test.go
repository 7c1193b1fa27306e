package cart

import (
	"context"
	"sync"
	"time"

	"github.com/atthompson13/aa-shoppingcart/internal/domain/cart"
	"github.com/atthompson13/aa-shoppingcart/internal/domain/shared"
	"github.com/atthompson13/aa-shoppingcart/internal/infrastructure/notify"
	"github.com/stretchr/testify/mock"
)

// MockItemRequestRepository is a mock implementation of cart.ItemRequestRepository
type MockItemRequestRepository struct {
	mock.Mock
}

func (m *MockItemRequestRepository) FindByID(ctx context.Context, id int64) (*cart.ItemRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.ItemRequest), args.Error(1)
}

func (m *MockItemRequestRepository) Save(ctx context.Context, req *cart.ItemRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockItemRequestRepository) SaveWithTracking(ctx context.Context, req *cart.ItemRequest, tracking *cart.FulfillmentTracking) error {
	return m.Called(ctx, req, tracking).Error(0)
}

func (m *MockItemRequestRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockItemRequestRepository) requests(args mock.Arguments) ([]cart.ItemRequest, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]cart.ItemRequest), args.Error(1)
}

func (m *MockItemRequestRepository) FindByUser(ctx context.Context, userID int64, filter shared.Filter) ([]cart.ItemRequest, error) {
	return m.requests(m.Called(ctx, userID, filter))
}

func (m *MockItemRequestRepository) FindClaimable(ctx context.Context, filter shared.Filter) ([]cart.ItemRequest, error) {
	return m.requests(m.Called(ctx, filter))
}

func (m *MockItemRequestRepository) FindClaimableForUser(ctx context.Context, userID int64, filter shared.Filter) ([]cart.ItemRequest, error) {
	return m.requests(m.Called(ctx, userID, filter))
}

func (m *MockItemRequestRepository) FindUserClaims(ctx context.Context, userID int64, filter shared.Filter) ([]cart.ItemRequest, error) {
	return m.requests(m.Called(ctx, userID, filter))
}

func (m *MockItemRequestRepository) FindActive(ctx context.Context, filter shared.Filter) ([]cart.ItemRequest, error) {
	return m.requests(m.Called(ctx, filter))
}

func (m *MockItemRequestRepository) FindAll(ctx context.Context, filter shared.Filter) ([]cart.ItemRequest, error) {
	return m.requests(m.Called(ctx, filter))
}

func (m *MockItemRequestRepository) FindStale(ctx context.Context, statuses []cart.Status, before time.Time, limit int) ([]cart.ItemRequest, error) {
	return m.requests(m.Called(ctx, statuses, before, limit))
}

func (m *MockItemRequestRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockItemRequestRepository) CountByStatus(ctx context.Context, status cart.Status) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockItemRequestRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockItemRequestRepository) CountActiveByUser(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockItemRequestRepository) CountByUserAndStatus(ctx context.Context, userID int64, status cart.Status) (int64, error) {
	args := m.Called(ctx, userID, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockItemRequestRepository) ExistsByContractID(ctx context.Context, contractID int64, excludeID int64) (bool, error) {
	args := m.Called(ctx, contractID, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockItemRequestRepository) DeleteFinishedBefore(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// MockFulfillmentTrackingRepository is a mock implementation of cart.FulfillmentTrackingRepository
type MockFulfillmentTrackingRepository struct {
	mock.Mock
}

func (m *MockFulfillmentTrackingRepository) FindByUser(ctx context.Context, userID int64) (*cart.FulfillmentTracking, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.FulfillmentTracking), args.Error(1)
}

func (m *MockFulfillmentTrackingRepository) Save(ctx context.Context, tracking *cart.FulfillmentTracking) error {
	return m.Called(ctx, tracking).Error(0)
}

func (m *MockFulfillmentTrackingRepository) FindTop(ctx context.Context, limit int) ([]cart.FulfillmentTracking, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]cart.FulfillmentTracking), args.Error(1)
}

func (m *MockFulfillmentTrackingRepository) FindAll(ctx context.Context, filter shared.Filter) ([]cart.FulfillmentTracking, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]cart.FulfillmentTracking), args.Error(1)
}

func (m *MockFulfillmentTrackingRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// recordingPublisher collects published events
type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

// recordingEnqueuer collects queued tasks
type recordingEnqueuer struct {
	tasks []string
	ids   []int64
	err   error
}

func (e *recordingEnqueuer) Enqueue(ctx context.Context, task string, requestID int64) error {
	if e.err != nil {
		return e.err
	}
	e.tasks = append(e.tasks, task)
	e.ids = append(e.ids, requestID)
	return nil
}

// recordingNotifier collects sent messages
type recordingNotifier struct {
	sent []notify.Message
	err  error
}

func (n *recordingNotifier) Send(ctx context.Context, msg notify.Message) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, msg)
	return nil
}
