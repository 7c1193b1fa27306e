package cache

import (
	"github.com/atthompson13/aa-shoppingcart/internal/domain/shared"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// IdempotencyStoreFactory picks the idempotency store for the deployment
type IdempotencyStoreFactory struct {
	client *redis.Client
	logger *zap.Logger
	clock  clockwork.Clock
}

// IdempotencyStoreFactoryOption is a functional option for configuring the factory
type IdempotencyStoreFactoryOption func(*IdempotencyStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.logger = logger
	}
}

// WithClock sets the clock used by the in-memory store
func WithClock(clock clockwork.Clock) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.clock = clock
	}
}

// NewIdempotencyStoreFactory creates a new factory. A nil client selects
// the in-memory store.
func NewIdempotencyStoreFactory(client *redis.Client, opts ...IdempotencyStoreFactoryOption) *IdempotencyStoreFactory {
	f := &IdempotencyStoreFactory{
		client: client,
		logger: zap.NewNop(),
		clock:  clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore returns a Redis store when a client is available, otherwise
// an in-memory store whose state is local to this process.
func (f *IdempotencyStoreFactory) CreateStore() shared.IdempotencyStore {
	if f.client != nil {
		f.logger.Info("Using Redis idempotency store")
		return NewRedisIdempotencyStore(f.client, DefaultKeyPrefix)
	}
	f.logger.Warn("Redis disabled, using in-memory idempotency store. " +
		"Background tasks may run more than once across instances.")
	return NewInMemoryIdempotencyStore(f.clock)
}
