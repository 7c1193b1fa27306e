package cart

import (
	"context"
	"errors"

	"github.com/atthompson13/aa-shoppingcart/internal/domain/cart"
	"github.com/atthompson13/aa-shoppingcart/internal/domain/shared"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// defaultSweepBatchSize bounds how many stale requests one sweep expires
const defaultSweepBatchSize = 200

// MaintenanceService expires abandoned requests and purges old finished ones
type MaintenanceService struct {
	requests       cart.ItemRequestRepository
	eventPublisher shared.EventPublisher
	settings       Settings
	clock          clockwork.Clock
	logger         *zap.Logger
	batchSize      int
}

// NewMaintenanceService creates a new MaintenanceService
func NewMaintenanceService(
	requests cart.ItemRequestRepository,
	settings Settings,
	clock clockwork.Clock,
	logger *zap.Logger,
) *MaintenanceService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MaintenanceService{
		requests:  requests,
		settings:  settings,
		clock:     clock,
		logger:    logger,
		batchSize: defaultSweepBatchSize,
	}
}

// SetEventPublisher sets the publisher that receives expiry events
func (s *MaintenanceService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBatchSize overrides how many requests one sweep expires
func (s *MaintenanceService) SetBatchSize(n int) {
	if n > 0 {
		s.batchSize = n
	}
}

// ExpireAbandoned expires open requests untouched for longer than the
// configured abandoned cart window. Returns the number expired.
func (s *MaintenanceService) ExpireAbandoned(ctx context.Context) (int, error) {
	if s.settings.AbandonedCartDays <= 0 {
		return 0, nil
	}
	now := s.clock.Now()
	cutoff := now.Add(-s.settings.abandonedAfter())

	stale, err := s.requests.FindStale(ctx, cart.OpenStatuses, cutoff, s.batchSize)
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range stale {
		req := &stale[i]
		if err := req.Expire(now); err != nil {
			s.logger.Warn("skipping request that cannot expire",
				zap.Int64("request_id", req.ID),
				zap.String("status", req.Status.String()),
				zap.Error(err),
			)
			continue
		}
		if err := s.requests.Save(ctx, req); err != nil {
			// a player touched it since it was loaded
			if errors.Is(err, shared.ErrConcurrencyConflict) {
				continue
			}
			return expired, err
		}
		expired++

		events := req.PullDomainEvents()
		if s.eventPublisher != nil {
			if err := s.eventPublisher.Publish(ctx, events...); err != nil {
				s.logger.Warn("failed to publish expiry event",
					zap.Int64("request_id", req.ID),
					zap.Error(err),
				)
			}
		}
	}

	if expired > 0 {
		s.logger.Info("expired abandoned requests",
			zap.Int("count", expired),
			zap.Time("cutoff", cutoff),
		)
	}
	return expired, nil
}

// PurgeFinished deletes completed, cancelled and expired requests older than
// the retention window. Returns the number deleted.
func (s *MaintenanceService) PurgeFinished(ctx context.Context) (int64, error) {
	if s.settings.FulfilledRetentionDays <= 0 {
		return 0, nil
	}
	cutoff := s.clock.Now().Add(-s.settings.retainFinishedFor())

	deleted, err := s.requests.DeleteFinishedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.logger.Info("purged finished requests",
			zap.Int64("count", deleted),
			zap.Time("cutoff", cutoff),
		)
	}
	return deleted, nil
}

// Sweep runs both housekeeping jobs
func (s *MaintenanceService) Sweep(ctx context.Context) error {
	if _, err := s.ExpireAbandoned(ctx); err != nil {
		return err
	}
	_, err := s.PurgeFinished(ctx)
	return err
}
