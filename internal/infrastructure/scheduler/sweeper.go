package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// SweepFunc is one housekeeping pass
type SweepFunc func(ctx context.Context) error

// SweeperConfig holds configuration for the periodic housekeeping loop
type SweeperConfig struct {
	// Interval between sweeps
	Interval time.Duration
	// Timeout bounds a single sweep
	Timeout time.Duration
	// RunOnStart runs a sweep as soon as the loop starts
	RunOnStart bool
}

// DefaultSweeperConfig returns the default sweeper configuration
func DefaultSweeperConfig() SweeperConfig {
	return SweeperConfig{
		Interval:   time.Hour,
		Timeout:    5 * time.Minute,
		RunOnStart: true,
	}
}

// Sweeper runs a housekeeping function on a fixed interval
type Sweeper struct {
	config SweeperConfig
	sweep  SweepFunc
	logger *zap.Logger
	clock  clockwork.Clock

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	lastRunAt *time.Time
	nextRunAt *time.Time
	lastError string
	runs      int
}

// NewSweeper creates a new sweeper
func NewSweeper(config SweeperConfig, sweep SweepFunc, logger *zap.Logger, clock clockwork.Clock) (*Sweeper, error) {
	if config.Interval <= 0 {
		return nil, ErrInvalidConfig
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Sweeper{
		config: config,
		sweep:  sweep,
		logger: logger,
		clock:  clock,
	}, nil
}

// Start starts the sweep loop
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	ticker := s.clock.NewTicker(s.config.Interval)
	s.setNextRun(s.clock.Now().Add(s.config.Interval))

	s.wg.Add(1)
	go s.loop(ctx, ticker)

	s.logger.Info("Housekeeping sweeper started",
		zap.Duration("interval", s.config.Interval),
		zap.Bool("run_on_start", s.config.RunOnStart),
	)
	return nil
}

// Stop stops the sweep loop, waiting for a running sweep to finish
func (s *Sweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Housekeeping sweeper stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Housekeeping sweeper stop timed out")
		return ctx.Err()
	}
}

func (s *Sweeper) loop(ctx context.Context, ticker clockwork.Ticker) {
	defer s.wg.Done()
	defer ticker.Stop()

	if s.config.RunOnStart {
		s.RunNow(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			s.RunNow(ctx)
			s.setNextRun(s.clock.Now().Add(s.config.Interval))
		}
	}
}

// RunNow runs one sweep synchronously and records its outcome
func (s *Sweeper) RunNow(ctx context.Context) {
	start := s.clock.Now()

	sweepCtx := ctx
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		sweepCtx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	err := s.sweep(sweepCtx)

	s.mu.Lock()
	s.lastRunAt = &start
	s.runs++
	s.lastError = ""
	if err != nil {
		s.lastError = err.Error()
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("Housekeeping sweep failed", zap.Error(err))
		return
	}
	s.logger.Debug("Housekeeping sweep finished", zap.Duration("elapsed", s.clock.Since(start)))
}

func (s *Sweeper) setNextRun(at time.Time) {
	s.mu.Lock()
	s.nextRunAt = &at
	s.mu.Unlock()
}

// GetStatus returns the current status of the sweeper
func (s *Sweeper) GetStatus() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	return map[string]any{
		"is_running":  s.isRunning,
		"interval":    s.config.Interval.String(),
		"runs":        s.runs,
		"last_run_at": s.lastRunAt,
		"next_run_at": s.nextRunAt,
		"last_error":  s.lastError,
	}
}

// Runs returns how many sweeps have completed
func (s *Sweeper) Runs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}
