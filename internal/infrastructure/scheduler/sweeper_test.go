package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewSweeper_RejectsZeroInterval(t *testing.T) {
	_, err := NewSweeper(SweeperConfig{}, func(context.Context) error { return nil }, zap.NewNop(), nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestSweeper_RunsOnStartAndOnEveryTick(t *testing.T) {
	clock := clockwork.NewFakeClock()
	var sweeps atomic.Int32
	cfg := DefaultSweeperConfig()
	cfg.Interval = time.Hour

	sw, err := NewSweeper(cfg, func(context.Context) error {
		sweeps.Add(1)
		return nil
	}, zap.NewNop(), clock)
	require.NoError(t, err)
	require.NoError(t, sw.Start(context.Background()))
	defer func() { _ = sw.Stop(context.Background()) }()

	assert.Eventually(t, func() bool { return sweeps.Load() == 1 }, 2*time.Second, 10*time.Millisecond)

	clock.Advance(time.Hour)
	assert.Eventually(t, func() bool { return sweeps.Load() == 2 }, 2*time.Second, 10*time.Millisecond)

	clock.Advance(30 * time.Minute)
	assert.Never(t, func() bool { return sweeps.Load() > 2 }, 100*time.Millisecond, 10*time.Millisecond)
}

func TestSweeper_RecordsFailures(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cfg := DefaultSweeperConfig()
	cfg.RunOnStart = false

	sw, err := NewSweeper(cfg, func(context.Context) error {
		return errors.New("database unavailable")
	}, zap.NewNop(), clock)
	require.NoError(t, err)

	sw.RunNow(context.Background())

	status := sw.GetStatus()
	assert.Equal(t, "database unavailable", status["last_error"])
	assert.Equal(t, 1, sw.Runs())
	assert.Equal(t, false, status["is_running"])
}

func TestSweeper_StopIsIdempotent(t *testing.T) {
	sw, err := NewSweeper(DefaultSweeperConfig(), func(context.Context) error { return nil }, zap.NewNop(), clockwork.NewFakeClock())
	require.NoError(t, err)

	require.NoError(t, sw.Start(context.Background()))
	require.NoError(t, sw.Stop(context.Background()))
	require.NoError(t, sw.Stop(context.Background()))
}
