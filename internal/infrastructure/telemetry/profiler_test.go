package telemetry

import (
	"context"
	"runtime/pprof"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewProfiler_Disabled(t *testing.T) {
	p, err := NewProfiler(ProfilerConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, p.IsEnabled())
	assert.NoError(t, p.Stop())
	assert.NoError(t, p.Stop())
}

func TestNewProfiler_RequiresAddressAndName(t *testing.T) {
	_, err := NewProfiler(ProfilerConfig{Enabled: true, ApplicationName: "cart"}, zap.NewNop())
	assert.Error(t, err)

	_, err = NewProfiler(ProfilerConfig{Enabled: true, ServerAddress: "http://localhost:4040"}, zap.NewNop())
	assert.Error(t, err)
}

func TestProfileTypes(t *testing.T) {
	assert.Len(t, profileTypes(ProfilerConfig{}), 6)
	assert.Len(t, profileTypes(ProfilerConfig{ProfileMutex: true, ProfileBlock: true}), 10)
}

func TestSanitizeLabels(t *testing.T) {
	long := strings.Repeat("x", MaxLabelValueLength+10)
	pairs := sanitizeLabels(map[string]string{
		"route":      "/api/v1/shopping-cart/marketplace",
		"method":     "GET",
		"user_id":    "42",
		"Request_ID": "abc",
		"empty":      "",
		"operation":  long,
	})
	assert.Equal(t, []string{
		"method", "GET",
		"operation", long[:MaxLabelValueLength],
		"route", "/api/v1/shopping-cart/marketplace",
	}, pairs)
}

func TestWithProfilingLabels(t *testing.T) {
	var seen string
	WithProfilingLabels(context.Background(), HTTPRequestLabels("/health", "GET"), func(ctx context.Context) {
		seen, _ = pprof.Label(ctx, ProfilingLabelRoute)
	})
	assert.Equal(t, "/health", seen)

	called := false
	WithProfilingLabels(context.Background(), map[string]string{"user_id": "1"}, func(ctx context.Context) {
		called = true
		_, ok := pprof.Label(ctx, "user_id")
		assert.False(t, ok)
	})
	assert.True(t, called)
}
