//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/atthompson13/aa-shoppingcart/internal/infrastructure/cache"
	"github.com/atthompson13/aa-shoppingcart/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestRedisIdempotencyStore(t *testing.T) {
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client, err := cache.NewRedisClient(ctx, config.RedisConfig{Host: host, Port: port.Int()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	store := cache.NewRedisIdempotencyStore(client, "test:")

	isNew, err := store.MarkProcessed(ctx, "notify_new_request:1", time.Minute)
	require.NoError(t, err)
	assert.True(t, isNew)

	isNew, err = store.MarkProcessed(ctx, "notify_new_request:1", time.Minute)
	require.NoError(t, err)
	assert.False(t, isNew, "second claim loses")

	require.NoError(t, store.Release(ctx, "notify_new_request:1"))
	done, err := store.IsProcessed(ctx, "notify_new_request:1")
	require.NoError(t, err)
	assert.False(t, done)

	isNew, err = store.MarkProcessed(ctx, "notify_new_request:1", time.Minute)
	require.NoError(t, err)
	assert.True(t, isNew, "released key can be claimed again")
}
