package ratelimit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func newTestRedis(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}
	t.Cleanup(func() {
		container.Terminate(context.Background())
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	return fmt.Sprintf("%s:%s", host, port.Port())
}

func TestRedis_LockoutAndReset(t *testing.T) {
	ctx := context.Background()
	client, err := NewRedisClient(ctx, newTestRedis(t), "")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	limiter := NewRedis(client, 2, time.Minute)

	d, err := limiter.Check(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, d.Locked)

	require.NoError(t, limiter.RecordFailure(ctx, "alice"))
	d, err = limiter.Check(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, d.Locked)

	require.NoError(t, limiter.RecordFailure(ctx, "alice"))
	d, err = limiter.Check(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, d.Locked)
	assert.Greater(t, d.Remaining, time.Duration(0))
	assert.LessOrEqual(t, d.Remaining, time.Minute)

	require.NoError(t, limiter.Reset(ctx, "alice"))
	d, err = limiter.Check(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, d.Locked)
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedisClient(ctx, "127.0.0.1:1", "")
	assert.Error(t, err)
}
