package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// openTestRedis uses RESUMEFILL_TEST_REDIS when set, else starts a
// throwaway redis container.
func openTestRedis(t *testing.T) *Redis {
	t.Helper()
	ctx := context.Background()

	addr := os.Getenv("RESUMEFILL_TEST_REDIS")
	if addr == "" {
		if testing.Short() {
			t.Skip("redis container skipped in short mode")
		}
		testcontainers.SkipIfProviderIsNotHealthy(t)

		ctr, err := testcontainers.Run(ctx, "redis:7-alpine",
			testcontainers.WithExposedPorts("6379/tcp"),
			testcontainers.WithWaitStrategy(
				wait.ForListeningPort("6379/tcp").WithStartupTimeout(60*time.Second),
			),
		)
		testcontainers.CleanupContainer(t, ctr)
		require.NoError(t, err)

		addr, err = ctr.Endpoint(ctx, "")
		require.NoError(t, err)
	}

	r, err := OpenRedis(ctx, addr, 0, "resumefill-test-"+uuid.NewString()+":")
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestRedisRoundTrip(t *testing.T) {
	ctx := context.Background()
	r := openTestRedis(t)

	var missing map[string]string
	ok, err := r.Get(ctx, KeyFieldMemory, &missing)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.Set(ctx, KeyFieldMemory, map[string]string{"邮箱": "zs@example.com"}))
	var got map[string]string
	ok, err = r.Get(ctx, KeyFieldMemory, &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "zs@example.com", got["邮箱"])

	require.NoError(t, r.Delete(ctx, KeyFieldMemory))
	ok, err = r.Get(ctx, KeyFieldMemory, &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOpenRedisRequiresAddress(t *testing.T) {
	_, err := OpenRedis(context.Background(), "", 0, "")
	assert.Error(t, err)
}
