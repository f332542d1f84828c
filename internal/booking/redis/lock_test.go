package redis_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	roomredis "ms-hotel/internal/booking/redis"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startRedis spins up a throwaway Redis container for the test.
func startRedis(t *testing.T) (*redis.Client, func()) {
	if testing.Short() {
		t.Skip("Skipping Redis integration test in short mode")
	}

	ctx := context.Background()
	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:latest",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := redisContainer.Host(ctx)
	require.NoError(t, err)
	port, err := redisContainer.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	cleanup := func() {
		client.Close()
		redisContainer.Terminate(ctx)
	}
	return client, cleanup
}

func TestLockRoom_SecondHolderRejected(t *testing.T) {
	client, cleanup := startRedis(t)
	defer cleanup()

	r := roomredis.NewRedis(client)

	locked, err := r.LockRoom(101, "token-a")
	require.NoError(t, err)
	assert.True(t, locked)

	// A concurrent reservation may not take the same room.
	locked, err = r.LockRoom(101, "token-b")
	require.NoError(t, err)
	assert.False(t, locked)

	// A different room is unaffected.
	locked, err = r.LockRoom(102, "token-b")
	require.NoError(t, err)
	assert.True(t, locked)
}

func TestUnlockRoom_TokenChecked(t *testing.T) {
	client, cleanup := startRedis(t)
	defer cleanup()

	r := roomredis.NewRedis(client)

	locked, err := r.LockRoom(101, "token-a")
	require.NoError(t, err)
	require.True(t, locked)

	// Wrong token must not release the lock.
	require.NoError(t, r.UnlockRoom(101, "token-b"))
	held, err := r.IsRoomLocked(101)
	require.NoError(t, err)
	assert.True(t, held)

	// Right token does.
	require.NoError(t, r.UnlockRoom(101, "token-a"))
	held, err = r.IsRoomLocked(101)
	require.NoError(t, err)
	assert.False(t, held)

	// Unlocking an unheld lock is a no-op.
	require.NoError(t, r.UnlockRoom(101, "token-a"))
}

func TestLockRoom_ConcurrentAttemptsSingleWinner(t *testing.T) {
	client, cleanup := startRedis(t)
	defer cleanup()

	r := roomredis.NewRedis(client)

	const numGoroutines = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			locked, err := r.LockRoom(500, fmt.Sprintf("token-%d", n))
			if err == nil && locked {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}(i)
	}

	wg.Wait()
	assert.Equal(t, 1, winners, "exactly one concurrent caller should take the lock")
}
