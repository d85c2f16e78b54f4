package lock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func lockers(t *testing.T) map[string]Locker {
	client, _ := setupTestRedis(t)
	return map[string]Locker{
		"memory": NewMemoryLocker(),
		"redis":  NewRedisLocker(client, time.Second),
	}
}

func TestLockSerializesSameUser(t *testing.T) {
	for name, locker := range lockers(t) {
		t.Run(name, func(t *testing.T) {
			var (
				wg      sync.WaitGroup
				mu      sync.Mutex
				active  int
				maxSeen int
			)

			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					unlock, err := locker.Lock(context.Background(), 1)
					if !assert.NoError(t, err) {
						return
					}
					mu.Lock()
					active++
					if active > maxSeen {
						maxSeen = active
					}
					mu.Unlock()

					time.Sleep(2 * time.Millisecond)

					mu.Lock()
					active--
					mu.Unlock()
					unlock()
				}()
			}
			wg.Wait()

			assert.Equal(t, 1, maxSeen)
		})
	}
}

func TestLockDifferentUsersDoNotContend(t *testing.T) {
	for name, locker := range lockers(t) {
		t.Run(name, func(t *testing.T) {
			unlockA, err := locker.Lock(context.Background(), 1)
			require.NoError(t, err)
			defer unlockA()

			ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
			defer cancel()
			unlockB, err := locker.Lock(ctx, 2)
			require.NoError(t, err)
			unlockB()
		})
	}
}

func TestLockHonoursContext(t *testing.T) {
	for name, locker := range lockers(t) {
		t.Run(name, func(t *testing.T) {
			unlock, err := locker.Lock(context.Background(), 7)
			require.NoError(t, err)
			defer unlock()

			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			_, err = locker.Lock(ctx, 7)
			assert.ErrorIs(t, err, context.DeadlineExceeded)
		})
	}
}

func TestRedisUnlockKeepsForeignToken(t *testing.T) {
	client, mr := setupTestRedis(t)
	locker := NewRedisLocker(client, time.Second)

	unlock, err := locker.Lock(context.Background(), 3)
	require.NoError(t, err)

	// Simulate expiry and another holder taking over.
	mr.Del("lock:user:3")
	require.NoError(t, mr.Set("lock:user:3", "someone-else"))

	unlock()

	got, err := mr.Get("lock:user:3")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}

func TestMemoryLockerForgetsIdleUsers(t *testing.T) {
	locker := NewMemoryLocker()

	unlock, err := locker.Lock(context.Background(), 1)
	require.NoError(t, err)
	unlock()
	unlock()

	assert.Empty(t, locker.users)
}
