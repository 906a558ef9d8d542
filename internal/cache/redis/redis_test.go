package redis

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JMURv/session-keeper/internal/cache"
	"github.com/JMURv/session-keeper/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

type item struct {
	Name string `json:"name"`
}

func setupRedis(t *testing.T) *Redis {
	t.Helper()
	if testing.Short() {
		t.Skip("redis container is skipped in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	redisC, err := testcontainers.GenericContainer(
		ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "redis:alpine",
				ExposedPorts: []string{"6379/tcp"},
				WaitingFor:   wait.ForLog("Ready to accept connections"),
			},
			Started: true,
		},
	)
	testcontainers.CleanupContainer(t, redisC)
	require.NoError(t, err)

	host, err := redisC.Host(ctx)
	require.NoError(t, err)
	port, err := redisC.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)

	conf := config.Config{}
	conf.Redis.Addr = fmt.Sprintf("%s:%s", host, port.Port())
	conf.Redis.Timeout = 2 * time.Second

	r := New(conf)
	t.Cleanup(
		func() {
			_ = r.Close()
		},
	)
	return r
}

func TestRedis(t *testing.T) {
	r := setupRedis(t)
	ctx := context.Background()

	t.Run(
		"SetGetDelete", func(t *testing.T) {
			r.Set(ctx, time.Minute, "user:1", &item{Name: "ann"})

			got := &item{}
			require.NoError(t, r.GetToStruct(ctx, "user:1", got))
			assert.Equal(t, "ann", got.Name)

			r.Delete(ctx, "user:1")
			assert.ErrorIs(t, r.GetToStruct(ctx, "user:1", got), cache.ErrNotFoundInCache)
		},
	)

	t.Run(
		"Expiry", func(t *testing.T) {
			r.Set(ctx, 100*time.Millisecond, "short", &item{Name: "x"})
			time.Sleep(300 * time.Millisecond)
			assert.ErrorIs(t, r.GetToStruct(ctx, "short", &item{}), cache.ErrNotFoundInCache)
		},
	)

	t.Run(
		"Reserve", func(t *testing.T) {
			ok, err := r.Reserve(ctx, "reset-jti:a", time.Minute)
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = r.Reserve(ctx, "reset-jti:a", time.Minute)
			require.NoError(t, err)
			assert.False(t, ok)

			r.Delete(ctx, "reset-jti:a")
			ok, err = r.Reserve(ctx, "reset-jti:a", time.Minute)
			require.NoError(t, err)
			assert.True(t, ok)
		},
	)

	t.Run(
		"ReserveExpires", func(t *testing.T) {
			ok, err := r.Reserve(ctx, "reset-jti:b", 100*time.Millisecond)
			require.NoError(t, err)
			require.True(t, ok)

			time.Sleep(300 * time.Millisecond)
			ok, err = r.Reserve(ctx, "reset-jti:b", time.Minute)
			require.NoError(t, err)
			assert.True(t, ok)
		},
	)

	t.Run(
		"ReserveSingleWinner", func(t *testing.T) {
			var (
				wg   sync.WaitGroup
				wins atomic.Int32
			)
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if ok, err := r.Reserve(ctx, "reset-jti:c", time.Minute); err == nil && ok {
						wins.Add(1)
					}
				}()
			}
			wg.Wait()
			assert.EqualValues(t, 1, wins.Load())
		},
	)

	t.Run(
		"InvalidateKeysByPattern", func(t *testing.T) {
			for i := 0; i < 150; i++ {
				r.Set(ctx, time.Minute, fmt.Sprintf("user:%d", i), &item{Name: "n"})
			}
			r.Set(ctx, time.Minute, "session:1", &item{Name: "keep"})

			r.InvalidateKeysByPattern(ctx, "user:*")

			assert.ErrorIs(t, r.GetToStruct(ctx, "user:0", &item{}), cache.ErrNotFoundInCache)
			assert.ErrorIs(t, r.GetToStruct(ctx, "user:149", &item{}), cache.ErrNotFoundInCache)

			got := &item{}
			require.NoError(t, r.GetToStruct(ctx, "session:1", got))
			assert.Equal(t, "keep", got.Name)
		},
	)
}
