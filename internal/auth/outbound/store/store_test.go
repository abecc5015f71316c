package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/yogapass/internal/auth/entity"
	"github.com/shandysiswandi/yogapass/internal/pkg/clock"
	"github.com/shandysiswandi/yogapass/internal/pkg/goerror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const phone entity.PhoneNumber = "821012345678"

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type backend struct {
	name  string
	store Store
	clock *clock.Manual
	mr    *miniredis.Miniredis
}

func backends(t *testing.T) []backend {
	t.Helper()

	memClock := clock.NewManual(t0)
	mem := NewMemory(Options{Clock: memClock})

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	redisClock := clock.NewManual(t0)
	rs, err := New(DriverRedis, Options{Redis: rdb, Clock: redisClock})
	require.NoError(t, err)

	return []backend{
		{name: "memory", store: mem, clock: memClock},
		{name: "redis", store: rs, clock: redisClock, mr: mr},
	}
}

func record(id string, at time.Time) entity.OtpRecord {
	return entity.OtpRecord{Phone: phone, CodeHash: "hash-" + id, IssuanceID: id, IssuedAt: at}
}

func TestStore_PutGet(t *testing.T) {
	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()

			_, err := b.store.Get(ctx, phone)
			require.ErrorIs(t, err, goerror.ErrNotFound)

			require.NoError(t, b.store.Put(ctx, record("a", t0)))

			got, err := b.store.Get(ctx, phone)
			require.NoError(t, err)
			assert.Equal(t, "hash-a", got.CodeHash)
			assert.Equal(t, "a", got.IssuanceID)
			assert.Equal(t, 0, got.FailedAttempts)
			assert.True(t, t0.Equal(got.IssuedAt))
		})
	}
}

func TestStore_PutOverwritesAndResetsAttempts(t *testing.T) {
	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, b.store.Put(ctx, record("a", t0)))
			n, err := b.store.RecordFailedAttempt(ctx, phone, "a")
			require.NoError(t, err)
			assert.Equal(t, 1, n)

			require.NoError(t, b.store.Put(ctx, record("b", t0.Add(time.Minute))))

			got, err := b.store.Get(ctx, phone)
			require.NoError(t, err)
			assert.Equal(t, "b", got.IssuanceID)
			assert.Equal(t, 0, got.FailedAttempts)

			_, err = b.store.RecordFailedAttempt(ctx, phone, "a")
			assert.ErrorIs(t, err, entity.ErrSuperseded)

			removed, err := b.store.Remove(ctx, phone, "a")
			require.NoError(t, err)
			assert.False(t, removed)
		})
	}
}

func TestStore_Expiry(t *testing.T) {
	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, b.store.Put(ctx, record("a", t0)))

			b.clock.Set(t0.Add(300 * time.Second))
			_, err := b.store.Lookup(ctx, phone)
			require.NoError(t, err, "exactly at the window is still valid")

			b.clock.Set(t0.Add(301 * time.Second))
			_, err = b.store.Lookup(ctx, phone)
			require.ErrorIs(t, err, entity.ErrExpired)

			_, err = b.store.Lookup(ctx, phone)
			assert.ErrorIs(t, err, goerror.ErrNotFound, "expired record is evicted on observation")
		})
	}
}

func TestStore_GetTreatsExpiredAsAbsent(t *testing.T) {
	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, b.store.Put(ctx, record("a", t0)))
			_, err := b.store.RecordFailedAttempt(ctx, phone, "a")
			require.NoError(t, err)

			b.clock.Set(t0.Add(10 * time.Minute))
			_, err = b.store.Get(ctx, phone)
			assert.ErrorIs(t, err, goerror.ErrNotFound)
		})
	}
}

func TestStore_AttemptCapDeletes(t *testing.T) {
	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, b.store.Put(ctx, record("a", t0)))

			for want := 1; want <= 3; want++ {
				n, err := b.store.RecordFailedAttempt(ctx, phone, "a")
				require.NoError(t, err)
				assert.Equal(t, want, n)
			}

			_, err := b.store.Get(ctx, phone)
			assert.ErrorIs(t, err, goerror.ErrNotFound)

			_, err = b.store.RecordFailedAttempt(ctx, phone, "a")
			assert.ErrorIs(t, err, goerror.ErrNotFound)
		})
	}
}

func TestStore_RemoveIsCompareAndDelete(t *testing.T) {
	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, b.store.Put(ctx, record("a", t0)))

			removed, err := b.store.Remove(ctx, phone, "a")
			require.NoError(t, err)
			assert.True(t, removed)

			removed, err = b.store.Remove(ctx, phone, "a")
			require.NoError(t, err)
			assert.False(t, removed)
		})
	}
}

func TestStore_Cooldown(t *testing.T) {
	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			window := 60 * time.Second

			_, err := b.store.AcquireCooldown(ctx, phone, window)
			require.NoError(t, err)

			b.clock.Set(t0.Add(15 * time.Second))
			wait, err := b.store.AcquireCooldown(ctx, phone, window)
			require.ErrorIs(t, err, entity.ErrThrottled)
			assert.Equal(t, 45*time.Second, wait)

			_, err = b.store.AcquireCooldown(ctx, "821099998888", window)
			require.NoError(t, err, "other phones are independent")

			b.clock.Set(t0.Add(window))
			_, err = b.store.AcquireCooldown(ctx, phone, window)
			require.NoError(t, err)

			_, err = b.store.AcquireCooldown(ctx, phone, window)
			assert.ErrorIs(t, err, entity.ErrThrottled, "a new window started")
		})
	}
}

func TestRedis_BackstopTTL(t *testing.T) {
	for _, b := range backends(t) {
		if b.mr == nil {
			continue
		}
		require.NoError(t, b.store.Put(context.Background(), record("a", t0)))
		assert.Equal(t, 2*entity.DefaultCodeTTL, b.mr.TTL(recordKey(phone)))

		b.mr.FastForward(11 * time.Minute)
		assert.False(t, b.mr.Exists(recordKey(phone)))
	}
}

func TestStore_ConcurrentMismatchesNeverExceedCap(t *testing.T) {
	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, b.store.Put(ctx, record("a", t0)))

			var (
				wg      sync.WaitGroup
				mu      sync.Mutex
				counts  []int
				missing int
			)
			for range 20 {
				wg.Go(func() {
					n, err := b.store.RecordFailedAttempt(ctx, phone, "a")
					mu.Lock()
					defer mu.Unlock()
					if err != nil {
						assert.ErrorIs(t, err, goerror.ErrNotFound)
						missing++
						return
					}
					counts = append(counts, n)
				})
			}
			wg.Wait()

			assert.ElementsMatch(t, []int{1, 2, 3}, counts)
			assert.Equal(t, 17, missing)
		})
	}
}

func TestNew_UnknownDriver(t *testing.T) {
	_, err := New("etcd", Options{})
	assert.ErrorIs(t, err, ErrUnknownDriver)

	_, err = New(DriverRedis, Options{})
	assert.Error(t, err)

	s, err := New(DriverMemory, Options{})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)
}
