//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/yogapass/internal/auth/entity"
	"github.com/shandysiswandi/yogapass/internal/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func TestRedis_RealServer(t *testing.T) {
	ctx := context.Background()

	ctr, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	uri, err := ctr.ConnectionString(ctx)
	require.NoError(t, err)
	opt, err := redis.ParseURL(uri)
	require.NoError(t, err)
	rdb := redis.NewClient(opt)
	t.Cleanup(func() { _ = rdb.Close() })

	clk := clock.NewManual(time.Now())
	s := NewRedis(rdb, Options{Clock: clk})

	require.NoError(t, s.Put(ctx, entity.OtpRecord{Phone: phone, CodeHash: "h", IssuanceID: "a", IssuedAt: clk.Now()}))

	n, err := s.RecordFailedAttempt(ctx, phone, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	removed, err := s.Remove(ctx, phone, "a")
	require.NoError(t, err)
	assert.True(t, removed)

	_, err = s.AcquireCooldown(ctx, phone, time.Minute)
	require.NoError(t, err)
	_, err = s.AcquireCooldown(ctx, phone, time.Minute)
	assert.ErrorIs(t, err, entity.ErrThrottled)

	ttl, err := rdb.PTTL(ctx, cooldownKey(phone)).Result()
	require.NoError(t, err)
	assert.LessOrEqual(t, ttl, time.Minute)
}
