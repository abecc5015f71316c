package idempotency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTracker(t *testing.T) (*StateTracker, *miniredis.Miniredis) {
	t.Helper()

	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return New(client), s
}

func TestExec_RunsOnce(t *testing.T) {
	tr, _ := newTracker(t)
	ctx := context.Background()

	calls := 0
	fn := func(context.Context) error { calls++; return nil }

	require.NoError(t, tr.Exec(ctx, "k1", fn))
	assert.ErrorIs(t, tr.Exec(ctx, "k1", fn), ErrAlreadyCompleted)
	assert.Equal(t, 1, calls)
}

func TestExec_InProgress(t *testing.T) {
	tr, _ := newTracker(t)
	ctx := context.Background()

	state, err := tr.Acquire(ctx, "k2", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, StateNone, state)

	err = tr.Exec(ctx, "k2", func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrAlreadyInProgress)
}

func TestExec_Failed(t *testing.T) {
	tr, s := newTracker(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := tr.Exec(ctx, "k3", func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StateFailed.String(), mustGet(t, s, "idempotency:k3"))

	assert.ErrorIs(t, tr.Exec(ctx, "k3", func(context.Context) error { return nil }), ErrAlreadyFailed)

	calls := 0
	err = tr.Exec(ctx, "k3", func(context.Context) error { calls++; return nil }, WithRetryFailed())
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, StateCompleted.String(), mustGet(t, s, "idempotency:k3"))
}

func TestExec_StateExpires(t *testing.T) {
	tr, s := newTracker(t)
	ctx := context.Background()

	require.NoError(t, tr.Exec(ctx, "k4", func(context.Context) error { return nil }, WithStateTTL(time.Second)))
	s.FastForward(2 * time.Second)

	calls := 0
	require.NoError(t, tr.Exec(ctx, "k4", func(context.Context) error { calls++; return nil }))
	assert.Equal(t, 1, calls)
}

func mustGet(t *testing.T, s *miniredis.Miniredis, key string) string {
	t.Helper()

	v, err := s.Get(key)
	require.NoError(t, err)

	return v
}
