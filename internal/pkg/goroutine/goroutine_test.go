package goroutine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

type ctxKey struct{}

func TestManager_RunsDetachedAndCollectsErrors(t *testing.T) {
	m := NewManager(4)

	parent, cancel := context.WithCancel(context.WithValue(context.Background(), ctxKey{}, "cid-1"))
	cancel()

	var sawValue atomic.Bool
	assert.True(t, m.Go(parent, "value", func(ctx context.Context) error {
		sawValue.Store(ctx.Value(ctxKey{}) == "cid-1" && ctx.Err() == nil)
		return nil
	}))

	boom := errors.New("boom")
	assert.True(t, m.Go(context.Background(), "fail", func(context.Context) error { return boom }))
	assert.True(t, m.Go(context.Background(), "panic", func(context.Context) error { panic("oops") }))

	err := m.Wait()
	assert.ErrorIs(t, err, boom)
	assert.True(t, sawValue.Load())

	assert.False(t, m.Go(context.Background(), "late", func(context.Context) error { return nil }))
}

func TestManager_Limit(t *testing.T) {
	m := NewManager(1)
	release := make(chan struct{})

	assert.True(t, m.Go(context.Background(), "block", func(context.Context) error { <-release; return nil }))
	assert.False(t, m.Go(context.Background(), "rejected", func(context.Context) error { return nil }))

	close(release)
	assert.NoError(t, m.Wait())
}

func TestManager_Nil(t *testing.T) {
	var m *Manager
	assert.False(t, m.Go(context.Background(), "nil", func(context.Context) error { return nil }))
	assert.NoError(t, m.Wait())
}
