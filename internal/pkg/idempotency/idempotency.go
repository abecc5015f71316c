// Package idempotency records the outcome of client-keyed operations in redis
// so a retried request carrying the same key does not repeat its side effects.
package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrAlreadyInProgress = errors.New("idempotency: operation already in progress")
	ErrAlreadyCompleted  = errors.New("idempotency: operation already completed")
	ErrAlreadyFailed     = errors.New("idempotency: operation already failed")
	ErrInvalidState      = errors.New("idempotency: invalid state")
)

// State is the value stored under an idempotency key.
type State string

const (
	StateNone       State = "none"
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

func (s State) String() string { return string(s) }

// Idempotency runs fn at most once per key while the recorded state lives.
type Idempotency interface {
	Exec(ctx context.Context, key string, fn func(context.Context) error, opts ...Option) error
}

const (
	keyPrefix           = "idempotency:"
	defaultLockDuration = time.Minute
	defaultStateTTL     = time.Minute
)

type execOptions struct {
	lock        time.Duration
	ttl         time.Duration
	retryFailed bool
}

type Option func(*execOptions)

// WithLockDuration bounds how long an in-progress marker survives a crashed caller.
func WithLockDuration(d time.Duration) Option {
	return func(o *execOptions) { o.lock = d }
}

// WithStateTTL sets how long a completed or failed outcome is remembered.
func WithStateTTL(d time.Duration) Option {
	return func(o *execOptions) { o.ttl = d }
}

// WithRetryFailed lets a key whose previous run failed execute again instead
// of returning ErrAlreadyFailed.
func WithRetryFailed() Option {
	return func(o *execOptions) { o.retryFailed = true }
}

// acquire sets the key to in-progress when it is absent, or when it holds the
// failed state and retry is allowed. It returns "none" on success and the
// current state otherwise.
var acquire = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if (not cur) or (cur == ARGV[3] and ARGV[4] == '1') then
  redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[2])
  return ARGV[5]
end
return cur
`)

// StateTracker is the redis-backed Idempotency.
type StateTracker struct {
	client redis.UniversalClient
}

func New(client redis.UniversalClient) *StateTracker {
	return &StateTracker{client: client}
}

// Acquire marks key in progress for lock and reports the state it found.
func (s *StateTracker) Acquire(ctx context.Context, key string, lock time.Duration) (State, error) {
	return s.acquire(ctx, key, lock, false)
}

func (s *StateTracker) acquire(ctx context.Context, key string, lock time.Duration, retryFailed bool) (State, error) {
	retry := "0"
	if retryFailed {
		retry = "1"
	}

	res, err := acquire.Run(ctx, s.client, []string{keyPrefix + key},
		StateInProgress.String(), lock.Milliseconds(), StateFailed.String(), retry, StateNone.String()).Text()
	if err != nil {
		return "", err
	}

	switch st := State(res); st {
	case StateNone, StateInProgress, StateCompleted, StateFailed:
		return st, nil
	default:
		return "", ErrInvalidState
	}
}

func (s *StateTracker) mark(ctx context.Context, key string, st State, ttl time.Duration) error {
	return s.client.Set(ctx, keyPrefix+key, st.String(), ttl).Err()
}

// Exec runs fn unless key already holds an outcome. The error from fn is
// returned after the failure is recorded.
func (s *StateTracker) Exec(ctx context.Context, key string, fn func(context.Context) error, opts ...Option) error {
	o := execOptions{lock: defaultLockDuration, ttl: defaultStateTTL}
	for _, opt := range opts {
		opt(&o)
	}
	if o.lock <= 0 {
		o.lock = defaultLockDuration
	}
	if o.ttl <= 0 {
		o.ttl = defaultStateTTL
	}

	st, err := s.acquire(ctx, key, o.lock, o.retryFailed)
	if err != nil {
		return err
	}

	switch st {
	case StateInProgress:
		return ErrAlreadyInProgress
	case StateCompleted:
		return ErrAlreadyCompleted
	case StateFailed:
		return ErrAlreadyFailed
	}

	if err := fn(ctx); err != nil {
		return errors.Join(err, s.mark(ctx, key, StateFailed, o.ttl))
	}

	return s.mark(ctx, key, StateCompleted, o.ttl)
}
