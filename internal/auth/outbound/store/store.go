// Package store keeps the live OTP record and the resend cooldown per phone.
//
// Every mutation is linearizable per phone: the redis backend relies on
// MULTI and single-key Lua scripts, the memory backend on a per-phone mutex.
// Expiry is always judged against the application clock; redis key TTLs are
// only a backstop so abandoned records do not accumulate.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/yogapass/internal/auth/entity"
	"github.com/shandysiswandi/yogapass/internal/pkg/clock"
	"github.com/shandysiswandi/yogapass/internal/pkg/instrument"
)

const (
	// DriverRedis selects the redis backend.
	DriverRedis = "redis"
	// DriverMemory selects the in-process backend (single instance only).
	DriverMemory = "memory"
)

// ErrUnknownDriver indicates an unsupported store driver.
var ErrUnknownDriver = errors.New("store: unknown driver")

// Store is implemented by every backend.
type Store interface {
	// Put replaces the record for rec.Phone and resets its attempts.
	Put(ctx context.Context, rec entity.OtpRecord) error
	// Get returns the live record or goerror.ErrNotFound. An expired record
	// is deleted and reported as not found.
	Get(ctx context.Context, phone entity.PhoneNumber) (*entity.OtpRecord, error)
	// Lookup is Get that reports an expired record as entity.ErrExpired.
	Lookup(ctx context.Context, phone entity.PhoneNumber) (*entity.OtpRecord, error)
	// RecordFailedAttempt increments the attempt counter of issuanceID and
	// returns the new count, deleting the record once the cap is reached.
	RecordFailedAttempt(ctx context.Context, phone entity.PhoneNumber, issuanceID string) (int, error)
	// Remove deletes the record only if it still belongs to issuanceID.
	Remove(ctx context.Context, phone entity.PhoneNumber, issuanceID string) (bool, error)
	// AcquireCooldown starts a resend window for phone. Inside an open
	// window it returns entity.ErrThrottled and the remaining wait.
	AcquireCooldown(ctx context.Context, phone entity.PhoneNumber, window time.Duration) (time.Duration, error)
}

// Options configures a backend.
type Options struct {
	TTL         time.Duration
	MaxAttempts int
	Clock       clock.Clocker
	// Redis is required by DriverRedis.
	Redis      redis.UniversalClient
	Instrument instrument.Instrumentation
}

func (o Options) withDefaults() Options {
	if o.TTL <= 0 {
		o.TTL = entity.DefaultCodeTTL
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = entity.DefaultMaxAttempts
	}
	if o.Clock == nil {
		o.Clock = clock.New()
	}
	if o.Instrument == nil {
		o.Instrument = instrument.NewNoop()
	}
	return o
}

// New builds the backend named by driver.
func New(driver string, opts Options) (Store, error) {
	switch strings.TrimSpace(driver) {
	case DriverRedis:
		if opts.Redis == nil {
			return nil, fmt.Errorf("store: redis driver needs a redis client")
		}
		return NewRedis(opts.Redis, opts), nil
	case DriverMemory:
		return NewMemory(opts), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
}
