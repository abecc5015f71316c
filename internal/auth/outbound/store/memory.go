package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shandysiswandi/yogapass/internal/auth/entity"
	"github.com/shandysiswandi/yogapass/internal/pkg/goerror"
)

// Memory keeps records in process. Operations on one phone are serialized
// by a per-phone mutex; different phones never contend.
type Memory struct {
	opts Options

	locks     keyedMutex
	records   sync.Map // entity.PhoneNumber -> entity.OtpRecord
	cooldowns sync.Map // entity.PhoneNumber -> time.Time
}

// NewMemory builds the in-process backend.
func NewMemory(opts Options) *Memory {
	return &Memory{opts: opts.withDefaults()}
}

func (m *Memory) Put(ctx context.Context, rec entity.OtpRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	defer m.locks.lock(rec.Phone)()

	rec.FailedAttempts = 0
	m.records.Store(rec.Phone, rec)
	return nil
}

func (m *Memory) Get(ctx context.Context, phone entity.PhoneNumber) (*entity.OtpRecord, error) {
	rec, err := m.Lookup(ctx, phone)
	if errors.Is(err, entity.ErrExpired) {
		return nil, goerror.ErrNotFound
	}
	return rec, err
}

func (m *Memory) Lookup(ctx context.Context, phone entity.PhoneNumber) (*entity.OtpRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer m.locks.lock(phone)()

	v, ok := m.records.Load(phone)
	if !ok {
		return nil, goerror.ErrNotFound
	}

	rec := v.(entity.OtpRecord)
	if rec.Expired(m.opts.Clock.Now(), m.opts.TTL) {
		m.records.Delete(phone)
		return nil, entity.ErrExpired
	}

	return &rec, nil
}

func (m *Memory) RecordFailedAttempt(ctx context.Context, phone entity.PhoneNumber, issuanceID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	defer m.locks.lock(phone)()

	v, ok := m.records.Load(phone)
	if !ok {
		return 0, goerror.ErrNotFound
	}

	rec := v.(entity.OtpRecord)
	if rec.IssuanceID != issuanceID {
		return 0, entity.ErrSuperseded
	}

	rec.FailedAttempts++
	if rec.FailedAttempts >= m.opts.MaxAttempts {
		m.records.Delete(phone)
	} else {
		m.records.Store(phone, rec)
	}

	return rec.FailedAttempts, nil
}

func (m *Memory) Remove(ctx context.Context, phone entity.PhoneNumber, issuanceID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	defer m.locks.lock(phone)()

	v, ok := m.records.Load(phone)
	if !ok || v.(entity.OtpRecord).IssuanceID != issuanceID {
		return false, nil
	}

	m.records.Delete(phone)
	return true, nil
}

func (m *Memory) AcquireCooldown(ctx context.Context, phone entity.PhoneNumber, window time.Duration) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	defer m.locks.lock(phone)()

	now := m.opts.Clock.Now()
	if v, ok := m.cooldowns.Load(phone); ok {
		if elapsed := now.Sub(v.(time.Time)); elapsed >= 0 && elapsed < window {
			return window - elapsed, entity.ErrThrottled
		}
	}

	m.cooldowns.Store(phone, now)
	return 0, nil
}

// keyedMutex hands out one mutex per phone and drops it once nobody holds
// or waits for it.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[entity.PhoneNumber]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func (k *keyedMutex) lock(key entity.PhoneNumber) (unlock func()) {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[entity.PhoneNumber]*refMutex)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &refMutex{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.Lock()

	return func() {
		l.Unlock()

		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
