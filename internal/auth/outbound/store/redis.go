package store

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/yogapass/internal/auth/entity"
	"github.com/shandysiswandi/yogapass/internal/pkg/goerror"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	fieldCodeHash   = "code_hash"
	fieldIssuanceID = "issuance_id"
	fieldIssuedAt   = "issued_at"
	fieldAttempts   = "attempts"
)

// Returns the new attempt count, -1 when the record belongs to another
// issuance and -2 when there is no record.
var recordFailedAttemptScript = redis.NewScript(`
local id = redis.call('HGET', KEYS[1], 'issuance_id')
if not id then
	return -2
end
if id ~= ARGV[1] then
	return -1
end
local n = redis.call('HINCRBY', KEYS[1], 'attempts', 1)
if n >= tonumber(ARGV[2]) then
	redis.call('DEL', KEYS[1])
end
return n
`)

var removeScript = redis.NewScript(`
if redis.call('HGET', KEYS[1], 'issuance_id') == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

// ARGV[1] is now in unix ms, ARGV[2] the window in ms. Returns the remaining
// wait in ms, or 0 when the window was started.
var cooldownScript = redis.NewScript(`
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local last = redis.call('GET', KEYS[1])
if last then
	local elapsed = now - tonumber(last)
	if elapsed >= 0 and elapsed < window then
		return window - elapsed
	end
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', window)
return 0
`)

// Redis stores each record as a hash under auth:otp:{phone}.
type Redis struct {
	client redis.UniversalClient
	opts   Options
}

// NewRedis builds the redis backend.
func NewRedis(client redis.UniversalClient, opts Options) *Redis {
	return &Redis{client: client, opts: opts.withDefaults()}
}

func recordKey(phone entity.PhoneNumber) string   { return "auth:otp:" + phone.String() }
func cooldownKey(phone entity.PhoneNumber) string { return "auth:otp:cooldown:" + phone.String() }

func (s *Redis) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.opts.Instrument.Tracer("auth.outbound.store").Start(ctx, name)
}

func (s *Redis) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) &&
		!errors.Is(err, entity.ErrExpired) && !errors.Is(err, entity.ErrThrottled) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *Redis) Put(ctx context.Context, rec entity.OtpRecord) (err error) {
	ctx, span := s.startSpan(ctx, "Put")
	defer func() { s.endSpan(span, err) }()

	key := recordKey(rec.Phone)
	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, key)
		p.HSet(ctx, key,
			fieldCodeHash, rec.CodeHash,
			fieldIssuanceID, rec.IssuanceID,
			fieldIssuedAt, rec.IssuedAt.UnixMilli(),
			fieldAttempts, 0,
		)
		p.PExpire(ctx, key, 2*s.opts.TTL)
		return nil
	})

	return err
}

func (s *Redis) Get(ctx context.Context, phone entity.PhoneNumber) (*entity.OtpRecord, error) {
	rec, err := s.Lookup(ctx, phone)
	if errors.Is(err, entity.ErrExpired) {
		return nil, goerror.ErrNotFound
	}
	return rec, err
}

func (s *Redis) Lookup(ctx context.Context, phone entity.PhoneNumber) (_ *entity.OtpRecord, err error) {
	ctx, span := s.startSpan(ctx, "Lookup")
	defer func() { s.endSpan(span, err) }()

	fields, err := s.client.HGetAll(ctx, recordKey(phone)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, goerror.ErrNotFound
	}

	rec, err := decodeRecord(phone, fields)
	if err != nil {
		return nil, err
	}

	if rec.Expired(s.opts.Clock.Now(), s.opts.TTL) {
		if _, err := removeScript.Run(ctx, s.client, []string{recordKey(phone)}, rec.IssuanceID).Result(); err != nil {
			return nil, err
		}
		return nil, entity.ErrExpired
	}

	return rec, nil
}

func decodeRecord(phone entity.PhoneNumber, fields map[string]string) (*entity.OtpRecord, error) {
	issuedAt, err := strconv.ParseInt(fields[fieldIssuedAt], 10, 64)
	if err != nil {
		return nil, err
	}
	attempts, err := strconv.Atoi(fields[fieldAttempts])
	if err != nil {
		return nil, err
	}

	return &entity.OtpRecord{
		Phone:          phone,
		CodeHash:       fields[fieldCodeHash],
		IssuanceID:     fields[fieldIssuanceID],
		IssuedAt:       time.UnixMilli(issuedAt),
		FailedAttempts: attempts,
	}, nil
}

func (s *Redis) RecordFailedAttempt(ctx context.Context, phone entity.PhoneNumber, issuanceID string) (_ int, err error) {
	ctx, span := s.startSpan(ctx, "RecordFailedAttempt")
	defer func() { s.endSpan(span, err) }()

	n, err := recordFailedAttemptScript.Run(ctx, s.client,
		[]string{recordKey(phone)}, issuanceID, s.opts.MaxAttempts).Int()
	if err != nil {
		return 0, err
	}

	switch n {
	case -2:
		return 0, goerror.ErrNotFound
	case -1:
		return 0, entity.ErrSuperseded
	default:
		return n, nil
	}
}

func (s *Redis) Remove(ctx context.Context, phone entity.PhoneNumber, issuanceID string) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "Remove")
	defer func() { s.endSpan(span, err) }()

	n, err := removeScript.Run(ctx, s.client, []string{recordKey(phone)}, issuanceID).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *Redis) AcquireCooldown(ctx context.Context, phone entity.PhoneNumber, window time.Duration) (_ time.Duration, err error) {
	ctx, span := s.startSpan(ctx, "AcquireCooldown")
	defer func() { s.endSpan(span, err) }()

	remaining, err := cooldownScript.Run(ctx, s.client, []string{cooldownKey(phone)},
		s.opts.Clock.Now().UnixMilli(), window.Milliseconds()).Int64()
	if err != nil {
		return 0, err
	}
	if remaining > 0 {
		return time.Duration(remaining) * time.Millisecond, entity.ErrThrottled
	}
	return 0, nil
}
