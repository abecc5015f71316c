package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/shandysiswandi/yogapass/internal/auth/entity"
	"github.com/shandysiswandi/yogapass/internal/pkg/clock"
	"github.com/shandysiswandi/yogapass/internal/pkg/config"
	"github.com/shandysiswandi/yogapass/internal/pkg/goroutine"
	"github.com/shandysiswandi/yogapass/internal/pkg/hash"
	"github.com/shandysiswandi/yogapass/internal/pkg/idempotency"
	"github.com/shandysiswandi/yogapass/internal/pkg/instrument"
	"github.com/shandysiswandi/yogapass/internal/pkg/jwt"
	"github.com/shandysiswandi/yogapass/internal/pkg/otp"
	"github.com/shandysiswandi/yogapass/internal/pkg/sms"
	"github.com/shandysiswandi/yogapass/internal/pkg/uid"
	"github.com/shandysiswandi/yogapass/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

// DefaultMessageTemplate is the SMS body; %s is replaced by the code.
const DefaultMessageTemplate = "[YogaPass] 인증번호 [%s]를 입력해주세요."

type OtpIssuedEvent struct {
	Phone      string
	IssuanceID string
	IssuedAt   time.Time
	ExpiresAt  time.Time
	RequestID  string
}

type SessionLinkedEvent struct {
	IdentityID    string
	ProfileID     int64
	Phone         string
	ProfileLinked bool
	LinkedAt      time.Time
}

type repoMessaging interface {
	PublishOtpIssued(ctx context.Context, msg OtpIssuedEvent) error
	PublishSessionLinked(ctx context.Context, msg SessionLinkedEvent) error
}

type repoDB interface {
	FindProfileByPhone(ctx context.Context, phone entity.PhoneNumber) (*entity.Profile, error)
	GetProfileByID(ctx context.Context, id int64) (*entity.Profile, error)
	GetRefreshToken(ctx context.Context, tokenHash string) (*entity.RefreshTokenInfo, error)

	CreateAnonymousSession(ctx context.Context, in entity.AnonymousSession) error
	Associate(ctx context.Context, identityID string, profileID int64, at time.Time) error
	RotateRefreshToken(ctx context.Context, in entity.RotateRefreshToken) error
	RevokeRefreshToken(ctx context.Context, tokenHash, identityID string, at time.Time) error
	PurgeRefreshTokens(ctx context.Context, cutoff time.Time) (int64, error)
}

type otpStore interface {
	Put(ctx context.Context, rec entity.OtpRecord) error
	Lookup(ctx context.Context, phone entity.PhoneNumber) (*entity.OtpRecord, error)
	RecordFailedAttempt(ctx context.Context, phone entity.PhoneNumber, issuanceID string) (int, error)
	Remove(ctx context.Context, phone entity.PhoneNumber, issuanceID string) (bool, error)
	AcquireCooldown(ctx context.Context, phone entity.PhoneNumber, window time.Duration) (time.Duration, error)
}

type smsSender interface {
	Send(ctx context.Context, to, content string) (sms.Receipt, error)
}

// Policy holds the tunables of the OTP and session lifecycle.
type Policy struct {
	CodeTTL         time.Duration
	MaxAttempts     int
	ResendCooldown  time.Duration
	MessageTemplate string
	DeliveryRetries uint64
	DeliveryBackoff time.Duration
	IdempotencyTTL  time.Duration
	RefreshTTL      time.Duration
	PurgeRetention  time.Duration
}

// PolicyFromConfig reads the auth.* keys, falling back to the defaults of
// the OTP lifecycle for anything unset.
func PolicyFromConfig(cfg config.Config) Policy {
	p := Policy{
		CodeTTL:         cfg.GetSecond("auth.otp.code_ttl_seconds"),
		MaxAttempts:     cfg.GetInt("auth.otp.max_attempts"),
		ResendCooldown:  cfg.GetSecond("auth.otp.resend_cooldown_seconds"),
		MessageTemplate: strings.TrimSpace(cfg.GetString("auth.otp.message_template")),
		DeliveryRetries: cfg.GetUint64("auth.otp.delivery.max_retries"),
		DeliveryBackoff: time.Duration(cfg.GetInt64("auth.otp.delivery.backoff_ms")) * time.Millisecond,
		IdempotencyTTL:  cfg.GetSecond("auth.otp.idempotency_ttl_seconds"),
		RefreshTTL:      cfg.GetDay("auth.session.refresh_ttl_days"),
		PurgeRetention:  cfg.GetDay("auth.session.purge_retention_days"),
	}

	return p.withDefaults()
}

func (p Policy) withDefaults() Policy {
	if p.CodeTTL <= 0 {
		p.CodeTTL = entity.DefaultCodeTTL
	}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = entity.DefaultMaxAttempts
	}
	if p.ResendCooldown <= 0 {
		p.ResendCooldown = entity.DefaultResendCooldown
	}
	if p.MessageTemplate == "" || !strings.Contains(p.MessageTemplate, "%s") {
		p.MessageTemplate = DefaultMessageTemplate
	}
	if p.DeliveryBackoff <= 0 {
		p.DeliveryBackoff = 200 * time.Millisecond
	}
	if p.IdempotencyTTL <= 0 {
		p.IdempotencyTTL = p.CodeTTL
	}
	if p.RefreshTTL <= 0 {
		p.RefreshTTL = 30 * 24 * time.Hour
	}
	if p.PurgeRetention <= 0 {
		p.PurgeRetention = 7 * 24 * time.Hour
	}
	return p
}

type Usecase struct {
	repoDB        repoDB
	repoMessaging repoMessaging
	store         otpStore
	sms           smsSender
	idemp         idempotency.Idempotency
	validator     validator.Validator
	policy        Policy
	hmac          hash.Hash
	code          otp.Generator
	uid           uid.NumberID
	uuid          uid.StringID
	token         uid.StringID
	clock         clock.Clocker
	jwt           jwt.JWT
	ins           instrument.Instrumentation
	goroutine     *goroutine.Manager
}

type Dependency struct {
	RepoDB        repoDB
	RepoMessaging repoMessaging
	Store         otpStore
	SMS           smsSender
	// Idempotency is optional. Without it Idempotency-Key headers are ignored.
	Idempotency idempotency.Idempotency
	Validator   validator.Validator
	Policy      Policy
	HMAC        hash.Hash
	Code        otp.Generator
	UID         uid.NumberID
	UUID        uid.StringID
	Token       uid.StringID
	Clock       clock.Clocker
	JWT         jwt.JWT
	Instrument  instrument.Instrumentation
	Goroutine   *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:        dep.RepoDB,
		repoMessaging: dep.RepoMessaging,
		store:         dep.Store,
		sms:           dep.SMS,
		idemp:         dep.Idempotency,
		validator:     dep.Validator,
		policy:        dep.Policy.withDefaults(),
		hmac:          dep.HMAC,
		code:          dep.Code,
		uid:           dep.UID,
		uuid:          dep.UUID,
		token:         dep.Token,
		clock:         dep.Clock,
		jwt:           dep.JWT,
		ins:           dep.Instrument,
		goroutine:     dep.Goroutine,
	}
}

// Policy returns the effective lifecycle settings.
func (s *Usecase) Policy() Policy {
	return s.policy
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("auth.usecase").Start(ctx, name)
}
