package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/shandysiswandi/yogapass/internal/auth/inbound"
	"github.com/shandysiswandi/yogapass/internal/auth/outbound/db"
	"github.com/shandysiswandi/yogapass/internal/auth/outbound/mq"
	"github.com/shandysiswandi/yogapass/internal/auth/outbound/store"
	"github.com/shandysiswandi/yogapass/internal/auth/usecase"
	"github.com/shandysiswandi/yogapass/internal/pkg/clock"
	"github.com/shandysiswandi/yogapass/internal/pkg/config"
	"github.com/shandysiswandi/yogapass/internal/pkg/goroutine"
	"github.com/shandysiswandi/yogapass/internal/pkg/hash"
	"github.com/shandysiswandi/yogapass/internal/pkg/idempotency"
	"github.com/shandysiswandi/yogapass/internal/pkg/instrument"
	"github.com/shandysiswandi/yogapass/internal/pkg/jwt"
	"github.com/shandysiswandi/yogapass/internal/pkg/messaging"
	"github.com/shandysiswandi/yogapass/internal/pkg/otp"
	"github.com/shandysiswandi/yogapass/internal/pkg/router"
	"github.com/shandysiswandi/yogapass/internal/pkg/sms"
	"github.com/shandysiswandi/yogapass/internal/pkg/uid"
	"github.com/shandysiswandi/yogapass/internal/pkg/validator"
)

const defaultPurgeSchedule = "@hourly"

type Dependency struct {
	DBConn *pgxpool.Pool `validate:"required"`
	// CacheConn is required when auth.store.driver is redis.
	CacheConn  redis.UniversalClient
	Goroutine  *goroutine.Manager         `validate:"required"`
	Cron       *cron.Cron                 `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Messaging  messaging.Publisher        `validate:"required"`
	SMS        sms.Sender                 `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	Token      uid.StringID               `validate:"required"`
	HMAC       hash.Hash                  `validate:"required"`
	Code       otp.Generator              `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	JWT        jwt.JWT                    `validate:"required"`
	// Idempotency enables Idempotency-Key handling on code requests.
	Idempotency idempotency.Idempotency
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	policy := usecase.PolicyFromConfig(dep.Config)

	otpStore, err := store.New(dep.Config.GetString("auth.store.driver"), store.Options{
		TTL:         policy.CodeTTL,
		MaxAttempts: policy.MaxAttempts,
		Clock:       dep.Clock,
		Redis:       dep.CacheConn,
		Instrument:  dep.Instrument,
	})
	if err != nil {
		return err
	}

	uc := usecase.New(usecase.Dependency{
		RepoDB:        db.NewDB(dep.DBConn, dep.Instrument),
		RepoMessaging: mq.NewMessaging(dep.Messaging, dep.Instrument),
		Store:         otpStore,
		SMS:           dep.SMS,
		Idempotency:   dep.Idempotency,
		Validator:     dep.Validator,
		Policy:        policy,
		HMAC:          dep.HMAC,
		Code:          dep.Code,
		UID:           dep.UID,
		UUID:          dep.UUID,
		Token:         dep.Token,
		Clock:         dep.Clock,
		JWT:           dep.JWT,
		Instrument:    dep.Instrument,
		Goroutine:     dep.Goroutine,
	})

	tr, err := inbound.NewTranslator()
	if err != nil {
		return err
	}

	var otpLimit router.Middleware
	if rate := strings.TrimSpace(dep.Config.GetString("auth.otp.rate_limit")); rate != "" {
		otpLimit, err = router.RateLimit("otp_request", rate)
		if err != nil {
			return fmt.Errorf("auth: invalid auth.otp.rate_limit %q: %w", rate, err)
		}
	}

	inbound.RegisterHTTPEndpoint(dep.Router, uc, tr, otpLimit)

	schedule := strings.TrimSpace(dep.Config.GetString("auth.session.purge_cron"))
	if schedule == "" {
		schedule = defaultPurgeSchedule
	}
	if _, err := dep.Cron.AddFunc(schedule, func() {
		if _, err := uc.PurgeSessions(context.Background()); err != nil {
			slog.Error("scheduled refresh token purge failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("auth: invalid auth.session.purge_cron %q: %w", schedule, err)
	}

	return nil
}
