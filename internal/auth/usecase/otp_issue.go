package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/yogapass/internal/auth/entity"
	"github.com/shandysiswandi/yogapass/internal/pkg/goerror"
	"github.com/shandysiswandi/yogapass/internal/pkg/idempotency"
	"github.com/shandysiswandi/yogapass/internal/pkg/sms"
)

type IssueInput struct {
	Phone string
	// IdempotencyKey makes a retried request replay the earlier success
	// instead of sending another SMS.
	IdempotencyKey string
}

type IssueOutput struct {
	Phone       entity.PhoneNumber
	ResendAfter time.Duration
	ExpiresIn   time.Duration
	Replayed    bool
}

func (s *Usecase) Issue(ctx context.Context, in IssueInput) (*IssueOutput, error) {
	ctx, span := s.startSpan(ctx, "Issue")
	defer span.End()

	phone, err := entity.ParsePhoneNumber(in.Phone)
	if err != nil {
		slog.WarnContext(ctx, "rejected malformed phone number", "phone", in.Phone)
		return nil, err
	}

	out := &IssueOutput{
		Phone:       phone,
		ResendAfter: s.policy.ResendCooldown,
		ExpiresIn:   s.policy.CodeTTL,
	}

	key := strings.TrimSpace(in.IdempotencyKey)
	if key == "" || s.idemp == nil {
		if err := s.issue(ctx, phone); err != nil {
			return nil, err
		}
		return out, nil
	}

	err = s.idemp.Exec(ctx, "auth:otp:"+phone.String()+":"+key, func(ctx context.Context) error {
		return s.issue(ctx, phone)
	}, idempotency.WithRetryFailed(), idempotency.WithStateTTL(s.policy.IdempotencyTTL))

	var domErr *entity.Error
	var appErr *goerror.Error
	switch {
	case err == nil:
		return out, nil
	case errors.Is(err, idempotency.ErrAlreadyCompleted):
		slog.InfoContext(ctx, "replayed completed otp request", "phone", phone)
		out.Replayed = true
		return out, nil
	case errors.Is(err, idempotency.ErrAlreadyInProgress):
		slog.WarnContext(ctx, "otp request with same key still running", "phone", phone)
		return nil, &entity.Error{Kind: entity.ErrThrottled, RetryAfter: s.policy.ResendCooldown}
	case errors.As(err, &domErr):
		return nil, domErr
	case errors.As(err, &appErr):
		return nil, appErr
	default:
		slog.ErrorContext(ctx, "failed to track idempotent otp request", "phone", phone, "error", err)
		return nil, goerror.NewServer(err)
	}
}

func (s *Usecase) issue(ctx context.Context, phone entity.PhoneNumber) error {
	retryAfter, err := s.store.AcquireCooldown(ctx, phone, s.policy.ResendCooldown)
	if errors.Is(err, entity.ErrThrottled) {
		slog.WarnContext(ctx, "otp requested inside resend window", "phone", phone, "retry_after", retryAfter.String())
		return &entity.Error{Kind: entity.ErrThrottled, RetryAfter: retryAfter}
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to store acquire cooldown", "phone", phone, "error", err)
		return goerror.NewServer(err)
	}

	code, err := s.code.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate otp code", "error", err)
		return goerror.NewServer(err)
	}

	codeHash, err := s.hmac.Hash(code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash otp code", "error", err)
		return goerror.NewServer(err)
	}

	rec := entity.OtpRecord{
		Phone:      phone,
		CodeHash:   string(codeHash),
		IssuanceID: s.uuid.Generate(),
		IssuedAt:   s.clock.Now(),
	}
	if err := s.store.Put(ctx, rec); err != nil {
		slog.ErrorContext(ctx, "failed to store put otp record", "phone", phone, "error", err)
		return goerror.NewServer(err)
	}

	// A failed delivery keeps the record and the consumed cooldown.
	receipt, err := s.deliver(ctx, phone, fmt.Sprintf(s.policy.MessageTemplate, code))
	if err != nil {
		slog.ErrorContext(ctx, "failed to deliver otp code", "phone", phone, "issuance_id", rec.IssuanceID, "error", err)
		return entity.NewError(entity.ErrDeliveryFailed, err)
	}

	s.goroutine.Go(ctx, "PublishOtpIssued", func(ctx context.Context) error {
		err := s.repoMessaging.PublishOtpIssued(ctx, OtpIssuedEvent{
			Phone:      phone.String(),
			IssuanceID: rec.IssuanceID,
			IssuedAt:   rec.IssuedAt,
			ExpiresAt:  rec.IssuedAt.Add(s.policy.CodeTTL),
			RequestID:  receipt.RequestID,
		})
		if err != nil {
			slog.ErrorContext(ctx, "failed to publish otp issued", "issuance_id", rec.IssuanceID, "error", err)
		}
		return err
	})

	return nil
}

// deliver sends body once and retries only transport failures with a
// fibonacci backoff. A provider rejection is final.
func (s *Usecase) deliver(ctx context.Context, phone entity.PhoneNumber, body string) (sms.Receipt, error) {
	b := retry.WithMaxRetries(s.policy.DeliveryRetries, retry.NewFibonacci(s.policy.DeliveryBackoff))

	var receipt sms.Receipt
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		r, err := s.sms.Send(ctx, phone.National(), body)
		if err == nil {
			receipt = r
			return nil
		}

		var derr *sms.DeliveryError
		if errors.As(err, &derr) && derr.Retryable() {
			slog.WarnContext(ctx, "otp delivery attempt failed", "reason", string(derr.Reason), "error", err)
			return retry.RetryableError(err)
		}
		return err
	})

	return receipt, err
}
