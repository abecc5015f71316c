package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/yogapass/internal/auth/entity"
	"github.com/shandysiswandi/yogapass/internal/pkg/goerror"
)

type VerifyInput struct {
	Phone string
	Code  string `validate:"required,otp_code"`
}

// Verify consumes the live code of a phone. A match removes the record so a
// code can succeed at most once; a mismatch spends one attempt.
func (s *Usecase) Verify(ctx context.Context, in VerifyInput) (entity.PhoneNumber, error) {
	ctx, span := s.startSpan(ctx, "Verify")
	defer span.End()

	phone, err := entity.ParsePhoneNumber(in.Phone)
	if err != nil {
		slog.WarnContext(ctx, "rejected malformed phone number", "phone", in.Phone)
		return "", err
	}

	if err := s.validator.Validate(in); err != nil {
		return "", goerror.NewInvalidInput(err)
	}

	rec, err := s.store.Lookup(ctx, phone)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "no active otp for phone", "phone", phone)
		return "", entity.NewError(entity.ErrNotFound, nil)
	}
	if errors.Is(err, entity.ErrExpired) {
		slog.WarnContext(ctx, "otp expired", "phone", phone)
		return "", entity.NewError(entity.ErrExpired, nil)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to store lookup otp record", "phone", phone, "error", err)
		return "", goerror.NewServer(err)
	}

	if s.hmac.Verify(rec.CodeHash, in.Code) {
		removed, err := s.store.Remove(ctx, phone, rec.IssuanceID)
		if err != nil {
			slog.ErrorContext(ctx, "failed to store remove otp record", "phone", phone, "error", err)
			return "", goerror.NewServer(err)
		}
		if !removed {
			slog.WarnContext(ctx, "otp consumed concurrently", "phone", phone, "issuance_id", rec.IssuanceID)
			return "", entity.NewError(entity.ErrNotFound, nil)
		}
		return phone, nil
	}

	attempts, err := s.store.RecordFailedAttempt(ctx, phone, rec.IssuanceID)
	switch {
	case errors.Is(err, entity.ErrSuperseded):
		slog.WarnContext(ctx, "otp reissued during verification", "phone", phone)
		return "", &entity.Error{Kind: entity.ErrCodeMismatch, MaxAttempts: s.policy.MaxAttempts}
	case errors.Is(err, goerror.ErrNotFound):
		slog.WarnContext(ctx, "otp vanished during verification", "phone", phone)
		return "", entity.NewError(entity.ErrNotFound, nil)
	case err != nil:
		slog.ErrorContext(ctx, "failed to store record failed attempt", "phone", phone, "error", err)
		return "", goerror.NewServer(err)
	}

	if attempts >= s.policy.MaxAttempts {
		slog.WarnContext(ctx, "otp attempts exhausted", "phone", phone, "attempts", attempts)
		return "", &entity.Error{Kind: entity.ErrTooManyAttempts, Attempts: attempts, MaxAttempts: s.policy.MaxAttempts}
	}

	slog.WarnContext(ctx, "otp code mismatch", "phone", phone, "attempts", attempts)
	return "", &entity.Error{Kind: entity.ErrCodeMismatch, Attempts: attempts, MaxAttempts: s.policy.MaxAttempts}
}
