package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/yogapass/internal/auth/entity"
	"github.com/shandysiswandi/yogapass/internal/pkg/goerror"
)

type RefreshInput struct {
	RefreshToken string `validate:"required"`
}

func (s *Usecase) RefreshSession(ctx context.Context, in RefreshInput) (*entity.Session, error) {
	ctx, span := s.startSpan(ctx, "RefreshSession")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	oldHash, err := s.hmac.Hash(in.RefreshToken)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash old refresh token", "error", err)
		return nil, goerror.NewServer(err)
	}

	rt, err := s.repoDB.GetRefreshToken(ctx, string(oldHash))
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "refresh token not found")
		return nil, errInvalidRefreshToken()
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get refresh token", "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()
	if rt.RevokedAt != nil {
		slog.WarnContext(ctx, "refresh token is revoked", "refresh_token_id", rt.ID)
		return nil, errInvalidRefreshToken()
	}
	if now.After(rt.ExpiresAt) {
		slog.WarnContext(ctx, "refresh token is expired", "refresh_token_id", rt.ID)
		return nil, errInvalidRefreshToken()
	}

	sess, next, err := s.mintSession(ctx, rt.IdentityID, rt.ProfileID, rt.Phone, now)
	if err != nil {
		return nil, err
	}

	err = s.repoDB.RotateRefreshToken(ctx, entity.RotateRefreshToken{OldID: rt.ID, NewToken: next})
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "refresh token already rotated or revoked", "refresh_token_id", rt.ID)
		return nil, errInvalidRefreshToken()
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo rotate refresh token", "error", err)
		return nil, goerror.NewServer(err)
	}

	return sess, nil
}

func errInvalidRefreshToken() error {
	return goerror.NewBusiness("invalid or expired refresh token", goerror.CodeUnauthorized)
}
