package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/yogapass/internal/auth/entity"
	"github.com/shandysiswandi/yogapass/internal/pkg/goerror"
	"github.com/shandysiswandi/yogapass/internal/pkg/jwt"
)

type ProfileOutput struct {
	Profile    entity.Profile
	IdentityID string
	// Linked reports whether the profile currently points at the caller's
	// identity. It turns false once a newer sign-in took the link over.
	Linked bool
}

func (s *Usecase) Profile(ctx context.Context) (*ProfileOutput, error) {
	ctx, span := s.startSpan(ctx, "Profile")
	defer span.End()

	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("authentication required", goerror.CodeUnauthorized)
	}

	profile, err := s.repoDB.GetProfileByID(ctx, clm.ProfileID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "profile of token not found", "profile_id", clm.ProfileID)
		return nil, goerror.NewBusiness("profile not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get profile by id", "profile_id", clm.ProfileID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &ProfileOutput{
		Profile:    *profile,
		IdentityID: clm.IdentityID(),
		Linked:     profile.IdentityID != nil && *profile.IdentityID == clm.IdentityID(),
	}, nil
}
