package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shandysiswandi/yogapass/internal/auth/entity"
	"github.com/shandysiswandi/yogapass/internal/pkg/goerror"
	"github.com/shandysiswandi/yogapass/internal/pkg/jwt"
	"github.com/shandysiswandi/yogapass/internal/pkg/valueobject"
)

// Link opens a session for a phone whose code was just verified. It mints a
// fresh anonymous identity and re-associates the member profile with it.
// A failed association is logged and reported through ProfileLinked.
func (s *Usecase) Link(ctx context.Context, phone entity.PhoneNumber, meta entity.ClientMeta) (*entity.Session, error) {
	ctx, span := s.startSpan(ctx, "Link")
	defer span.End()

	profile, err := s.repoDB.FindProfileByPhone(ctx, phone)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "verified phone has no profile", "phone", phone)
		return nil, entity.NewError(entity.ErrUnregisteredPhone, nil)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo find profile by phone", "phone", phone, "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()
	identityID := s.uuid.Generate()

	sess, refresh, err := s.mintSession(ctx, identityID, profile.ID, phone, now)
	if err != nil {
		return nil, err
	}

	metadata := valueobject.JSONMap{}
	metadata.SetIfNotEmpty("ip", meta.IP)
	metadata.SetIfNotEmpty("user_agent", meta.UserAgent)

	if err := s.repoDB.CreateAnonymousSession(ctx, entity.AnonymousSession{
		Identity: entity.Identity{
			ID:        identityID,
			Metadata:  metadata,
			CreatedAt: now,
		},
		RefreshToken: refresh,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to repo create anonymous session", "profile_id", profile.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	sess.ProfileLinked = true
	if err := s.repoDB.Associate(ctx, identityID, profile.ID, now); err != nil {
		slog.WarnContext(ctx, "session issued without profile link",
			"identity_id", identityID,
			"profile_id", profile.ID,
			"error", entity.NewError(entity.ErrLinkAssociationFailed, err),
		)
		sess.ProfileLinked = false
	}

	linked := sess.ProfileLinked
	s.goroutine.Go(ctx, "PublishSessionLinked", func(ctx context.Context) error {
		err := s.repoMessaging.PublishSessionLinked(ctx, SessionLinkedEvent{
			IdentityID:    identityID,
			ProfileID:     profile.ID,
			Phone:         phone.String(),
			ProfileLinked: linked,
			LinkedAt:      now,
		})
		if err != nil {
			slog.ErrorContext(ctx, "failed to publish session linked", "identity_id", identityID, "error", err)
		}
		return err
	})

	return sess, nil
}

// mintSession signs the access token and prepares a refresh token row for
// identityID. Only the hash of the refresh token ends up in the row.
func (s *Usecase) mintSession(
	ctx context.Context, identityID string, profileID int64, phone entity.PhoneNumber, now time.Time,
) (*entity.Session, entity.RefreshToken, error) {
	access, accessExp, err := s.jwt.Generate(jwt.Subject{
		IdentityID: identityID,
		ProfileID:  profileID,
		Phone:      phone.String(),
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate access jwt token", "identity_id", identityID, "error", err)
		return nil, entity.RefreshToken{}, goerror.NewServer(err)
	}

	raw := s.token.Generate()
	tokenHash, err := s.hmac.Hash(raw)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash refresh token", "error", err)
		return nil, entity.RefreshToken{}, goerror.NewServer(err)
	}

	refresh := entity.RefreshToken{
		ID:         s.uid.Generate(),
		IdentityID: identityID,
		ProfileID:  profileID,
		TokenHash:  string(tokenHash),
		ExpiresAt:  now.Add(s.policy.RefreshTTL),
		CreatedAt:  now,
	}

	return &entity.Session{
		IdentityID:      identityID,
		ProfileID:       profileID,
		Phone:           phone,
		IssuedAt:        now,
		AccessToken:     access,
		AccessExpiresAt: accessExp,
		RefreshToken:    raw,
		RefreshExpires:  refresh.ExpiresAt,
	}, refresh, nil
}
