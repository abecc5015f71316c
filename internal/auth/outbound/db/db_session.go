package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/yogapass/internal/auth/entity"
	"github.com/shandysiswandi/yogapass/internal/pkg/goerror"
)

const insertRefreshToken = `
	INSERT INTO auth_refresh_tokens (id, identity_id, profile_id, token_hash, expires_at, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)`

// CreateAnonymousSession stores a freshly minted identity and its first
// refresh token atomically.
func (s *DB) CreateAnonymousSession(ctx context.Context, in entity.AnonymousSession) (err error) {
	ctx, span := s.startSpan(ctx, "CreateAnonymousSession")
	defer func() { s.endSpan(span, err) }()

	return s.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO auth_identities (id, metadata, created_at) VALUES ($1, $2, $3)`,
			in.Identity.ID, in.Identity.Metadata, in.Identity.CreatedAt,
		); err != nil {
			return err
		}

		rt := in.RefreshToken
		_, err := tx.Exec(ctx, insertRefreshToken,
			rt.ID, rt.IdentityID, rt.ProfileID, rt.TokenHash, rt.ExpiresAt, rt.CreatedAt)
		return err
	})
}

// Associate binds an identity to a profile in both directions.
func (s *DB) Associate(ctx context.Context, identityID string, profileID int64, at time.Time) (err error) {
	ctx, span := s.startSpan(ctx, "Associate")
	defer func() { s.endSpan(span, err) }()

	return s.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE auth_profiles SET identity_id = $1, linked_at = $2 WHERE id = $3`,
			identityID, at, profileID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return goerror.ErrNotFound
		}

		tag, err = tx.Exec(ctx,
			`UPDATE auth_identities SET profile_id = $1 WHERE id = $2`,
			profileID, identityID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return goerror.ErrNotFound
		}

		return nil
	})
}

// RotateRefreshToken revokes the old token and inserts its replacement.
// It returns goerror.ErrNotFound when the old token was already revoked.
func (s *DB) RotateRefreshToken(ctx context.Context, in entity.RotateRefreshToken) (err error) {
	ctx, span := s.startSpan(ctx, "RotateRefreshToken")
	defer func() { s.endSpan(span, err) }()

	return s.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE auth_refresh_tokens SET revoked_at = $1 WHERE id = $2 AND revoked_at IS NULL`,
			in.NewToken.CreatedAt, in.OldID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return goerror.ErrNotFound
		}

		rt := in.NewToken
		_, err = tx.Exec(ctx, insertRefreshToken,
			rt.ID, rt.IdentityID, rt.ProfileID, rt.TokenHash, rt.ExpiresAt, rt.CreatedAt)
		return err
	})
}

// RevokeRefreshToken revokes tokenHash if it belongs to identityID. Revoking
// an unknown or already revoked token is not an error.
func (s *DB) RevokeRefreshToken(ctx context.Context, tokenHash, identityID string, at time.Time) (err error) {
	ctx, span := s.startSpan(ctx, "RevokeRefreshToken")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		UPDATE auth_refresh_tokens SET revoked_at = $1
		WHERE token_hash = $2 AND identity_id = $3 AND revoked_at IS NULL`,
		at, tokenHash, identityID)

	return s.mapError(err)
}

// PurgeRefreshTokens deletes tokens that expired or were revoked before cutoff.
func (s *DB) PurgeRefreshTokens(ctx context.Context, cutoff time.Time) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "PurgeRefreshTokens")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx,
		`DELETE FROM auth_refresh_tokens WHERE expires_at < $1 OR revoked_at < $1`, cutoff)
	if err != nil {
		return 0, s.mapError(err)
	}

	return tag.RowsAffected(), nil
}
