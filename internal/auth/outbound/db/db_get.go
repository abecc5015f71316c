package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shandysiswandi/yogapass/internal/auth/entity"
)

const profileColumns = `id, phone, display_name, identity_id::text, linked_at, created_at`

func scanProfile(row interface{ Scan(...any) error }) (*entity.Profile, error) {
	var (
		p          entity.Profile
		phone      string
		identityID pgtype.Text
		linkedAt   pgtype.Timestamptz
	)
	if err := row.Scan(&p.ID, &phone, &p.DisplayName, &identityID, &linkedAt, &p.CreatedAt); err != nil {
		return nil, err
	}

	p.Phone = entity.PhoneNumber(phone)
	p.IdentityID = textPtr(identityID)
	p.LinkedAt = timePtr(linkedAt)

	return &p, nil
}

func (s *DB) FindProfileByPhone(ctx context.Context, phone entity.PhoneNumber) (_ *entity.Profile, err error) {
	ctx, span := s.startSpan(ctx, "FindProfileByPhone")
	defer func() { s.endSpan(span, err) }()

	p, err := scanProfile(s.conn.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM auth_profiles WHERE phone = $1`, phone.String()))
	if err != nil {
		return nil, s.mapError(err)
	}

	return p, nil
}

func (s *DB) GetProfileByID(ctx context.Context, id int64) (_ *entity.Profile, err error) {
	ctx, span := s.startSpan(ctx, "GetProfileByID")
	defer func() { s.endSpan(span, err) }()

	p, err := scanProfile(s.conn.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM auth_profiles WHERE id = $1`, id))
	if err != nil {
		return nil, s.mapError(err)
	}

	return p, nil
}

func (s *DB) GetRefreshToken(ctx context.Context, tokenHash string) (_ *entity.RefreshTokenInfo, err error) {
	ctx, span := s.startSpan(ctx, "GetRefreshToken")
	defer func() { s.endSpan(span, err) }()

	var (
		info      entity.RefreshTokenInfo
		phone     string
		revokedAt pgtype.Timestamptz
	)
	err = s.conn.QueryRow(ctx, `
		SELECT t.id, t.identity_id::text, t.profile_id, t.token_hash, t.expires_at, t.revoked_at, t.created_at, p.phone
		FROM auth_refresh_tokens t
		JOIN auth_profiles p ON p.id = t.profile_id
		WHERE t.token_hash = $1`, tokenHash,
	).Scan(
		&info.ID, &info.IdentityID, &info.ProfileID, &info.TokenHash,
		&info.ExpiresAt, &revokedAt, &info.CreatedAt, &phone,
	)
	if err != nil {
		return nil, s.mapError(err)
	}

	info.RevokedAt = timePtr(revokedAt)
	info.Phone = entity.PhoneNumber(phone)

	return &info, nil
}
