package entity

import (
	"time"

	"github.com/shandysiswandi/yogapass/internal/pkg/valueobject"
)

// Profile is the long-lived directory record of a member.
type Profile struct {
	ID          int64
	Phone       PhoneNumber
	DisplayName string
	IdentityID  *string
	LinkedAt    *time.Time
	CreatedAt   time.Time
}

// Identity is the anonymous identity minted for every successful OTP.
type Identity struct {
	ID        string
	ProfileID *int64
	Metadata  valueobject.JSONMap
	CreatedAt time.Time
}

// RefreshToken is a persisted refresh token. Only its hash is stored.
type RefreshToken struct {
	ID         int64
	IdentityID string
	ProfileID  int64
	TokenHash  string
	ExpiresAt  time.Time
	RevokedAt  *time.Time
	CreatedAt  time.Time
}

// RefreshTokenInfo is a refresh token joined with the phone of its profile,
// which is needed to mint a new access token.
type RefreshTokenInfo struct {
	RefreshToken
	Phone PhoneNumber
}

// RotateRefreshToken revokes OldID and inserts the replacement in one step.
type RotateRefreshToken struct {
	OldID    int64
	NewToken RefreshToken
}

// AnonymousSession is what the directory persists when a session is created.
type AnonymousSession struct {
	Identity     Identity
	RefreshToken RefreshToken
}

// Session is returned to the client after a successful confirmation.
type Session struct {
	IdentityID      string
	ProfileID       int64
	Phone           PhoneNumber
	IssuedAt        time.Time
	AccessToken     string
	AccessExpiresAt time.Time
	RefreshToken    string
	RefreshExpires  time.Time
	// ProfileLinked is false when re-associating the identity with the
	// profile failed. The session is still valid.
	ProfileLinked bool
}

// ClientMeta describes the device that confirmed the code.
type ClientMeta struct {
	IP        string
	UserAgent string
}
