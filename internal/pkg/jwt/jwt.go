package jwt

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const minSecretBytes = 64

var (
	ErrInvalidSigningMethod = errors.New("jwt: unexpected signing method")
	ErrSigningKeyTooShort   = errors.New("jwt: HS512 secret must be at least 64 bytes")
	ErrTokenExpired         = errors.New("jwt: token expired")
	ErrInvalidToken         = errors.New("jwt: invalid token")
)

// Subject is who an access token is minted for: the anonymous identity and
// the studio profile it is currently linked to.
type Subject struct {
	IdentityID string
	ProfileID  int64
	Phone      string
}

// JWT mints and checks access tokens.
type JWT interface {
	Generate(sub Subject) (token string, expiresAt time.Time, err error)
	Verify(token string) (Claims, error)
}

// Config feeds NewHS512. TTL defaults to 15 minutes.
type Config struct {
	Secret    []byte
	Issuer    string
	Audiences []string
	TTL       time.Duration
	Clock     interface{ Now() time.Time }
	// UUID generates the jti.
	UUID interface{ Generate() string }
}

// Claims is the access token payload; the registered sub holds the identity id.
type Claims struct {
	jwt.RegisteredClaims
	ProfileID int64  `json:"profile_id,string"`
	Phone     string `json:"phone"`
}

func (c Claims) IdentityID() string { return c.Subject }

// Owner rebuilds the Subject the token was generated for.
func (c Claims) Owner() Subject {
	return Subject{IdentityID: c.Subject, ProfileID: c.ProfileID, Phone: c.Phone}
}

type claimsKey struct{}

// SetAuth stores verified claims for downstream handlers.
func SetAuth(ctx context.Context, clm Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, clm)
}

// GetAuth returns the claims stored by SetAuth, or nil on public routes.
func GetAuth(ctx context.Context) *Claims {
	if clm, ok := ctx.Value(claimsKey{}).(Claims); ok {
		return &clm
	}
	return nil
}
