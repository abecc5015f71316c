package jwt

import (
	"errors"
	"fmt"
	"time"

	libJWT "github.com/golang-jwt/jwt/v5"
)

const defaultTTL = 15 * time.Minute

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Symmetric signs and verifies HS512 tokens with a shared secret.
type Symmetric struct {
	cfg    Config
	parser *libJWT.Parser
}

func NewHS512(cfg Config) (*Symmetric, error) {
	if len(cfg.Secret) < minSecretBytes {
		return nil, ErrSigningKeyTooShort
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTTL
	}
	if cfg.Clock == nil {
		cfg.Clock = systemClock{}
	}

	return &Symmetric{
		cfg: cfg,
		parser: libJWT.NewParser(
			libJWT.WithIssuer(cfg.Issuer),
			libJWT.WithAudience(cfg.Audiences...),
			libJWT.WithValidMethods([]string{libJWT.SigningMethodHS512.Alg()}),
			libJWT.WithIssuedAt(),
			libJWT.WithExpirationRequired(),
			libJWT.WithTimeFunc(cfg.Clock.Now),
		),
	}, nil
}

func (s *Symmetric) Generate(sub Subject) (string, time.Time, error) {
	now := s.cfg.Clock.Now()
	exp := now.Add(s.cfg.TTL)

	claims := Claims{
		RegisteredClaims: libJWT.RegisteredClaims{
			ID:        s.cfg.UUID.Generate(),
			Subject:   sub.IdentityID,
			Issuer:    s.cfg.Issuer,
			Audience:  s.cfg.Audiences,
			IssuedAt:  libJWT.NewNumericDate(now),
			NotBefore: libJWT.NewNumericDate(now),
			ExpiresAt: libJWT.NewNumericDate(exp),
		},
		ProfileID: sub.ProfileID,
		Phone:     sub.Phone,
	}

	token, err := libJWT.NewWithClaims(libJWT.SigningMethodHS512, claims).SignedString(s.cfg.Secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return token, exp, nil
}

// Verify checks signature, issuer, audience and expiry against the injected clock.
func (s *Symmetric) Verify(token string) (Claims, error) {
	var claims Claims

	_, err := s.parser.ParseWithClaims(token, &claims, func(t *libJWT.Token) (any, error) {
		if t.Method != libJWT.SigningMethodHS512 {
			return nil, ErrInvalidSigningMethod
		}
		return s.cfg.Secret, nil
	})
	switch {
	case errors.Is(err, libJWT.ErrTokenExpired):
		return Claims{}, ErrTokenExpired
	case err != nil:
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	case claims.Subject == "":
		return Claims{}, ErrInvalidToken
	}

	return claims, nil
}
