package jwt

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/yogapass/internal/pkg/clock"
	"github.com/shandysiswandi/yogapass/internal/pkg/uid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWT(t *testing.T, c *clock.Manual) *Symmetric {
	t.Helper()

	j, err := NewHS512(Config{
		Secret:    []byte(strings.Repeat("k", 64)),
		Issuer:    "yogapass",
		Audiences: []string{"yogapass-mobile"},
		TTL:       15 * time.Minute,
		Clock:     c,
		UUID:      uid.NewUUID(),
	})
	require.NoError(t, err)

	return j
}

func TestSymmetric_RoundTrip(t *testing.T) {
	c := clock.NewManual(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	j := newTestJWT(t, c)

	token, exp, err := j.Generate(Subject{IdentityID: "0194f0c2-7d1e-7000-8000-000000000001", ProfileID: 42, Phone: "821012345678"})
	require.NoError(t, err)
	assert.Equal(t, c.Now().Add(15*time.Minute), exp)

	claims, err := j.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "0194f0c2-7d1e-7000-8000-000000000001", claims.IdentityID())
	assert.Equal(t, int64(42), claims.ProfileID)
	assert.Equal(t, "821012345678", claims.Phone)

	ctx := SetAuth(context.Background(), claims)
	require.NotNil(t, GetAuth(ctx))
	assert.Nil(t, GetAuth(context.Background()))
}

func TestSymmetric_Expired(t *testing.T) {
	c := clock.NewManual(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	j := newTestJWT(t, c)

	token, _, err := j.Generate(Subject{IdentityID: "id"})
	require.NoError(t, err)

	c.Advance(16 * time.Minute)
	_, err = j.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestNewHS512_ShortKey(t *testing.T) {
	_, err := NewHS512(Config{Secret: []byte("short")})
	assert.ErrorIs(t, err, ErrSigningKeyTooShort)
}

func TestSymmetric_Rejects(t *testing.T) {
	c := clock.NewManual(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	j := newTestJWT(t, c)

	token, _, err := j.Generate(Subject{IdentityID: "id", ProfileID: 7})
	require.NoError(t, err)

	other, err := NewHS512(Config{
		Secret:    []byte(strings.Repeat("x", 64)),
		Issuer:    "yogapass",
		Audiences: []string{"yogapass-mobile"},
		Clock:     c,
		UUID:      uid.NewUUID(),
	})
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = j.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	claims, err := j.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, Subject{IdentityID: "id", ProfileID: 7}, claims.Owner())
}
