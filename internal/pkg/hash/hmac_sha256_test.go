package hash

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHMACSHA256(t *testing.T) {
	h := NewHMACSHA256("key")

	// Well known HMAC-SHA256 vector.
	const want = "f7bc83f430538424b13298e6aa6fb143ef4d59a14946175997479dbc2d1a3cd8"

	got, err := h.Hash("The quick brown fox jumps over the lazy dog")
	require.NoError(t, err)
	assert.Equal(t, want, string(got))
	assert.Equal(t, want, hex.EncodeToString(h.Sum([]byte("The quick brown fox jumps over the lazy dog"))))

	assert.True(t, h.Verify(want, "The quick brown fox jumps over the lazy dog"))
	assert.False(t, h.Verify(want, "the quick brown fox jumps over the lazy dog"))
	assert.False(t, NewHMACSHA256("other").Verify(want, "The quick brown fox jumps over the lazy dog"))
}
