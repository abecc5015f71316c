package uid

import (
	"crypto/rand"
	"encoding/hex"
)

// Token generates opaque 256-bit random strings (64 hex chars), used as
// refresh tokens.
type Token struct{}

// NewToken returns a Token generator.
func NewToken() *Token {
	return &Token{}
}

// Generate returns a new token. crypto/rand.Read never fails on supported platforms.
func (Token) Generate() string {
	var raw [32]byte
	_, _ = rand.Read(raw[:])

	return hex.EncodeToString(raw[:])
}
