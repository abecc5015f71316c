package hash

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// HMACSHA256 implements Hash using HMAC with SHA-256.
type HMACSHA256 struct {
	secret []byte
}

// NewHMACSHA256 creates a new hasher keyed by secret.
func NewHMACSHA256(secret string) *HMACSHA256 {
	return &HMACSHA256{secret: []byte(secret)}
}

// Hash returns the hex-encoded HMAC of str.
func (s *HMACSHA256) Hash(str string) ([]byte, error) {
	sum := s.Sum([]byte(str))
	out := make([]byte, hex.EncodedLen(len(sum)))
	hex.Encode(out, sum)

	return out, nil
}

// Verify reports whether hashed is the hex HMAC of str, in constant time.
func (s *HMACSHA256) Verify(hashed, str string) bool {
	expected, _ := s.Hash(str)
	return subtle.ConstantTimeCompare([]byte(hashed), expected) == 1
}

// Sum returns the raw MAC bytes of msg.
func (s *HMACSHA256) Sum(msg []byte) []byte {
	h := hmac.New(sha256.New, s.secret)
	h.Write(msg)

	return h.Sum(nil)
}
