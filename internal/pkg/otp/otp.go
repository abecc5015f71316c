package otp

import (
	"crypto/rand"
	"encoding/base32"
	"encoding/binary"
	"errors"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
)

// ErrInvalidDigits is returned for code lengths other than 6 or 8.
var ErrInvalidDigits = errors.New("otp: digits must be 6 or 8")

// Generator creates one-time codes.
type Generator interface {
	// Generate returns a fixed-width numeric code, zero padded.
	Generate() (string, error)
}

// HOTP implements Generator on top of RFC 4226.
type HOTP struct {
	digits otp.Digits
}

// NewHOTP returns a Generator for codes of the given width.
func NewHOTP(digits otp.Digits) (*HOTP, error) {
	if digits != otp.DigitsSix && digits != otp.DigitsEight {
		return nil, ErrInvalidDigits
	}

	return &HOTP{digits: digits}, nil
}

// Generate draws a 160-bit secret and a 64-bit counter from crypto/rand and
// returns the resulting HOTP value.
func (h *HOTP) Generate() (string, error) {
	var buf [28]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}

	secret := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(buf[:20])
	counter := binary.BigEndian.Uint64(buf[20:])

	return hotp.GenerateCodeCustom(secret, counter, hotp.ValidateOpts{
		Digits:    h.digits,
		Algorithm: otp.AlgorithmSHA1,
	})
}
