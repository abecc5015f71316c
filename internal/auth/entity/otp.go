package entity

import "time"

// Defaults for the OTP lifecycle. Each is overridable through config.
const (
	DefaultCodeTTL        = 300 * time.Second
	DefaultMaxAttempts    = 3
	DefaultResendCooldown = 60 * time.Second
)

// OtpRecord is the one live code for a phone. Only the keyed hash of the
// code is kept. IssuanceID changes on every put so compare-and-swap
// mutations never act on a record that was overwritten meanwhile.
type OtpRecord struct {
	Phone          PhoneNumber
	CodeHash       string
	IssuanceID     string
	IssuedAt       time.Time
	FailedAttempts int
}

// Expired reports whether more than ttl elapsed since issuance.
func (r OtpRecord) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(r.IssuedAt) > ttl
}
