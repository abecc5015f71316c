package event

const OtpIssuedDestination string = "auth_otp_issued"

// OtpIssuedMessage is published after a code was stored and handed to the
// SMS gateway. It never carries the code.
type OtpIssuedMessage struct {
	Phone      string `json:"phone"`
	IssuanceID string `json:"issuance_id"`
	IssuedAt   int64  `json:"issued_at"`
	ExpiresAt  int64  `json:"expires_at"`
	RequestID  string `json:"provider_request_id,omitempty"`
}
