package inbound

import "time"

type RequestCodeRequest struct {
	Phone string `json:"phone"`
}

type RequestCodeResponse struct {
	Success            bool `json:"success"`
	ResendAfterSeconds int  `json:"resend_after_seconds"`
	ExpiresInSeconds   int  `json:"expires_in_seconds"`

	msg string
}

func (r RequestCodeResponse) Message() string { return r.msg }

type ConfirmCodeRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

type SessionResponse struct {
	IdentityID            string    `json:"identity_id"`
	ProfileID             int64     `json:"profile_id,string"`
	AccessToken           string    `json:"access_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshToken          string    `json:"refresh_token"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	ProfileLinked         *bool     `json:"profile_linked,omitempty"`

	msg string
}

func (r SessionResponse) Message() string { return r.msg }

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type ProfileResponse struct {
	ID          int64      `json:"id,string"`
	Phone       string     `json:"phone"`
	DisplayName string     `json:"display_name"`
	IdentityID  string     `json:"identity_id"`
	Linked      bool       `json:"linked"`
	LinkedAt    *time.Time `json:"linked_at,omitempty"`

	msg string
}

func (r ProfileResponse) Message() string { return r.msg }
