package entity

import (
	"errors"
	"fmt"
	"time"
)

// Failure kinds of the OTP flow. Match them with errors.Is on an *Error.
var (
	ErrInvalidPhone          = errors.New("invalid phone number")
	ErrDeliveryFailed        = errors.New("code delivery failed")
	ErrThrottled             = errors.New("code requested too soon")
	ErrNotFound              = errors.New("no active code")
	ErrExpired               = errors.New("code expired")
	ErrCodeMismatch          = errors.New("code mismatch")
	ErrTooManyAttempts       = errors.New("too many attempts")
	ErrUnregisteredPhone     = errors.New("phone has no profile")
	ErrLinkAssociationFailed = errors.New("profile association failed")
)

// Error is a typed OTP failure. Attempts and MaxAttempts are set for
// ErrCodeMismatch and ErrTooManyAttempts, RetryAfter for ErrThrottled.
type Error struct {
	Kind        error
	Attempts    int
	MaxAttempts int
	RetryAfter  time.Duration
	Err         error
}

// NewError wraps cause under kind.
func NewError(kind, cause error) *Error {
	return &Error{Kind: kind, Err: cause}
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	switch {
	case errors.Is(e.Kind, ErrCodeMismatch):
		msg = fmt.Sprintf("%s (%d of %d attempts used)", msg, e.Attempts, e.MaxAttempts)
	case e.RetryAfter > 0:
		msg = fmt.Sprintf("%s (retry after %s)", msg, e.RetryAfter)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Is(target error) bool { return target == e.Kind }

func (e *Error) Unwrap() error { return e.Err }

// RetryAfterSeconds rounds RetryAfter up to whole seconds.
func (e *Error) RetryAfterSeconds() int {
	return int((e.RetryAfter + time.Second - 1) / time.Second)
}

// ErrSuperseded is returned by store compare-and-swap operations when the
// record was replaced by a newer issuance.
var ErrSuperseded = errors.New("otp record superseded")
