package sms

import (
	"errors"
	"fmt"
)

// ErrDeliveryFailed matches every *DeliveryError through errors.Is.
var ErrDeliveryFailed = errors.New("sms: delivery failed")

// Reason classifies a failed delivery.
type Reason string

const (
	ReasonNetwork   Reason = "network"
	ReasonTimeout   Reason = "timeout"
	ReasonRejected  Reason = "rejected"
	ReasonMalformed Reason = "malformed"
)

// DeliveryError describes why the gateway did not accept a message.
type DeliveryError struct {
	Reason Reason
	// Status is the provider's own status text, set for rejections.
	Status string
	Err    error
}

func (e *DeliveryError) Error() string {
	msg := "sms: delivery failed (" + string(e.Reason) + ")"
	if e.Status != "" {
		msg += ": " + e.Status
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *DeliveryError) Unwrap() error { return e.Err }

func (*DeliveryError) Is(target error) bool { return target == ErrDeliveryFailed }

// Retryable reports whether another attempt could succeed. Provider
// rejections and malformed answers are final.
func (e *DeliveryError) Retryable() bool {
	return e.Reason == ReasonNetwork || e.Reason == ReasonTimeout
}
