// Package otp generates short numeric one-time codes for out-of-band
// verification (SMS). Each code is derived with HOTP from a fresh random
// secret and counter, so consecutive codes are independent.
package otp
