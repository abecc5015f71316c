// Package hash provides keyed hashing for secrets that must be stored but never
// read back: one-time codes, refresh tokens, and request signatures.
package hash
