// Package uid generates identifiers: UUIDv7 strings for identities and
// issuances, snowflake numbers for directory rows, and opaque random tokens.
package uid

// StringID generates string identifiers.
type StringID interface {
	Generate() string
}

// NumberID generates numeric identifiers.
type NumberID interface {
	Generate() int64
}
