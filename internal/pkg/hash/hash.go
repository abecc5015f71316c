package hash

// Hash produces and checks keyed digests of short secrets such as OTP codes
// and refresh tokens. Only the digest is ever persisted.
type Hash interface {
	Hash(str string) ([]byte, error)
	Verify(hashed, str string) bool
}
