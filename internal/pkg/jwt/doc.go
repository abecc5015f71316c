// Package jwt issues and verifies the short-lived access tokens handed to the
// mobile client after a successful phone sign-in.
//
// It includes:
//   - Claims carrying the anonymous identity id, the linked profile id and phone.
//   - A symmetric HS512 implementation.
//   - Context helpers for storing and retrieving authenticated claims.
package jwt
