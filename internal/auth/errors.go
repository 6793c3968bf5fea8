// Package auth signs users in through an OAuth provider and keeps their session
// in a signed cookie that can be revoked before it expires.
package auth

import "errors"

var (
	// ErrNoSession means the request carries no usable session cookie.
	ErrNoSession = errors.New("no session")
	// ErrRevoked means the session was signed out before it expired.
	ErrRevoked = errors.New("session revoked")
	// ErrStateMismatch means the OAuth callback state does not match the one issued.
	ErrStateMismatch = errors.New("oauth state mismatch")
)
