package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrTokenRevoked is returned for a well-formed token whose session record is gone or revoked.
	ErrTokenRevoked = errors.New("token revoked")
)
