package jwt

import "errors"

var ErrWhileCreatingToken = errors.New("error while creating token")
var ErrUnexpectedSignMethod = errors.New("unexpected signing method")

var (
	// ErrTokenMalformed covers bad signature, bad shape, wrong issuer and wrong purpose.
	ErrTokenMalformed = errors.New("token malformed")
	// ErrTokenExpired is returned only when expiry is the sole problem.
	ErrTokenExpired = errors.New("token expired")
)
