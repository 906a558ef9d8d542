package ctrl

import "errors"

// ErrNotFound is returned when a resource is not found.
var ErrNotFound = errors.New("not found")

var (
	ErrDuplicateIdentity = errors.New("user with this email already exists")
	ErrUserNotFound      = errors.New("user not found")
	// ErrRecordNotFound is returned when the session record does not exist or belongs to someone else.
	ErrRecordNotFound = errors.New("session record not found")
	ErrLinkExpired    = errors.New("reset link expired")
	ErrCaptchaFailed  = errors.New("captcha verification failed")
)

// ErrNotificationFailure is only logged; primary operations never return it.
var ErrNotificationFailure = errors.New("notification failure")
