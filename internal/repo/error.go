package repo

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	// ErrStorageUnavailable is returned when storage keeps failing after a retry.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
