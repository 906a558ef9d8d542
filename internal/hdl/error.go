package hdl

import "errors"

var ErrInternal = errors.New("internal error")
var ErrDecodeRequest = errors.New("decode request")
var ErrStorageUnavailable = errors.New("service temporarily unavailable")

var ErrFailedToGetUUID = errors.New("failed to get uid from context")
var ErrFailedToParseUUID = errors.New("failed to parse uid")

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrForbidden    = errors.New("forbidden")
)
