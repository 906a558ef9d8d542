package config

import "time"

type ctxKey string

const (
	UidKey   ctxKey = "uid"
	TokenKey ctxKey = "token"
	IpKey    ctxKey = "ip"
	UaKey    ctxKey = "ua"
)

const (
	DefaultCacheTime = time.Hour
	ErrorSpanTag     = "error"
)

const (
	SessionTokenDuration = time.Hour
	ResetTokenDuration   = time.Minute * 2
	BearerPrefix         = "Bearer "
)
