package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventUserRegistered     = "user.registered"
	EventSessionCreated     = "session.created"
	EventSessionRevoked     = "session.revoked"
	EventSessionsRevokedAll = "sessions.revoked_all"
	EventPasswordChanged    = "password.changed"
	EventPasswordReset      = "password.reset"
)

// SecurityEvent is an audit record of an authentication state change.
type SecurityEvent struct {
	Type       string     `json:"type"`
	UserID     uuid.UUID  `json:"userId"`
	SessionID  *uuid.UUID `json:"sessionId,omitempty"`
	IP         string     `json:"ip,omitempty"`
	OccurredAt time.Time  `json:"occurredAt"`
}
