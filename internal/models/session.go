package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is a device session record: one per successful login. Its token is
// usable only while IsValid is true; revocation is terminal.
type Session struct {
	ID         uuid.UUID  `db:"id"          json:"id"`
	UserID     uuid.UUID  `db:"user_id"     json:"userId"`
	Name       string     `db:"name"        json:"name"`
	DeviceType string     `db:"device_type" json:"deviceType"`
	OS         string     `db:"os"          json:"os"`
	Browser    string     `db:"browser"     json:"browser"`
	UA         string     `db:"user_agent"  json:"ua"`
	IP         string     `db:"ip"          json:"ip"`
	Token      string     `db:"token"       json:"-"`
	IsValid    bool       `db:"is_valid"    json:"isValid"`
	RevokedAt  *time.Time `db:"revoked_at"  json:"revokedAt,omitempty"`
	CreatedAt  time.Time  `db:"created_at"  json:"createdAt"`
}
