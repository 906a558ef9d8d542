package models

import (
	"time"

	"github.com/google/uuid"
)

// Account is a linked third-party account. Secret holds ciphertext only.
type Account struct {
	ID           uuid.UUID `db:"id"            json:"id"`
	UserID       uuid.UUID `db:"user_id"       json:"userId"`
	AccountType  string    `db:"account_type"  json:"accountType"`
	Email        string    `db:"email"         json:"email"`
	Secret       string    `db:"secret"        json:"-"`
	LastModified time.Time `db:"last_modified" json:"lastModified"`
}
