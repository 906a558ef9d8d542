package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID          uuid.UUID `db:"id"            json:"id"`
	Email       string    `db:"email"         json:"email"`
	Password    string    `db:"password"      json:"-"`
	FullName    string    `db:"full_name"     json:"fullName"`
	DateOfBirth time.Time `db:"date_of_birth" json:"dateOfBirth"`
	Address     string    `db:"address"       json:"address"`
	CreatedAt   time.Time `db:"created_at"    json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at"    json:"updatedAt"`
}
