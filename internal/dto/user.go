package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateUserRequest struct {
	Email       string    `json:"email"       validate:"required,email"`
	Password    string    `json:"password"    validate:"required,min=8,max=72"`
	FullName    string    `json:"fullName"    validate:"required"`
	DateOfBirth time.Time `json:"dateOfBirth" validate:"required"`
	Address     string    `json:"address"     validate:"required"`
}

type CreateUserResponse struct {
	ID uuid.UUID `json:"id"`
}

type UpdateUserRequest struct {
	FullName    string    `json:"fullName"    validate:"required"`
	DateOfBirth time.Time `json:"dateOfBirth" validate:"required"`
	Address     string    `json:"address"     validate:"required"`
}
