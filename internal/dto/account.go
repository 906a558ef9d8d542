package dto

import "github.com/google/uuid"

type CreateAccountRequest struct {
	AccountType string `json:"accountType" validate:"required"`
	Email       string `json:"email"       validate:"required,email"`
	Secret      string `json:"secret"      validate:"required"`
}

type CreateAccountResponse struct {
	ID uuid.UUID `json:"id"`
}

type UpdateAccountRequest struct {
	AccountType string `json:"accountType" validate:"required"`
	Email       string `json:"email"       validate:"required,email"`
	Secret      string `json:"secret"`
}

type RevealAccountResponse struct {
	Secret string `json:"secret"`
}
