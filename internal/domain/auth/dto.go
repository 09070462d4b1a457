package auth

import (
	"github.com/google/uuid"

	"github.com/recaudopro/recaudo-api/internal/domain/user"
)

// LoginRequest for POST /auth/login
type LoginRequest struct {
	BusinessID uuid.UUID `json:"business_id" validate:"required"`
	Email      string    `json:"email" validate:"required,email"`
	Password   string    `json:"password" validate:"required"`
}

// RefreshRequest for POST /auth/refresh and /auth/logout
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// PasswordResetRequest for POST /auth/password/reset. Without business_id the
// link is sent for every business the email belongs to.
type PasswordResetRequest struct {
	BusinessID *uuid.UUID `json:"business_id"`
	Email      string     `json:"email" validate:"required,email"`
}

// PasswordResetConfirmRequest for POST /auth/password/confirm
type PasswordResetConfirmRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

// TokensResponse carries a token pair.
type TokensResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// AuthResponse is returned by login and refresh.
type AuthResponse struct {
	User   *user.User     `json:"user"`
	Tokens TokensResponse `json:"tokens"`
}
