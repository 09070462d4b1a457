package auth

import "errors"

var (
	ErrInvalidCredentials   = errors.New("invalid business, email or password")
	ErrUserInactive         = errors.New("user is inactive")
	ErrInvalidRefreshToken  = errors.New("invalid or expired refresh token")
	ErrUserNotFound         = errors.New("user not found")
	ErrRefreshTokenRequired = errors.New("refresh token is required")
	ErrInvalidResetToken    = errors.New("invalid or expired reset token")
	ErrPasswordTooShort     = errors.New("password is too short")
)
