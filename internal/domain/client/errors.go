package client

import "errors"

var (
	ErrClientNotFound = errors.New("client not found")
	ErrNameRequired   = errors.New("client name is required")
	ErrPhoneRequired  = errors.New("client phone is required")
	ErrInvalidPhone   = errors.New("client phone is not a valid number")
	ErrEmptySearch    = errors.New("search text is required")
)
