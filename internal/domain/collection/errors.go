package collection

import "errors"

var (
	ErrCollectionNotFound = errors.New("collection not found")
	ErrCreditNotFound     = errors.New("credit not found")
	ErrClientMismatch     = errors.New("credit does not belong to the client")
	ErrInvalidAmount      = errors.New("amount must be greater than 0")
	ErrPaymentDateMissing = errors.New("payment date is required")
	ErrInvalidLimit       = errors.New("limit must be greater than 0")
)
