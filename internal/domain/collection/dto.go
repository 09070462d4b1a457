package collection

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateCollectionRequest is the body of POST /collections.
type CreateCollectionRequest struct {
	CreditID             uuid.UUID       `json:"credit_id" validate:"required"`
	ClientID             uuid.UUID       `json:"client_id" validate:"required"`
	Amount               decimal.Decimal `json:"amount" validate:"gt=0"`
	PaymentDate          *time.Time      `json:"payment_date" validate:"required"`
	PaymentMethod        *string         `json:"payment_method" validate:"omitempty,payment_method"`
	TransactionReference *string         `json:"transaction_reference" validate:"omitempty,max=120"`
	Notes                *string         `json:"notes" validate:"omitempty,max=500"`
}

// Normalize lowercases the payment method and drops blank optional text.
func (r *CreateCollectionRequest) Normalize() {
	r.PaymentMethod = trimmed(r.PaymentMethod)
	if r.PaymentMethod != nil {
		lower := strings.ToLower(*r.PaymentMethod)
		r.PaymentMethod = &lower
	}
	r.TransactionReference = trimmed(r.TransactionReference)
	r.Notes = trimmed(r.Notes)
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
