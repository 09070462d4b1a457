package collection

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment methods as stored.
const (
	MethodCash         = "efectivo"
	MethodTransfer     = "transferencia"
	MethodTransaction  = "transacción"
	MethodTransaction2 = "transaccion"
)

// Collection is a payment recorded against a credit.
type Collection struct {
	ID                   uuid.UUID       `db:"id" json:"id"`
	BusinessID           uuid.UUID       `db:"business_id" json:"business_id"`
	CreditID             uuid.UUID       `db:"credit_id" json:"credit_id"`
	ClientID             uuid.UUID       `db:"client_id" json:"client_id"`
	UserID               uuid.UUID       `db:"user_id" json:"user_id"`
	Amount               decimal.Decimal `db:"amount" json:"amount"`
	PaymentDate          time.Time       `db:"payment_date" json:"payment_date"`
	PaymentMethod        *string         `db:"payment_method" json:"payment_method"`
	TransactionReference *string         `db:"transaction_reference" json:"transaction_reference"`
	Notes                *string         `db:"notes" json:"notes"`
	CreatedAt            time.Time       `db:"created_at" json:"created_at"`
}

// Method returns the lowercased payment method, or "" when unset.
func (c *Collection) Method() string {
	if c.PaymentMethod == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(*c.PaymentMethod))
}

// ListFilter narrows a direct collection listing. Dates bound payment_date inclusively.
type ListFilter struct {
	BusinessID uuid.UUID
	ClientID   *uuid.UUID
	CreditID   *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
	// PaymentMethods holds lowercased methods; empty means any.
	PaymentMethods []string
}

// Matches applies the filter to an already-loaded row.
func (f ListFilter) Matches(c *Collection) bool {
	if f.ClientID != nil && c.ClientID != *f.ClientID {
		return false
	}
	if f.CreditID != nil && c.CreditID != *f.CreditID {
		return false
	}
	if f.StartDate != nil && c.PaymentDate.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && c.PaymentDate.After(*f.EndDate) {
		return false
	}
	if len(f.PaymentMethods) > 0 {
		method := c.Method()
		for _, m := range f.PaymentMethods {
			if m == method {
				return true
			}
		}
		return false
	}
	return true
}
