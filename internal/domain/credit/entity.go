package credit

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Credit is a loan granted to a client and repaid in installments.
type Credit struct {
	ID                  uuid.UUID           `db:"id" json:"id"`
	BusinessID          uuid.UUID           `db:"business_id" json:"business_id"`
	ClientID            uuid.UUID           `db:"client_id" json:"client_id"`
	TotalAmount         decimal.Decimal     `db:"total_amount" json:"total_amount"`
	InstallmentAmount   decimal.Decimal     `db:"installment_amount" json:"installment_amount"`
	TotalInstallments   int                 `db:"total_installments" json:"total_installments"`
	PaidInstallments    int                 `db:"paid_installments" json:"paid_installments"`
	OverdueInstallments int                 `db:"overdue_installments" json:"overdue_installments"`
	TotalBalance        decimal.Decimal     `db:"total_balance" json:"total_balance"`
	LastPaymentAmount   decimal.NullDecimal `db:"last_payment_amount" json:"last_payment_amount"`
	LastPaymentDate     *time.Time          `db:"last_payment_date" json:"last_payment_date"`
	NextDueDate         *time.Time          `db:"next_due_date" json:"next_due_date"`
	CreatedAt           time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time           `db:"updated_at" json:"updated_at"`
}

// IsActive reports an outstanding balance.
func (c *Credit) IsActive() bool {
	return c.TotalBalance.IsPositive()
}

// InArrears reports an active credit with overdue installments.
func (c *Credit) InArrears() bool {
	return c.IsActive() && c.OverdueInstallments > 0
}

// ListFilter narrows a direct credit listing. Dates bound created_at inclusively.
type ListFilter struct {
	BusinessID uuid.UUID
	ClientID   *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
}

// Matches applies the filter to an already-loaded row.
func (f ListFilter) Matches(c *Credit) bool {
	if f.ClientID != nil && c.ClientID != *f.ClientID {
		return false
	}
	if f.StartDate != nil && c.CreatedAt.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && c.CreatedAt.After(*f.EndDate) {
		return false
	}
	return true
}
