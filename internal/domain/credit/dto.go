package credit

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateCreditRequest is the body of POST /credits.
type CreateCreditRequest struct {
	ClientID          uuid.UUID       `json:"client_id" validate:"required"`
	TotalAmount       decimal.Decimal `json:"total_amount" validate:"gt=0"`
	InstallmentAmount decimal.Decimal `json:"installment_amount" validate:"gt=0"`
	TotalInstallments int             `json:"total_installments" validate:"gt=0,lte=1000"`
	NextDueDate       *time.Time      `json:"next_due_date"`
}

// UpdateCreditRequest is the body of PATCH /credits/{id}. Nil fields are left unchanged.
type UpdateCreditRequest struct {
	TotalAmount         *decimal.Decimal `json:"total_amount" validate:"omitempty,gt=0"`
	InstallmentAmount   *decimal.Decimal `json:"installment_amount" validate:"omitempty,gt=0"`
	TotalInstallments   *int             `json:"total_installments" validate:"omitempty,gt=0"`
	PaidInstallments    *int             `json:"paid_installments" validate:"omitempty,gte=0"`
	OverdueInstallments *int             `json:"overdue_installments" validate:"omitempty,gte=0"`
	TotalBalance        *decimal.Decimal `json:"total_balance"`
	LastPaymentAmount   *decimal.Decimal `json:"last_payment_amount" validate:"omitempty,gte=0"`
	LastPaymentDate     *time.Time       `json:"last_payment_date"`
	NextDueDate         *time.Time       `json:"next_due_date"`
}

func (r *UpdateCreditRequest) empty() bool {
	return r.TotalAmount == nil && r.InstallmentAmount == nil && r.TotalInstallments == nil &&
		r.PaidInstallments == nil && r.OverdueInstallments == nil && r.TotalBalance == nil &&
		r.LastPaymentAmount == nil && r.LastPaymentDate == nil && r.NextDueDate == nil
}

// apply merges the request into c.
func (r *UpdateCreditRequest) apply(c *Credit) {
	if r.TotalAmount != nil {
		c.TotalAmount = *r.TotalAmount
	}
	if r.InstallmentAmount != nil {
		c.InstallmentAmount = *r.InstallmentAmount
	}
	if r.TotalInstallments != nil {
		c.TotalInstallments = *r.TotalInstallments
	}
	if r.PaidInstallments != nil {
		c.PaidInstallments = *r.PaidInstallments
	}
	if r.OverdueInstallments != nil {
		c.OverdueInstallments = *r.OverdueInstallments
	}
	if r.TotalBalance != nil {
		c.TotalBalance = *r.TotalBalance
	}
	if r.LastPaymentAmount != nil {
		c.LastPaymentAmount = decimal.NewNullDecimal(*r.LastPaymentAmount)
	}
	if r.LastPaymentDate != nil {
		c.LastPaymentDate = r.LastPaymentDate
	}
	if r.NextDueDate != nil {
		c.NextDueDate = r.NextDueDate
	}
}
