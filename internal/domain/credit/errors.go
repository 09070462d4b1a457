package credit

import "errors"

var (
	ErrCreditNotFound        = errors.New("credit not found")
	ErrClientNotFound        = errors.New("client not found")
	ErrInvalidAmount         = errors.New("amounts must be greater than 0")
	ErrInvalidInstallments   = errors.New("installment count must be greater than 0")
	ErrInstallmentsExceedCap = errors.New("installment plan exceeds 110% of the credit amount")
	ErrNegativeBalance       = errors.New("balance cannot be negative")
	ErrInstallmentCounts     = errors.New("paid plus overdue installments exceed the total")
)
