package validator

import (
	"testing"

	"github.com/shopspring/decimal"
)

type sampleRequest struct {
	Email  string          `json:"email" validate:"required,email"`
	Role   string          `json:"role" validate:"required,role"`
	Method string          `json:"payment_method" validate:"omitempty,payment_method"`
	Amount decimal.Decimal `json:"amount" validate:"gt=0"`
}

func TestValidateUsesJSONNames(t *testing.T) {
	errs := Validate(sampleRequest{Email: "bad", Role: "model", Method: "cheque", Amount: decimal.Zero})
	for _, field := range []string{"email", "role", "payment_method", "amount"} {
		if _, ok := errs[field]; !ok {
			t.Fatalf("expected error for %s, got %#v", field, errs)
		}
	}
}

func TestValidateAcceptsDomainValues(t *testing.T) {
	errs := Validate(sampleRequest{
		Email:  "cobrador@recaudo.co",
		Role:   "cobrador",
		Method: "Efectivo",
		Amount: decimal.RequireFromString("25000"),
	})
	if errs != nil {
		t.Fatalf("expected no errors, got %#v", errs)
	}
}
