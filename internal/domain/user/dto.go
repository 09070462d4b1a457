package user

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CreateAccountRequest creates a login identity plus its profile.
type CreateAccountRequest struct {
	Email                string           `json:"email" validate:"required,email"`
	Password             string           `json:"password" validate:"required,min=6"`
	Name                 string           `json:"name" validate:"omitempty,max=120"`
	Role                 string           `json:"role" validate:"required,role"`
	EmployeeCode         string           `json:"employee_code" validate:"omitempty,max=40"`
	Phone                string           `json:"phone" validate:"omitempty,max=30"`
	CommissionPercentage *decimal.Decimal `json:"commission_percentage" validate:"omitempty,gte=0,lte=100"`
}

// Normalize trims free-text fields and lowercases the email.
func (r *CreateAccountRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Name = strings.TrimSpace(r.Name)
	r.EmployeeCode = strings.TrimSpace(r.EmployeeCode)
	r.Phone = strings.TrimSpace(r.Phone)
}
