package user

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Role of a user inside a business.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleCobrador   Role = "cobrador"
	RoleSupervisor Role = "supervisor"
)

// User is a tenant member profile. Credentials live in auth_identities.
type User struct {
	ID                   uuid.UUID           `db:"id" json:"id"`
	BusinessID           uuid.UUID           `db:"business_id" json:"business_id"`
	Email                string              `db:"email" json:"email"`
	Name                 *string             `db:"name" json:"name"`
	AvatarURL            *string             `db:"avatar_url" json:"avatar_url"`
	EmployeeCode         *string             `db:"employee_code" json:"employee_code"`
	Phone                *string             `db:"phone" json:"phone"`
	Role                 Role                `db:"role" json:"role"`
	CommissionPercentage decimal.NullDecimal `db:"commission_percentage" json:"commission_percentage"`
	IsActive             bool                `db:"is_active" json:"is_active"`
	CreatedAt            time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time           `db:"updated_at" json:"updated_at"`
}

// IsAdmin returns true if user is an admin
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanManage reports whether the user may administer other members.
func (u *User) CanManage() bool {
	return u.Role == RoleAdmin || u.Role == RoleSupervisor
}

// IsValidRole checks if role is one of the tenant roles.
func IsValidRole(role string) bool {
	switch Role(role) {
	case RoleAdmin, RoleCobrador, RoleSupervisor:
		return true
	}
	return false
}

// EmailIndex maps user id to email.
func EmailIndex(users []User) map[uuid.UUID]string {
	idx := make(map[uuid.UUID]string, len(users))
	for _, u := range users {
		idx[u.ID] = u.Email
	}
	return idx
}
