package auth

import (
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/recaudopro/recaudo-api/internal/domain/user"
	"github.com/recaudopro/recaudo-api/internal/pkg/database"
)

const identityEmailIndex = "auth_identities_business_email_idx"

// DBErrorDetails contains diagnostics extracted from PostgreSQL errors.
type DBErrorDetails struct {
	SQLState   string
	Constraint string
	Table      string
	Detail     string
}

func extractDBErrorDetails(err error) *DBErrorDetails {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}
	return &DBErrorDetails{
		SQLState:   string(pqErr.Code),
		Constraint: pqErr.Constraint,
		Table:      pqErr.Table,
		Detail:     pqErr.Detail,
	}
}

// isEmailTakenError reports a duplicate (business, email) identity.
func isEmailTakenError(err error) bool {
	if errors.Is(err, user.ErrEmailAlreadyExists) {
		return true
	}
	if !database.IsUniqueViolation(err) {
		return false
	}
	details := extractDBErrorDetails(err)
	return details.Constraint == identityEmailIndex || details.Table == "auth_identities"
}

func wrapAccountError(step string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("create account step %s: %w", step, err)
}
