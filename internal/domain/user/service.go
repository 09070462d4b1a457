package user

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/recaudopro/recaudo-api/internal/pkg/database"
	"github.com/recaudopro/recaudo-api/internal/pkg/logger"
)

// Service exposes roster queries.
type Service struct {
	repo Repository
}

// NewService creates user service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Roster lists the members of a business. The privileged function is tried
// first; when it is missing, fails or returns nothing, active users are read
// directly, and finally all users.
func (s *Service) Roster(ctx context.Context, businessID uuid.UUID) ([]User, error) {
	if businessID == uuid.Nil {
		return nil, ErrBusinessRequired
	}

	users, err := s.repo.ListByBusinessPrivileged(ctx, businessID)
	switch {
	case err == nil && len(users) > 0:
		return users, nil
	case err != nil && !database.IsPrivilegedPathUnavailable(err):
		logger.LogWarn(ctx, "privileged roster failed, using direct query",
			"business_id", businessID.String(), "error", err.Error())
	}

	users, err = s.repo.ListByBusiness(ctx, businessID, true)
	if err == nil && len(users) > 0 {
		return users, nil
	}
	if err != nil {
		logger.LogWarn(ctx, "active roster failed", "business_id", businessID.String(), "error", err.Error())
	}

	users, err = s.repo.ListByBusiness(ctx, businessID, false)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Get returns a member of businessID.
func (s *Service) Get(ctx context.Context, businessID, id uuid.UUID) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil || u.BusinessID != businessID {
		return nil, ErrUserNotFound
	}
	return u, nil
}
