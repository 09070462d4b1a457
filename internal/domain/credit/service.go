package credit

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/recaudopro/recaudo-api/internal/domain/client"
)

// maxPlanRatio caps installment_amount * total_installments relative to total_amount.
var maxPlanRatio = decimal.RequireFromString("1.1")

// ClientLookup resolves a client inside a business.
type ClientLookup interface {
	GetByID(ctx context.Context, businessID, id uuid.UUID) (*client.Client, error)
}

// Service implements credit CRUD.
type Service struct {
	repo    Repository
	clients ClientLookup
}

// NewService creates credit service
func NewService(repo Repository, clients ClientLookup) *Service {
	return &Service{repo: repo, clients: clients}
}

func validatePlan(total, installment decimal.Decimal, installments int) error {
	if !total.IsPositive() || !installment.IsPositive() {
		return ErrInvalidAmount
	}
	if installments <= 0 {
		return ErrInvalidInstallments
	}
	if installment.Mul(decimal.NewFromInt(int64(installments))).GreaterThan(total.Mul(maxPlanRatio)) {
		return ErrInstallmentsExceedCap
	}
	return nil
}

// Create grants a new credit. It starts with no paid or overdue installments
// and a balance equal to the principal.
func (s *Service) Create(ctx context.Context, businessID uuid.UUID, req *CreateCreditRequest) (*Credit, error) {
	if err := validatePlan(req.TotalAmount, req.InstallmentAmount, req.TotalInstallments); err != nil {
		return nil, err
	}

	cl, err := s.clients.GetByID(ctx, businessID, req.ClientID)
	if err != nil {
		return nil, err
	}
	if cl == nil {
		return nil, ErrClientNotFound
	}

	c := &Credit{
		ID:                  uuid.New(),
		BusinessID:          businessID,
		ClientID:            req.ClientID,
		TotalAmount:         req.TotalAmount,
		InstallmentAmount:   req.InstallmentAmount,
		TotalInstallments:   req.TotalInstallments,
		PaidInstallments:    0,
		OverdueInstallments: 0,
		TotalBalance:        req.TotalAmount,
		NextDueDate:         req.NextDueDate,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Update applies a partial update scoped to businessID.
func (s *Service) Update(ctx context.Context, businessID, id uuid.UUID, req *UpdateCreditRequest) (*Credit, error) {
	if req.TotalBalance != nil && req.TotalBalance.IsNegative() {
		return nil, ErrNegativeBalance
	}

	c, err := s.Get(ctx, businessID, id)
	if err != nil {
		return nil, err
	}
	if req.empty() {
		return c, nil
	}

	req.apply(c)
	if req.TotalAmount != nil || req.InstallmentAmount != nil || req.TotalInstallments != nil {
		if err := validatePlan(c.TotalAmount, c.InstallmentAmount, c.TotalInstallments); err != nil {
			return nil, err
		}
	}
	if c.PaidInstallments+c.OverdueInstallments > c.TotalInstallments {
		return nil, ErrInstallmentCounts
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Get returns one credit of the business.
func (s *Service) Get(ctx context.Context, businessID, id uuid.UUID) (*Credit, error) {
	c, err := s.repo.GetByID(ctx, businessID, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCreditNotFound
	}
	return c, nil
}

// List returns credits matching filter, newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Credit, error) {
	return s.repo.List(ctx, filter)
}
