package collection

import (
	"context"

	"github.com/google/uuid"

	"github.com/recaudopro/recaudo-api/internal/domain/credit"
	"github.com/recaudopro/recaudo-api/internal/pkg/logger"
)

// DefaultRecentLimit is used when ?limit= is absent.
const DefaultRecentLimit = 10

// CreditLookup resolves a credit inside a business.
type CreditLookup interface {
	GetByID(ctx context.Context, businessID, id uuid.UUID) (*credit.Credit, error)
}

// Notifier fans a recorded collection out to live subscribers of the business.
type Notifier interface {
	CollectionRecorded(ctx context.Context, c *Collection) error
}

// Service records and lists collections.
type Service struct {
	repo     Repository
	credits  CreditLookup
	notifier Notifier
}

// NewService creates collection service. notifier may be nil.
func NewService(repo Repository, credits CreditLookup, notifier Notifier) *Service {
	return &Service{repo: repo, credits: credits, notifier: notifier}
}

// Create records a payment made by userID against a credit of the business.
func (s *Service) Create(ctx context.Context, businessID, userID uuid.UUID, req *CreateCollectionRequest) (*Collection, error) {
	if !req.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if req.PaymentDate == nil || req.PaymentDate.IsZero() {
		return nil, ErrPaymentDateMissing
	}
	req.Normalize()

	cr, err := s.credits.GetByID(ctx, businessID, req.CreditID)
	if err != nil {
		return nil, err
	}
	if cr == nil {
		return nil, ErrCreditNotFound
	}
	if cr.ClientID != req.ClientID {
		return nil, ErrClientMismatch
	}

	c := &Collection{
		ID:                   uuid.New(),
		BusinessID:           businessID,
		CreditID:             req.CreditID,
		ClientID:             req.ClientID,
		UserID:               userID,
		Amount:               req.Amount,
		PaymentDate:          *req.PaymentDate,
		PaymentMethod:        req.PaymentMethod,
		TransactionReference: req.TransactionReference,
		Notes:                req.Notes,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		if err := s.notifier.CollectionRecorded(ctx, c); err != nil {
			logger.LogWarn(ctx, "Failed to publish collection", "collection_id", c.ID.String(), "error", err.Error())
		}
	}
	return c, nil
}

// List returns collections matching filter, newest payment first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Collection, error) {
	return s.repo.List(ctx, filter)
}

// Recent returns the latest limit collections of the business.
func (s *Service) Recent(ctx context.Context, businessID uuid.UUID, limit int) ([]Collection, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	return s.repo.ListRecent(ctx, businessID, limit)
}
