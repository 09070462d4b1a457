package client

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/recaudopro/recaudo-api/internal/pkg/phone"
)

const searchLimit = 50

// Service implements client CRUD for one business at a time.
type Service struct {
	repo        Repository
	phoneRegion string
}

// NewService creates client service. phoneRegion is the ISO country used for
// numbers typed without an international prefix.
func NewService(repo Repository, phoneRegion string) *Service {
	return &Service{repo: repo, phoneRegion: phoneRegion}
}

// Create stores a new client.
func (s *Service) Create(ctx context.Context, businessID uuid.UUID, req *CreateClientRequest) (*Client, error) {
	req.normalize()
	if req.Name == "" {
		return nil, ErrNameRequired
	}
	if req.Phone == "" {
		return nil, ErrPhoneRequired
	}
	normalized, err := phone.Normalize(req.Phone, s.phoneRegion)
	if err != nil {
		return nil, ErrInvalidPhone
	}

	c := &Client{
		ID:         uuid.New(),
		BusinessID: businessID,
		Name:       req.Name,
		Phone:      normalized,
		DocumentID: req.DocumentID,
		Address:    req.Address,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Update applies a partial update. An empty update returns the stored client.
func (s *Service) Update(ctx context.Context, businessID, id uuid.UUID, req *UpdateClientRequest) (*Client, error) {
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		req.Name = &name
	}
	if req.Phone != nil {
		normalized, err := phone.Normalize(*req.Phone, s.phoneRegion)
		if err != nil {
			return nil, ErrInvalidPhone
		}
		req.Phone = &normalized
	}
	if req.empty() {
		return s.Get(ctx, businessID, id)
	}

	c, err := s.repo.Update(ctx, businessID, id, req)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrClientNotFound
	}
	return c, nil
}

// Get returns one client of the business.
func (s *Service) Get(ctx context.Context, businessID, id uuid.UUID) (*Client, error) {
	c, err := s.repo.GetByID(ctx, businessID, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrClientNotFound
	}
	return c, nil
}

// Search matches text against name or document id, case-insensitively.
func (s *Service) Search(ctx context.Context, businessID uuid.UUID, text string) ([]Client, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptySearch
	}
	return s.repo.Search(ctx, businessID, text, searchLimit)
}

// List returns clients matching filter, newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Client, error) {
	return s.repo.List(ctx, filter)
}
