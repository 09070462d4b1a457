package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/recaudopro/recaudo-api/internal/domain/user"
	"github.com/recaudopro/recaudo-api/internal/pkg/apperr"
	"github.com/recaudopro/recaudo-api/internal/pkg/jwt"
	"github.com/recaudopro/recaudo-api/internal/pkg/logger"
	"github.com/recaudopro/recaudo-api/internal/pkg/password"
)

// Service handles authentication business logic
type Service struct {
	identities IdentityRepository
	userRepo   user.Repository
	jwtService *jwt.Service
	tokens     TokenStore
}

// NewService creates auth service
func NewService(identities IdentityRepository, userRepo user.Repository, jwtService *jwt.Service, tokens TokenStore) *Service {
	return &Service{
		identities: identities,
		userRepo:   userRepo,
		jwtService: jwtService,
		tokens:     tokens,
	}
}

// Login authenticates a member of a business
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	if req.BusinessID == uuid.Nil {
		return nil, ErrInvalidCredentials
	}
	email := normalizeEmail(req.Email)

	// 1. Find identity
	id, err := s.identities.GetByEmail(ctx, req.BusinessID, email)
	if err != nil {
		return nil, err
	}
	if id == nil || !password.Verify(req.Password, id.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	// 2. Load profile
	u, err := s.userRepo.GetByID(ctx, id.ID)
	if err != nil {
		return nil, err
	}
	if u == nil || u.BusinessID != req.BusinessID {
		return nil, ErrUserNotFound
	}
	if !u.IsActive {
		return nil, ErrUserInactive
	}

	// 3. Generate tokens
	return s.generateTokens(ctx, u)
}

// Refresh rotates a refresh token
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	if refreshToken == "" {
		return nil, ErrRefreshTokenRequired
	}

	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	key := keyPrefixRefresh + jwt.HashRefreshToken(refreshToken)
	stored, err := s.tokens.Get(ctx, key)
	if err != nil || stored != claims.UserID.String() {
		return nil, ErrInvalidRefreshToken
	}

	u, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	if !u.IsActive {
		return nil, ErrUserInactive
	}

	_ = s.tokens.Del(ctx, key)
	return s.generateTokens(ctx, u)
}

// Logout invalidates a refresh token
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.tokens.Del(ctx, keyPrefixRefresh+jwt.HashRefreshToken(refreshToken))
}

// Me returns the profile of the caller.
func (s *Service) Me(ctx context.Context, userID, businessID uuid.UUID) (*user.User, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil || u.BusinessID != businessID {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// CreateUserAccount creates the login identity and then the profile. When the
// profile insert fails the identity is removed again.
func (s *Service) CreateUserAccount(ctx context.Context, businessID uuid.UUID, req *user.CreateAccountRequest) (*user.User, error) {
	if businessID == uuid.Nil {
		return nil, apperr.Invalid("business_id", user.ErrBusinessRequired)
	}
	if !password.LongEnough(req.Password) {
		return nil, apperr.Invalid("password", ErrPasswordTooShort)
	}
	req.Normalize()

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, wrapAccountError("hash_password", err)
	}

	id := &Identity{ID: uuid.New(), BusinessID: businessID, Email: req.Email, PasswordHash: hash}
	if err := s.identities.Create(ctx, id); err != nil {
		if isEmailTakenError(err) {
			return nil, user.ErrEmailAlreadyExists
		}
		return nil, wrapAccountError("create_identity", err)
	}

	u := &user.User{
		ID:           id.ID,
		BusinessID:   businessID,
		Email:        req.Email,
		Name:         optional(req.Name),
		EmployeeCode: optional(req.EmployeeCode),
		Phone:        optional(req.Phone),
		Role:         user.Role(req.Role),
		IsActive:     true,
	}
	if req.CommissionPercentage != nil {
		u.CommissionPercentage.Decimal = *req.CommissionPercentage
		u.CommissionPercentage.Valid = true
	}

	if err := s.userRepo.Create(ctx, u); err != nil {
		if rbErr := s.identities.Delete(ctx, id.ID); rbErr != nil {
			logger.LogError(ctx, rbErr, "Failed to roll back identity", "identity_id", id.ID.String())
		}
		return nil, wrapAccountError("create_profile", err)
	}
	return u, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// generateTokens creates access and refresh tokens
func (s *Service) generateTokens(ctx context.Context, u *user.User) (*AuthResponse, error) {
	accessToken, err := s.jwtService.GenerateAccessToken(u.ID, u.BusinessID, string(u.Role))
	if err != nil {
		return nil, err
	}

	refreshToken, _, err := s.jwtService.GenerateRefreshToken(u.ID, u.BusinessID, string(u.Role))
	if err != nil {
		return nil, err
	}

	// Store hash(refresh) in the token store
	key := keyPrefixRefresh + jwt.HashRefreshToken(refreshToken)
	if err := s.tokens.Set(ctx, key, u.ID.String(), s.jwtService.GetRefreshTTL()); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &AuthResponse{
		User: u,
		Tokens: TokensResponse{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresIn:    int(s.jwtService.GetAccessTTL().Seconds()),
		},
	}, nil
}
