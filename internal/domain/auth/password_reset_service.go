package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/recaudopro/recaudo-api/internal/domain/user"
	"github.com/recaudopro/recaudo-api/internal/pkg/jwt"
	"github.com/recaudopro/recaudo-api/internal/pkg/logger"
	"github.com/recaudopro/recaudo-api/internal/pkg/mail"
	"github.com/recaudopro/recaudo-api/internal/pkg/password"
)

// PasswordResetService issues reset links and applies new passwords.
type PasswordResetService struct {
	identities IdentityRepository
	userRepo   user.Repository
	tokens     TokenStore
	mailer     mail.Sender
	baseURL    string
}

func NewPasswordResetService(identities IdentityRepository, userRepo user.Repository, tokens TokenStore, mailer mail.Sender, baseURL string) *PasswordResetService {
	return &PasswordResetService{
		identities: identities,
		userRepo:   userRepo,
		tokens:     tokens,
		mailer:     mailer,
		baseURL:    baseURL,
	}
}

// RequestReset mails a reset link to every matching identity. Unknown emails
// are not reported to the caller.
func (s *PasswordResetService) RequestReset(ctx context.Context, req *PasswordResetRequest) error {
	email := normalizeEmail(req.Email)

	var identities []Identity
	if req.BusinessID != nil {
		id, err := s.identities.GetByEmail(ctx, *req.BusinessID, email)
		if err != nil {
			return err
		}
		if id != nil {
			identities = append(identities, *id)
		}
	} else {
		found, err := s.identities.ListByEmail(ctx, email)
		if err != nil {
			return err
		}
		identities = found
	}

	if len(identities) == 0 {
		logger.LogDebug(ctx, "Password reset for unknown email")
		return nil
	}

	for _, id := range identities {
		if err := s.send(ctx, id); err != nil {
			logger.LogError(ctx, err, "Failed to send password reset", "identity_id", id.ID.String())
		}
	}
	return nil
}

func (s *PasswordResetService) send(ctx context.Context, id Identity) error {
	token, err := jwt.GenerateOpaqueToken()
	if err != nil {
		return err
	}
	if err := s.tokens.Set(ctx, keyPrefixReset+token, id.ID.String(), ResetTokenTTL); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	name := id.Email
	if u, err := s.userRepo.GetByID(ctx, id.ID); err == nil && u != nil && u.Name != nil {
		name = *u.Name
	}

	body, err := mail.RenderPasswordReset(mail.PasswordResetData{
		Name:     name,
		Link:     fmt.Sprintf("%s/reset-password?token=%s", s.baseURL, token),
		ValidFor: "1 hora",
	})
	if err != nil {
		return err
	}
	return s.mailer.Send(ctx, id.Email, mail.PasswordResetSubject, body)
}

// Confirm sets a new password for the identity behind a reset token. Tokens
// are single use.
func (s *PasswordResetService) Confirm(ctx context.Context, req *PasswordResetConfirmRequest) error {
	if !password.LongEnough(req.Password) {
		return ErrPasswordTooShort
	}

	key := keyPrefixReset + req.Token
	raw, err := s.tokens.Get(ctx, key)
	if err != nil {
		return ErrInvalidResetToken
	}
	identityID, err := uuid.Parse(raw)
	if err != nil {
		return ErrInvalidResetToken
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return err
	}
	if err := s.identities.UpdatePassword(ctx, identityID, hash); err != nil {
		return err
	}

	if err := s.tokens.Del(ctx, key); err != nil {
		logger.LogWarn(ctx, "Failed to delete reset token", "error", err.Error())
	}
	return nil
}
