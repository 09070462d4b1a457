package auth

import (
	"errors"
	"net/http"

	"github.com/recaudopro/recaudo-api/internal/middleware"
	"github.com/recaudopro/recaudo-api/internal/pkg/errorhandler"
	"github.com/recaudopro/recaudo-api/internal/pkg/response"
	"github.com/recaudopro/recaudo-api/internal/pkg/validator"
)

// Handler handles auth HTTP requests
type Handler struct {
	service *Service
	resets  *PasswordResetService
}

// NewHandler creates auth handler
func NewHandler(service *Service, resets *PasswordResetService) *Handler {
	return &Handler{service: service, resets: resets}
}

// Login handles POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	// Validate request
	if errs := validator.Validate(&req); errs != nil {
		errorhandler.LogValidationError(r.Context(), errs)
		response.ValidationError(w, errs)
		return
	}

	result, err := h.service.Login(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrUserNotFound):
			response.Unauthorized(w, "Invalid email or password")
		case errors.Is(err, ErrUserInactive):
			response.Forbidden(w, "Account is inactive")
		default:
			errorhandler.Handle(r.Context(), w, err)
		}
		return
	}

	response.OK(w, result)
}

// Refresh handles POST /auth/refresh
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	result, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, ErrUserInactive) {
			response.Forbidden(w, "Account is inactive")
			return
		}
		response.Unauthorized(w, "Invalid or expired refresh token")
		return
	}

	response.OK(w, result)
}

// Logout handles POST /auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	_ = h.service.Logout(r.Context(), req.RefreshToken)

	response.NoContent(w)
}

// Me handles GET /auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	u, err := h.service.Me(ctx, middleware.GetUserID(ctx), middleware.GetBusinessID(ctx))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.NotFound(w, "User not found")
			return
		}
		errorhandler.Handle(ctx, w, err)
		return
	}

	response.OK(w, u)
}

// RequestPasswordReset handles POST /auth/password/reset. The answer is the
// same whether or not the email exists.
func (h *Handler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req PasswordResetRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	if err := h.resets.RequestReset(r.Context(), &req); err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}

	response.Accepted(w, map[string]string{"status": "sent"})
}

// ConfirmPasswordReset handles POST /auth/password/confirm
func (h *Handler) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req PasswordResetConfirmRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	err := h.resets.Confirm(r.Context(), &req)
	switch {
	case err == nil:
		response.NoContent(w)
	case errors.Is(err, ErrInvalidResetToken), errors.Is(err, ErrUserNotFound):
		response.BadRequest(w, "Invalid or expired reset token")
	case errors.Is(err, ErrPasswordTooShort):
		response.ValidationError(w, map[string]string{"password": "min=6"})
	default:
		errorhandler.Handle(r.Context(), w, err)
	}
}
