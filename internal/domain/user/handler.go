package user

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/recaudopro/recaudo-api/internal/middleware"
	"github.com/recaudopro/recaudo-api/internal/pkg/errorhandler"
	"github.com/recaudopro/recaudo-api/internal/pkg/response"
	"github.com/recaudopro/recaudo-api/internal/pkg/validator"
)

// AccountCreator provisions a login identity together with its profile.
type AccountCreator interface {
	CreateUserAccount(ctx context.Context, businessID uuid.UUID, req *CreateAccountRequest) (*User, error)
}

// Handler serves /users.
type Handler struct {
	service  *Service
	accounts AccountCreator
}

// NewHandler creates user handler
func NewHandler(service *Service, accounts AccountCreator) *Handler {
	return &Handler{service: service, accounts: accounts}
}

// List handles GET /users
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.Roster(r.Context(), middleware.GetBusinessID(r.Context()))
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.WithMeta(w, users, response.Meta{Total: len(users)})
}

// Get handles GET /users/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid user id")
		return
	}
	u, err := h.service.Get(r.Context(), middleware.GetBusinessID(r.Context()), id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.NotFound(w, "User not found")
			return
		}
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.OK(w, u)
}

// Create handles POST /users
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	req.Normalize()
	if errs := validator.Validate(&req); errs != nil {
		errorhandler.LogValidationError(r.Context(), errs)
		response.ValidationError(w, errs)
		return
	}

	u, err := h.accounts.CreateUserAccount(r.Context(), middleware.GetBusinessID(r.Context()), &req)
	if err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			response.Conflict(w, "Email already registered for this business")
			return
		}
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.Created(w, u)
}

// Routes returns /users routes.
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.With(middleware.RequireAdmin()).Post("/", h.Create)

	return r
}
