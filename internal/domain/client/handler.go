package client

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/recaudopro/recaudo-api/internal/middleware"
	"github.com/recaudopro/recaudo-api/internal/pkg/errorhandler"
	"github.com/recaudopro/recaudo-api/internal/pkg/query"
	"github.com/recaudopro/recaudo-api/internal/pkg/response"
	"github.com/recaudopro/recaudo-api/internal/pkg/validator"
)

// Handler serves /clients.
type Handler struct {
	service *Service
	loc     *time.Location
}

// NewHandler creates client handler
func NewHandler(service *Service, loc *time.Location) *Handler {
	return &Handler{service: service, loc: loc}
}

// List handles GET /clients. With ?q= it searches by name or document.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	businessID := middleware.GetBusinessID(r.Context())

	if r.URL.Query().Has("q") {
		clients, err := h.service.Search(r.Context(), businessID, r.URL.Query().Get("q"))
		if err != nil {
			h.handleError(w, r, err)
			return
		}
		response.WithMeta(w, clients, response.Meta{Total: len(clients)})
		return
	}

	filter := ListFilter{BusinessID: businessID}
	var err error
	if filter.StartDate, err = query.Date(r, "start_date", h.loc, false); err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	if filter.EndDate, err = query.Date(r, "end_date", h.loc, true); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	clients, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	response.WithMeta(w, clients, response.Meta{Total: len(clients)})
}

// Create handles POST /clients
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateClientRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		errorhandler.LogValidationError(r.Context(), errs)
		response.ValidationError(w, errs)
		return
	}

	c, err := h.service.Create(r.Context(), middleware.GetBusinessID(r.Context()), &req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	response.Created(w, c)
}

// Get handles GET /clients/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid client id")
		return
	}
	c, err := h.service.Get(r.Context(), middleware.GetBusinessID(r.Context()), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	response.OK(w, c)
}

// Update handles PATCH /clients/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid client id")
		return
	}
	var req UpdateClientRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	c, err := h.service.Update(r.Context(), middleware.GetBusinessID(r.Context()), id, &req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	response.OK(w, c)
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrClientNotFound):
		response.NotFound(w, "Client not found")
	case errors.Is(err, ErrNameRequired):
		response.ValidationError(w, map[string]string{"name": "This field is required"})
	case errors.Is(err, ErrPhoneRequired):
		response.ValidationError(w, map[string]string{"phone": "This field is required"})
	case errors.Is(err, ErrInvalidPhone):
		response.ValidationError(w, map[string]string{"phone": "Invalid phone number"})
	case errors.Is(err, ErrEmptySearch):
		response.BadRequest(w, "Search text is required")
	default:
		errorhandler.Handle(r.Context(), w, err)
	}
}

// Routes returns /clients routes.
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.Update)

	return r
}
