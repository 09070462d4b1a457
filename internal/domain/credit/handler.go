package credit

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

// Handler serves /credits.
type Handler struct {
	service *Service
	loc     *time.Location
}

// NewHandler creates credit handler
func NewHandler(service *Service, loc *time.Location) *Handler {
	return &Handler{service: service, loc: loc}
}

// List handles GET /credits?client_id=&start_date=&end_date=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{BusinessID: middleware.GetBusinessID(r.Context())}
	var err error
	if filter.ClientID, err = query.UUID(r, "client_id"); err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	if filter.StartDate, err = query.Date(r, "start_date", h.loc, false); err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	if filter.EndDate, err = query.Date(r, "end_date", h.loc, true); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	credits, err := h.service.List(r.Context(), filter)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.WithMeta(w, credits, response.Meta{Total: len(credits)})
}

// Create handles POST /credits
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCreditRequest
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

// Get handles GET /credits/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid credit id")
		return
	}
	c, err := h.service.Get(r.Context(), middleware.GetBusinessID(r.Context()), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	response.OK(w, c)
}

// Update handles PATCH /credits/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid credit id")
		return
	}
	var req UpdateCreditRequest
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
	case errors.Is(err, ErrCreditNotFound):
		response.NotFound(w, "Credit not found")
	case errors.Is(err, ErrClientNotFound):
		response.ValidationError(w, map[string]string{"client_id": "Client not found"})
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrInvalidInstallments),
		errors.Is(err, ErrInstallmentsExceedCap), errors.Is(err, ErrInstallmentCounts):
		response.ValidationError(w, map[string]string{"plan": err.Error()})
	case errors.Is(err, ErrNegativeBalance):
		response.ValidationError(w, map[string]string{"total_balance": err.Error()})
	default:
		errorhandler.Handle(r.Context(), w, err)
	}
}

// Routes returns /credits routes.
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.With(middleware.RequireManager()).Patch("/{id}", h.Update)

	return r
}
