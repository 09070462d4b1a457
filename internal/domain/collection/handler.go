package collection

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/recaudopro/recaudo-api/internal/middleware"
	"github.com/recaudopro/recaudo-api/internal/pkg/errorhandler"
	"github.com/recaudopro/recaudo-api/internal/pkg/query"
	"github.com/recaudopro/recaudo-api/internal/pkg/response"
	"github.com/recaudopro/recaudo-api/internal/pkg/validator"
)

// Handler serves /collections.
type Handler struct {
	service *Service
	loc     *time.Location
}

// NewHandler creates collection handler
func NewHandler(service *Service, loc *time.Location) *Handler {
	return &Handler{service: service, loc: loc}
}

// List handles GET /collections. ?limit= returns the most recent rows; otherwise
// client_id, credit_id, start_date and end_date filter the listing.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	businessID := middleware.GetBusinessID(r.Context())

	if r.URL.Query().Has("limit") {
		limit, err := query.Int(r, "limit", DefaultRecentLimit)
		if err != nil {
			response.BadRequest(w, err.Error())
			return
		}
		rows, err := h.service.Recent(r.Context(), businessID, limit)
		if err != nil {
			h.handleError(w, r, err)
			return
		}
		response.WithMeta(w, rows, response.Meta{Total: len(rows)})
		return
	}

	filter := ListFilter{BusinessID: businessID}
	var err error
	if filter.ClientID, err = query.UUID(r, "client_id"); err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	if filter.CreditID, err = query.UUID(r, "credit_id"); err != nil {
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

	rows, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	response.WithMeta(w, rows, response.Meta{Total: len(rows)})
}

// Create handles POST /collections. The caller is recorded as the collector.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCollectionRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		errorhandler.LogValidationError(r.Context(), errs)
		response.ValidationError(w, errs)
		return
	}

	ctx := r.Context()
	c, err := h.service.Create(ctx, middleware.GetBusinessID(ctx), middleware.GetUserID(ctx), &req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	response.Created(w, c)
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrCreditNotFound):
		response.ValidationError(w, map[string]string{"credit_id": "Credit not found"})
	case errors.Is(err, ErrClientMismatch):
		response.ValidationError(w, map[string]string{"client_id": err.Error()})
	case errors.Is(err, ErrInvalidAmount):
		response.ValidationError(w, map[string]string{"amount": err.Error()})
	case errors.Is(err, ErrPaymentDateMissing):
		response.ValidationError(w, map[string]string{"payment_date": "This field is required"})
	case errors.Is(err, ErrInvalidLimit):
		response.BadRequest(w, err.Error())
	default:
		errorhandler.Handle(r.Context(), w, err)
	}
}

// Routes returns /collections routes.
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Get("/", h.List)
	r.Post("/", h.Create)

	return r
}
