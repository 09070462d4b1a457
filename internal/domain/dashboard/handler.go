package dashboard

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/recaudopro/recaudo-api/internal/middleware"
	"github.com/recaudopro/recaudo-api/internal/pkg/errorhandler"
	"github.com/recaudopro/recaudo-api/internal/pkg/query"
	"github.com/recaudopro/recaudo-api/internal/pkg/requestseq"
	"github.com/recaudopro/recaudo-api/internal/pkg/response"
)

// Handler handles dashboard HTTP requests
type Handler struct {
	aggregator *Aggregator
	seq        *requestseq.Tracker
	loc        *time.Location
}

// NewHandler creates new dashboard handler
func NewHandler(aggregator *Aggregator, seq *requestseq.Tracker, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{aggregator: aggregator, seq: seq, loc: loc}
}

// GetStats returns the dashboard snapshot
// GET /api/v1/dashboard/stats?start_date=&end_date=
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	req := Request{BusinessID: middleware.GetBusinessID(ctx)}
	var err error
	if req.StartDate, err = query.Date(r, "start_date", h.loc, false); err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	if req.EndDate, err = query.Date(r, "end_date", h.loc, false); err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	// A half-given window is ignored and the current week is reported.
	if req.hasWindow() && req.StartDate.After(*req.EndDate) {
		response.BadRequest(w, "start_date must not be after end_date")
		return
	}

	ticket, current := h.seq.Start(r, userID.String(), "dashboard")
	if !current {
		response.Superseded(w)
		return
	}

	stats, err := h.aggregator.Stats(ctx, req)
	if err != nil {
		errorhandler.Handle(ctx, w, err)
		return
	}
	if ticket.Superseded(ctx) {
		response.Superseded(w)
		return
	}

	response.OK(w, stats)
}

// Routes returns dashboard routes
func Routes(h *Handler, authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Get("/stats", h.GetStats)

	return r
}
