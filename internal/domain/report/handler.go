package report

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/recaudopro/recaudo-api/internal/middleware"
	"github.com/recaudopro/recaudo-api/internal/pkg/errorhandler"
	"github.com/recaudopro/recaudo-api/internal/pkg/logger"
	"github.com/recaudopro/recaudo-api/internal/pkg/query"
	"github.com/recaudopro/recaudo-api/internal/pkg/requestseq"
	"github.com/recaudopro/recaudo-api/internal/pkg/response"
	"github.com/recaudopro/recaudo-api/internal/pkg/spreadsheet"
	"github.com/recaudopro/recaudo-api/internal/pkg/storage"
)

// Response headers describing how a report was produced.
const (
	HeaderSource    = "X-Data-Source"
	HeaderDegraded  = "X-Data-Degraded"
	HeaderExportURL = "X-Export-URL"
)

// Handler serves /reports.
type Handler struct {
	engine  *Engine
	seq     *requestseq.Tracker
	archive storage.Storage
	loc     *time.Location
	now     func() time.Time
}

// NewHandler creates report handler. archive may be nil to skip archiving exports.
func NewHandler(engine *Engine, seq *requestseq.Tracker, archive storage.Storage, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{engine: engine, seq: seq, archive: archive, loc: loc, now: time.Now}
}

func (h *Handler) filter(r *http.Request) (Filter, error) {
	f := Filter{
		BusinessID:    middleware.GetBusinessID(r.Context()),
		UserEmail:     query.String(r, "user_email"),
		PaymentMethod: query.String(r, "payment_method"),
	}
	var err error
	if f.ClientID, err = query.UUID(r, "client_id"); err != nil {
		return f, err
	}
	if f.StartDate, err = query.Date(r, "start_date", h.loc, false); err != nil {
		return f, err
	}
	if f.EndDate, err = query.Date(r, "end_date", h.loc, true); err != nil {
		return f, err
	}
	return f, nil
}

// view runs build for the request and writes its rows, or a spreadsheet when
// export is set. Superseded requests get 409 instead of their rows.
func view[T any](h *Handler, w http.ResponseWriter, r *http.Request, name string, export bool,
	build func(context.Context, Filter) (Result[T], error), table func([]T) spreadsheet.Table) {
	ctx := r.Context()
	f, err := h.filter(r)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	ticket, current := h.seq.Start(r, middleware.GetUserID(ctx).String(), "reports."+name)
	if !current {
		response.Superseded(w)
		return
	}

	res, err := build(ctx, f)
	if err != nil {
		errorhandler.Handle(ctx, w, err)
		return
	}
	if ticket.Superseded(ctx) {
		logger.LogDebug(ctx, "dropping superseded report", "view", name)
		response.Superseded(w)
		return
	}

	w.Header().Set(HeaderSource, string(res.Source))
	if res.Degraded {
		w.Header().Set(HeaderDegraded, strconv.FormatBool(true))
	}

	if !export {
		response.WithMeta(w, res.Rows, response.Meta{Total: len(res.Rows), Source: string(res.Source), Degraded: res.Degraded})
		return
	}

	body, err := spreadsheet.Render(table(res.Rows))
	if err != nil {
		errorhandler.Handle(ctx, w, err)
		return
	}
	now := h.now().In(h.loc)
	filename := spreadsheet.Filename(exportPrefix[name], now)
	if h.archive != nil {
		key := storage.ExportKey(f.BusinessID.String(), now, filename)
		if err := h.archive.Put(ctx, key, bytes.NewReader(body), spreadsheet.ContentType); err != nil {
			logger.LogWarn(ctx, "export archive failed", "key", key, "error", err.Error())
		} else {
			w.Header().Set(HeaderExportURL, h.archive.GetURL(key))
		}
	}
	response.Attachment(w, spreadsheet.ContentType, filename, body)
}

var exportPrefix = map[string]string{
	"clients":     "clientes",
	"credits":     "creditos",
	"collections": "cobros",
}

// Clients handles GET /reports/clients
func (h *Handler) Clients(w http.ResponseWriter, r *http.Request) {
	view(h, w, r, "clients", false, h.engine.Clients, clientsTable)
}

// Credits handles GET /reports/credits
func (h *Handler) Credits(w http.ResponseWriter, r *http.Request) {
	view(h, w, r, "credits", false, h.engine.Credits, creditsTable)
}

// Collections handles GET /reports/collections
func (h *Handler) Collections(w http.ResponseWriter, r *http.Request) {
	view(h, w, r, "collections", false, h.engine.Collections, collectionsTable)
}

// Export handles GET /reports/{view}/export
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	switch chi.URLParam(r, "view") {
	case "clients":
		view(h, w, r, "clients", true, h.engine.Clients, clientsTable)
	case "credits":
		view(h, w, r, "credits", true, h.engine.Credits, creditsTable)
	case "collections":
		view(h, w, r, "collections", true, h.engine.Collections, collectionsTable)
	default:
		response.NotFound(w, "Unknown report")
	}
}

// Routes returns /reports routes.
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Get("/clients", h.Clients)
	r.Get("/credits", h.Credits)
	r.Get("/collections", h.Collections)
	r.Get("/{view}/export", h.Export)

	return r
}
