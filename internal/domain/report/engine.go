package report

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/recaudopro/recaudo-api/internal/domain/client"
	"github.com/recaudopro/recaudo-api/internal/domain/collection"
	"github.com/recaudopro/recaudo-api/internal/domain/credit"
	"github.com/recaudopro/recaudo-api/internal/domain/user"
	"github.com/recaudopro/recaudo-api/internal/pkg/apperr"
	"github.com/recaudopro/recaudo-api/internal/pkg/database"
	"github.com/recaudopro/recaudo-api/internal/pkg/logger"
)

// UserStore is the roster access the engine needs.
type UserStore interface {
	ListByBusinessPrivileged(ctx context.Context, businessID uuid.UUID) ([]user.User, error)
	ListByIDs(ctx context.Context, businessID uuid.UUID, ids []uuid.UUID) ([]user.User, error)
}

// ClientStore is the client access the engine needs.
type ClientStore interface {
	ListPrivileged(ctx context.Context, businessID uuid.UUID) ([]client.Client, error)
	List(ctx context.Context, filter client.ListFilter) ([]client.Client, error)
}

// CreditStore is the credit access the engine needs.
type CreditStore interface {
	ListPrivileged(ctx context.Context, businessID uuid.UUID) ([]credit.Credit, error)
	List(ctx context.Context, filter credit.ListFilter) ([]credit.Credit, error)
	ListByClientIDs(ctx context.Context, businessID uuid.UUID, clientIDs []uuid.UUID) ([]credit.Credit, error)
}

// CollectionStore is the collection access the engine needs.
type CollectionStore interface {
	ListPrivileged(ctx context.Context, businessID uuid.UUID) ([]collection.Collection, error)
	List(ctx context.Context, filter collection.ListFilter) ([]collection.Collection, error)
	ListByClientIDs(ctx context.Context, businessID uuid.UUID, clientIDs []uuid.UUID) ([]collection.Collection, error)
	ListByCreditIDs(ctx context.Context, businessID uuid.UUID, creditIDs []uuid.UUID) ([]collection.Collection, error)
}

// ClientWithCredits is a client with its credit totals and main collector.
type ClientWithCredits struct {
	client.Client
	TotalCredits int             `json:"total_credits"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	TotalBalance decimal.Decimal `json:"total_balance"`
	UserEmail    *string         `json:"user_email"`
}

// CreditWithUserEmail is a credit with its main collector and latest payment method.
type CreditWithUserEmail struct {
	credit.Credit
	UserEmail     *string `json:"user_email"`
	PaymentMethod *string `json:"payment_method"`
}

// CollectionWithUserEmail is a collection with the email of its collector.
type CollectionWithUserEmail struct {
	collection.Collection
	UserEmail *string `json:"user_email"`
}

// Engine builds the enriched report views. It never writes.
type Engine struct {
	users       UserStore
	clients     ClientStore
	credits     CreditStore
	collections CollectionStore
}

// NewEngine creates the report engine
func NewEngine(users UserStore, clients ClientStore, credits CreditStore, collections CollectionStore) *Engine {
	return &Engine{users: users, clients: clients, credits: credits, collections: collections}
}

// Clients returns every matching client with credit totals and the email of
// the user who recorded most of its collections.
func (e *Engine) Clients(ctx context.Context, f Filter) (Result[ClientWithCredits], error) {
	res := Result[ClientWithCredits]{Rows: []ClientWithCredits{}}
	if err := f.validate(); err != nil {
		return res, err
	}

	cf := f.clientFilter()
	clients, source, err := twoPath[client.Client]{
		what:       "clients",
		privileged: func(ctx context.Context) ([]client.Client, error) { return e.clients.ListPrivileged(ctx, f.BusinessID) },
		keep:       cf.Matches,
		direct:     func(ctx context.Context) ([]client.Client, error) { return e.clients.List(ctx, cf) },
	}.fetch(ctx)
	res.Source = source
	if err != nil || len(clients) == 0 {
		return res, err
	}

	ids := make([]uuid.UUID, len(clients))
	for i := range clients {
		ids[i] = clients[i].ID
	}
	credits, err := e.credits.ListByClientIDs(ctx, f.BusinessID, ids)
	if err != nil {
		return res, apperr.FetchFailed("fetch credits for clients", err)
	}
	payments, err := e.collections.ListByClientIDs(ctx, f.BusinessID, ids)
	if err != nil {
		return res, apperr.FetchFailed("fetch collections for clients", err)
	}

	emails, degraded := e.roster(ctx, f.BusinessID, payments)
	res.Degraded = degraded

	creditsByClient := make(map[uuid.UUID][]*credit.Credit, len(clients))
	for i := range credits {
		c := &credits[i]
		creditsByClient[c.ClientID] = append(creditsByClient[c.ClientID], c)
	}
	tallies := make(map[uuid.UUID]*tally, len(clients))
	for i := range payments {
		p := &payments[i]
		t, ok := tallies[p.ClientID]
		if !ok {
			t = newTally()
			tallies[p.ClientID] = t
		}
		t.add(p.UserID)
	}

	want, filterByEmail := f.userEmail()
	for _, c := range clients {
		row := ClientWithCredits{Client: c, TotalAmount: decimal.Zero, TotalBalance: decimal.Zero}
		for _, cr := range creditsByClient[c.ID] {
			row.TotalCredits++
			row.TotalAmount = row.TotalAmount.Add(cr.TotalAmount)
			row.TotalBalance = row.TotalBalance.Add(cr.TotalBalance)
		}
		row.UserEmail = primaryEmail(tallies[c.ID], emails)
		if filterByEmail && (row.UserEmail == nil || *row.UserEmail != want) {
			continue
		}
		res.Rows = append(res.Rows, row)
	}

	logger.LogInfo(ctx, "clients report built", "business_id", f.BusinessID.String(), "source", source,
		"clients", len(clients), "credits", len(credits), "collections", len(payments), "rows", len(res.Rows))
	return res, nil
}

// Credits returns every matching credit with its main collector and the
// payment method of its most recent collection.
func (e *Engine) Credits(ctx context.Context, f Filter) (Result[CreditWithUserEmail], error) {
	res := Result[CreditWithUserEmail]{Rows: []CreditWithUserEmail{}}
	if err := f.validate(); err != nil {
		return res, err
	}

	cf := f.creditFilter()
	credits, source, err := twoPath[credit.Credit]{
		what:       "credits",
		privileged: func(ctx context.Context) ([]credit.Credit, error) { return e.credits.ListPrivileged(ctx, f.BusinessID) },
		keep:       cf.Matches,
		direct:     func(ctx context.Context) ([]credit.Credit, error) { return e.credits.List(ctx, cf) },
	}.fetch(ctx)
	res.Source = source
	if err != nil || len(credits) == 0 {
		return res, err
	}

	ids := make([]uuid.UUID, len(credits))
	for i := range credits {
		ids[i] = credits[i].ID
	}
	payments, err := e.collections.ListByCreditIDs(ctx, f.BusinessID, ids)
	if err != nil {
		return res, apperr.FetchFailed("fetch collections for credits", err)
	}

	emails, degraded := e.roster(ctx, f.BusinessID, payments)
	res.Degraded = degraded

	byCredit := make(map[uuid.UUID][]*collection.Collection, len(credits))
	for i := range payments {
		p := &payments[i]
		byCredit[p.CreditID] = append(byCredit[p.CreditID], p)
	}

	want, filterByEmail := f.userEmail()
	for _, c := range credits {
		row := CreditWithUserEmail{Credit: c}
		t := newTally()
		var latest *collection.Collection
		for _, p := range byCredit[c.ID] {
			t.add(p.UserID)
			if latest == nil || p.PaymentDate.After(latest.PaymentDate) {
				latest = p
			}
		}
		row.UserEmail = primaryEmail(t, emails)
		if latest != nil {
			row.PaymentMethod = latest.PaymentMethod
		}
		if filterByEmail && (row.UserEmail == nil || *row.UserEmail != want) {
			continue
		}
		res.Rows = append(res.Rows, row)
	}

	logger.LogInfo(ctx, "credits report built", "business_id", f.BusinessID.String(), "source", source,
		"credits", len(credits), "collections", len(payments), "rows", len(res.Rows))
	return res, nil
}

// Collections returns every matching collection with its collector email.
func (e *Engine) Collections(ctx context.Context, f Filter) (Result[CollectionWithUserEmail], error) {
	res := Result[CollectionWithUserEmail]{Rows: []CollectionWithUserEmail{}}
	if err := f.validate(); err != nil {
		return res, err
	}

	cf := f.collectionFilter()
	payments, source, err := twoPath[collection.Collection]{
		what:       "collections",
		privileged: func(ctx context.Context) ([]collection.Collection, error) { return e.collections.ListPrivileged(ctx, f.BusinessID) },
		keep:       cf.Matches,
		direct:     func(ctx context.Context) ([]collection.Collection, error) { return e.collections.List(ctx, cf) },
	}.fetch(ctx)
	res.Source = source
	if err != nil || len(payments) == 0 {
		return res, err
	}

	emails, degraded := e.roster(ctx, f.BusinessID, payments)
	res.Degraded = degraded

	want, filterByEmail := f.userEmail()
	for _, p := range payments {
		row := CollectionWithUserEmail{Collection: p}
		if email, ok := emails[p.UserID]; ok {
			row.UserEmail = &email
		}
		if filterByEmail && (row.UserEmail == nil || *row.UserEmail != want) {
			continue
		}
		res.Rows = append(res.Rows, row)
	}

	logger.LogInfo(ctx, "collections report built", "business_id", f.BusinessID.String(), "source", source,
		"collections", len(payments), "rows", len(res.Rows))
	return res, nil
}

// roster maps user ids to emails. The tenant-wide reader is tried first; when
// it is unavailable, fails or is empty, only the users seen in payments are
// looked up. degraded reports that neither path produced a roster.
func (e *Engine) roster(ctx context.Context, businessID uuid.UUID, payments []collection.Collection) (map[uuid.UUID]string, bool) {
	users, err := e.users.ListByBusinessPrivileged(ctx, businessID)
	switch {
	case err == nil && len(users) > 0:
		return user.EmailIndex(users), false
	case err == nil:
	case database.IsPrivilegedPathUnavailable(err):
		logger.LogDebug(ctx, "privileged roster unavailable", "error", err.Error())
	default:
		logger.LogWarn(ctx, "privileged roster failed", "business_id", businessID.String(), "error", err.Error())
	}

	ids := observedUsers(payments)
	if len(ids) == 0 {
		return map[uuid.UUID]string{}, false
	}
	users, err = e.users.ListByIDs(ctx, businessID, ids)
	if err != nil {
		logger.LogWarn(ctx, "user roster unavailable, emails omitted",
			"business_id", businessID.String(), "error", apperr.Degraded("fetch users", err).Error())
		return map[uuid.UUID]string{}, true
	}
	return user.EmailIndex(users), false
}

func observedUsers(payments []collection.Collection) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(payments))
	ids := make([]uuid.UUID, 0)
	for _, p := range payments {
		if _, ok := seen[p.UserID]; ok {
			continue
		}
		seen[p.UserID] = struct{}{}
		ids = append(ids, p.UserID)
	}
	return ids
}

func primaryEmail(t *tally, emails map[uuid.UUID]string) *string {
	if t == nil {
		return nil
	}
	id, ok := t.top()
	if !ok {
		return nil
	}
	email, ok := emails[id]
	if !ok {
		return nil
	}
	return &email
}
