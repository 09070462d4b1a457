package report

import (
	"context"

	"github.com/google/uuid"

	"github.com/recaudopro/recaudo-api/internal/domain/client"
	"github.com/recaudopro/recaudo-api/internal/domain/collection"
	"github.com/recaudopro/recaudo-api/internal/domain/credit"
	"github.com/recaudopro/recaudo-api/internal/domain/user"
)

type fakeUsers struct {
	users         []user.User
	privilegedErr error
	byIDsErr      error
	byIDsCalls    int
}

func (f *fakeUsers) ListByBusinessPrivileged(ctx context.Context, businessID uuid.UUID) ([]user.User, error) {
	if f.privilegedErr != nil {
		return nil, f.privilegedErr
	}
	out := []user.User{}
	for _, u := range f.users {
		if u.BusinessID == businessID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUsers) ListByIDs(ctx context.Context, businessID uuid.UUID, ids []uuid.UUID) ([]user.User, error) {
	f.byIDsCalls++
	if f.byIDsErr != nil {
		return nil, f.byIDsErr
	}
	out := []user.User{}
	for _, u := range f.users {
		for _, id := range ids {
			if u.ID == id && u.BusinessID == businessID {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

type fakeClients struct {
	rows          []client.Client
	privilegedErr error
	directErr     error
	directCalls   int
}

func (f *fakeClients) ListPrivileged(ctx context.Context, businessID uuid.UUID) ([]client.Client, error) {
	if f.privilegedErr != nil {
		return nil, f.privilegedErr
	}
	out := []client.Client{}
	for _, c := range f.rows {
		if c.BusinessID == businessID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeClients) List(ctx context.Context, filter client.ListFilter) ([]client.Client, error) {
	f.directCalls++
	if f.directErr != nil {
		return nil, f.directErr
	}
	out := []client.Client{}
	for i := range f.rows {
		if f.rows[i].BusinessID == filter.BusinessID && filter.Matches(&f.rows[i]) {
			out = append(out, f.rows[i])
		}
	}
	return out, nil
}

type fakeCredits struct {
	rows          []credit.Credit
	privilegedErr error
	byClientCalls int
}

func (f *fakeCredits) ListPrivileged(ctx context.Context, businessID uuid.UUID) ([]credit.Credit, error) {
	if f.privilegedErr != nil {
		return nil, f.privilegedErr
	}
	return f.List(ctx, credit.ListFilter{BusinessID: businessID})
}

func (f *fakeCredits) List(ctx context.Context, filter credit.ListFilter) ([]credit.Credit, error) {
	out := []credit.Credit{}
	for i := range f.rows {
		if f.rows[i].BusinessID == filter.BusinessID && filter.Matches(&f.rows[i]) {
			out = append(out, f.rows[i])
		}
	}
	return out, nil
}

func (f *fakeCredits) ListByClientIDs(ctx context.Context, businessID uuid.UUID, ids []uuid.UUID) ([]credit.Credit, error) {
	f.byClientCalls++
	out := []credit.Credit{}
	for _, c := range f.rows {
		for _, id := range ids {
			if c.ClientID == id && c.BusinessID == businessID {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

type fakeCollections struct {
	rows          []collection.Collection
	privilegedErr error
	dependentErr  error
	directCalls   int
	dependentCall int
}

func (f *fakeCollections) ListPrivileged(ctx context.Context, businessID uuid.UUID) ([]collection.Collection, error) {
	if f.privilegedErr != nil {
		return nil, f.privilegedErr
	}
	out := []collection.Collection{}
	for _, c := range f.rows {
		if c.BusinessID == businessID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCollections) List(ctx context.Context, filter collection.ListFilter) ([]collection.Collection, error) {
	f.directCalls++
	out := []collection.Collection{}
	for i := range f.rows {
		if f.rows[i].BusinessID == filter.BusinessID && filter.Matches(&f.rows[i]) {
			out = append(out, f.rows[i])
		}
	}
	return out, nil
}

func (f *fakeCollections) ListByClientIDs(ctx context.Context, businessID uuid.UUID, ids []uuid.UUID) ([]collection.Collection, error) {
	return f.byKey(businessID, ids, func(c *collection.Collection) uuid.UUID { return c.ClientID })
}

func (f *fakeCollections) ListByCreditIDs(ctx context.Context, businessID uuid.UUID, ids []uuid.UUID) ([]collection.Collection, error) {
	return f.byKey(businessID, ids, func(c *collection.Collection) uuid.UUID { return c.CreditID })
}

// byKey keeps the stored order, like the repository's ORDER BY created_at.
func (f *fakeCollections) byKey(businessID uuid.UUID, ids []uuid.UUID, key func(*collection.Collection) uuid.UUID) ([]collection.Collection, error) {
	f.dependentCall++
	if f.dependentErr != nil {
		return nil, f.dependentErr
	}
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := []collection.Collection{}
	for i := range f.rows {
		if f.rows[i].BusinessID == businessID && want[key(&f.rows[i])] {
			out = append(out, f.rows[i])
		}
	}
	return out, nil
}

type fixture struct {
	users       *fakeUsers
	clients     *fakeClients
	credits     *fakeCredits
	collections *fakeCollections
}

func newFixture() *fixture {
	return &fixture{
		users:       &fakeUsers{},
		clients:     &fakeClients{},
		credits:     &fakeCredits{},
		collections: &fakeCollections{},
	}
}

func (fx *fixture) engine() *Engine {
	return NewEngine(fx.users, fx.clients, fx.credits, fx.collections)
}
