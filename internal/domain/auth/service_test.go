package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/recaudopro/recaudo-api/internal/domain/user"
	"github.com/recaudopro/recaudo-api/internal/pkg/jwt"
	"github.com/recaudopro/recaudo-api/internal/pkg/password"
)

type fakeIdentities struct {
	byID      map[uuid.UUID]*Identity
	createErr error
	deleted   []uuid.UUID
}

func newFakeIdentities() *fakeIdentities {
	return &fakeIdentities{byID: make(map[uuid.UUID]*Identity)}
}

func (f *fakeIdentities) Create(ctx context.Context, id *Identity) error {
	if f.createErr != nil {
		return f.createErr
	}
	cp := *id
	f.byID[id.ID] = &cp
	return nil
}

func (f *fakeIdentities) Delete(ctx context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	delete(f.byID, id)
	return nil
}

func (f *fakeIdentities) GetByEmail(ctx context.Context, businessID uuid.UUID, email string) (*Identity, error) {
	for _, id := range f.byID {
		if id.BusinessID == businessID && strings.EqualFold(id.Email, email) {
			cp := *id
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeIdentities) ListByEmail(ctx context.Context, email string) ([]Identity, error) {
	var out []Identity
	for _, id := range f.byID {
		if strings.EqualFold(id.Email, email) {
			out = append(out, *id)
		}
	}
	return out, nil
}

func (f *fakeIdentities) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	found, ok := f.byID[id]
	if !ok {
		return ErrUserNotFound
	}
	found.PasswordHash = hash
	return nil
}

type fakeUsers struct {
	byID      map[uuid.UUID]*user.User
	createErr error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: make(map[uuid.UUID]*user.User)}
}

func (f *fakeUsers) ListByBusinessPrivileged(ctx context.Context, businessID uuid.UUID) ([]user.User, error) {
	return nil, nil
}
func (f *fakeUsers) ListByBusiness(ctx context.Context, businessID uuid.UUID, activeOnly bool) ([]user.User, error) {
	return nil, nil
}
func (f *fakeUsers) ListByIDs(ctx context.Context, businessID uuid.UUID, ids []uuid.UUID) ([]user.User, error) {
	return nil, nil
}
func (f *fakeUsers) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return f.byID[id], nil
}
func (f *fakeUsers) GetByEmail(ctx context.Context, businessID uuid.UUID, email string) (*user.User, error) {
	return nil, nil
}
func (f *fakeUsers) Create(ctx context.Context, u *user.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.byID[u.ID] = u
	return nil
}
func (f *fakeUsers) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.byID, id)
	return nil
}

type sentMail struct {
	to, subject, body string
}

type recordingMailer struct {
	sent []sentMail
}

func (m *recordingMailer) Send(ctx context.Context, to, subject, body string) error {
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

type authFixture struct {
	identities *fakeIdentities
	users      *fakeUsers
	tokens     TokenStore
	service    *Service
	resets     *PasswordResetService
	mailer     *recordingMailer
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		identities: newFakeIdentities(),
		users:      newFakeUsers(),
		tokens:     NewTokenStore(nil),
		mailer:     &recordingMailer{},
	}
	jwtSvc := jwt.NewService("test-secret", 15*time.Minute, time.Hour)
	f.service = NewService(f.identities, f.users, jwtSvc, f.tokens)
	f.resets = NewPasswordResetService(f.identities, f.users, f.tokens, f.mailer, "https://app.example")
	return f
}

func (f *authFixture) seed(t *testing.T, businessID uuid.UUID, email, pw string, active bool) *user.User {
	t.Helper()
	hash, err := password.Hash(pw)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	id := uuid.New()
	f.identities.byID[id] = &Identity{ID: id, BusinessID: businessID, Email: email, PasswordHash: hash}
	u := &user.User{ID: id, BusinessID: businessID, Email: email, Role: user.RoleCobrador, IsActive: active}
	f.users.byID[id] = u
	return u
}

func TestLogin(t *testing.T) {
	f := newAuthFixture()
	biz := uuid.New()
	u := f.seed(t, biz, "ana@recaudo.co", "secreto1", true)

	res, err := f.service.Login(context.Background(), &LoginRequest{BusinessID: biz, Email: " Ana@Recaudo.co ", Password: "secreto1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.User.ID != u.ID || res.Tokens.AccessToken == "" || res.Tokens.RefreshToken == "" {
		t.Fatalf("unexpected response %+v", res)
	}
	if res.Tokens.ExpiresIn != 900 {
		t.Fatalf("expected expires_in 900, got %d", res.Tokens.ExpiresIn)
	}

	if _, err := f.service.Login(context.Background(), &LoginRequest{BusinessID: biz, Email: "ana@recaudo.co", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := f.service.Login(context.Background(), &LoginRequest{BusinessID: uuid.New(), Email: "ana@recaudo.co", Password: "secreto1"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("other business must not log in, got %v", err)
	}
}

func TestLoginInactiveUser(t *testing.T) {
	f := newAuthFixture()
	biz := uuid.New()
	f.seed(t, biz, "off@recaudo.co", "secreto1", false)

	_, err := f.service.Login(context.Background(), &LoginRequest{BusinessID: biz, Email: "off@recaudo.co", Password: "secreto1"})
	if !errors.Is(err, ErrUserInactive) {
		t.Fatalf("expected ErrUserInactive, got %v", err)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	f := newAuthFixture()
	biz := uuid.New()
	f.seed(t, biz, "ana@recaudo.co", "secreto1", true)
	ctx := context.Background()

	first, err := f.service.Login(ctx, &LoginRequest{BusinessID: biz, Email: "ana@recaudo.co", Password: "secreto1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	second, err := f.service.Refresh(ctx, first.Tokens.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if second.Tokens.RefreshToken == first.Tokens.RefreshToken {
		t.Fatalf("refresh token was not rotated")
	}
	if _, err := f.service.Refresh(ctx, first.Tokens.RefreshToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("old refresh token must be rejected, got %v", err)
	}

	if err := f.service.Logout(ctx, second.Tokens.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := f.service.Refresh(ctx, second.Tokens.RefreshToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("logged out token must be rejected, got %v", err)
	}
}

func TestCreateUserAccount(t *testing.T) {
	f := newAuthFixture()
	biz := uuid.New()

	u, err := f.service.CreateUserAccount(context.Background(), biz, &user.CreateAccountRequest{
		Email:    "Nuevo@Recaudo.co",
		Password: "secreto1",
		Name:     " Nuevo ",
		Role:     "cobrador",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.Email != "nuevo@recaudo.co" || u.Name == nil || *u.Name != "Nuevo" || !u.IsActive {
		t.Fatalf("unexpected user %+v", u)
	}
	if _, ok := f.identities.byID[u.ID]; !ok {
		t.Fatalf("identity not stored under the profile id")
	}
}

func TestCreateUserAccountRollsBackIdentity(t *testing.T) {
	f := newAuthFixture()
	f.users.createErr = errors.New("insert failed")

	_, err := f.service.CreateUserAccount(context.Background(), uuid.New(), &user.CreateAccountRequest{
		Email: "x@recaudo.co", Password: "secreto1", Role: "cobrador",
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if len(f.identities.deleted) != 1 || len(f.identities.byID) != 0 {
		t.Fatalf("identity was not rolled back: deleted=%v left=%d", f.identities.deleted, len(f.identities.byID))
	}
}

func TestCreateUserAccountEmailTaken(t *testing.T) {
	f := newAuthFixture()
	f.identities.createErr = &pq.Error{Code: "23505", Constraint: "auth_identities_business_email_idx"}

	_, err := f.service.CreateUserAccount(context.Background(), uuid.New(), &user.CreateAccountRequest{
		Email: "x@recaudo.co", Password: "secreto1", Role: "cobrador",
	})
	if !errors.Is(err, user.ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	f := newAuthFixture()
	biz := uuid.New()
	u := f.seed(t, biz, "ana@recaudo.co", "secreto1", true)
	ctx := context.Background()

	if err := f.resets.RequestReset(ctx, &PasswordResetRequest{Email: "ANA@recaudo.co"}); err != nil {
		t.Fatalf("request reset: %v", err)
	}
	if len(f.mailer.sent) != 1 || f.mailer.sent[0].to != "ana@recaudo.co" {
		t.Fatalf("expected one reset mail, got %+v", f.mailer.sent)
	}

	body := f.mailer.sent[0].body
	i := strings.Index(body, "token=")
	if i < 0 {
		t.Fatalf("reset link missing from body")
	}
	token := body[i+len("token="):]
	if j := strings.IndexAny(token, "\"<& "); j >= 0 {
		token = token[:j]
	}

	if err := f.resets.Confirm(ctx, &PasswordResetConfirmRequest{Token: token, Password: "nuevo123"}); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if !password.Verify("nuevo123", f.identities.byID[u.ID].PasswordHash) {
		t.Fatalf("password was not updated")
	}
	if err := f.resets.Confirm(ctx, &PasswordResetConfirmRequest{Token: token, Password: "otro1234"}); !errors.Is(err, ErrInvalidResetToken) {
		t.Fatalf("token must be single use, got %v", err)
	}
}

func TestRequestResetHandlerHidesUnknownEmail(t *testing.T) {
	f := newAuthFixture()
	h := NewHandler(f.service, f.resets)

	req := httptest.NewRequest(http.MethodPost, "/password/reset", strings.NewReader(`{"email":"nadie@recaudo.co"}`))
	rec := httptest.NewRecorder()
	h.Routes(func(next http.Handler) http.Handler { return next }).ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(f.mailer.sent) != 0 {
		t.Fatalf("no mail expected for unknown email")
	}
}

func TestLoginHandlerRejectsBadCredentials(t *testing.T) {
	f := newAuthFixture()
	biz := uuid.New()
	f.seed(t, biz, "ana@recaudo.co", "secreto1", true)
	h := NewHandler(f.service, f.resets)

	body := `{"business_id":"` + biz.String() + `","email":"ana@recaudo.co","password":"nope"}`
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Routes(func(next http.Handler) http.Handler { return next }).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
