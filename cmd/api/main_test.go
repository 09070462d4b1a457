package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/recaudopro/recaudo-api/internal/domain/auth"
	"github.com/recaudopro/recaudo-api/internal/domain/client"
	"github.com/recaudopro/recaudo-api/internal/domain/collection"
	"github.com/recaudopro/recaudo-api/internal/domain/credit"
	"github.com/recaudopro/recaudo-api/internal/domain/dashboard"
	"github.com/recaudopro/recaudo-api/internal/domain/report"
	"github.com/recaudopro/recaudo-api/internal/domain/user"
	"github.com/recaudopro/recaudo-api/internal/middleware"
	"github.com/recaudopro/recaudo-api/internal/pkg/jwt"
)

func testRouter(t *testing.T) chi.Router {
	t.Helper()
	root := chi.NewRouter()

	func() {
		defer func() {
			if rec := recover(); rec != nil {
				t.Fatalf("mounting api routes panicked: %v", rec)
			}
		}()
		mountAPI(root, apiHandlers{
			auth:        auth.NewHandler(nil, nil),
			users:       user.NewHandler(nil, nil),
			clients:     client.NewHandler(nil, time.UTC),
			credits:     credit.NewHandler(nil, time.UTC),
			collections: collection.NewHandler(nil, time.UTC),
			reports:     report.NewHandler(nil, nil, nil, time.UTC),
			dashboard:   dashboard.NewHandler(nil, nil, time.UTC),
		}, middleware.Auth(jwt.NewService("test-secret", time.Minute, time.Hour)))
	}()
	return root
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	root := testRouter(t)

	paths := []string{
		"/users",
		"/clients",
		"/credits",
		"/collections",
		"/reports/clients",
		"/reports/credits",
		"/reports/collections",
		"/dashboard/stats",
		"/auth/me",
	}
	for _, p := range paths {
		t.Run(p, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, p, nil)
			rr := httptest.NewRecorder()
			root.ServeHTTP(rr, req)
			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("expected status 401, got %d", rr.Code)
			}
		})
	}
}

func TestLoginIsPublic(t *testing.T) {
	root := testRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader("{"))
	rr := httptest.NewRecorder()
	root.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}
