package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	pkgAuth "github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

var testJWT = config.JWTConfig{Secret: "test-secret", Issuer: "storefront-test", ExpirationMinutes: 15}

func mintToken(t *testing.T, username string, caps ...string) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(testJWT, time.Now(), pkgAuth.AccessTokenPayload{Username: username, Capabilities: caps})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestAuthenticateAllowsAnonymous(t *testing.T) {
	var principal *pkgAuth.Principal
	handler := Authenticate(testJWT, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal = pkgAuth.PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/blog", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if principal != nil {
		t.Fatalf("expected anonymous request, got %+v", principal)
	}
}

func TestAuthenticateSetsPrincipal(t *testing.T) {
	var principal *pkgAuth.Principal
	handler := Authenticate(testJWT, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal = pkgAuth.PrincipalFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/checkout", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, "alice", pkgAuth.CapabilityBlogCreate))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if principal == nil || principal.Username != "alice" {
		t.Fatalf("expected alice principal, got %+v", principal)
	}
	if !principal.Has(pkgAuth.CapabilityBlogCreate) {
		t.Fatalf("expected blog capability on principal")
	}
}

func TestAuthenticateRejectsInvalidToken(t *testing.T) {
	called := false
	handler := Authenticate(testJWT, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	other := config.JWTConfig{Secret: "other-secret", Issuer: testJWT.Issuer, ExpirationMinutes: 5}
	token, err := pkgAuth.MintAccessToken(other, time.Now(), pkgAuth.AccessTokenPayload{Username: "mallory"})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/checkout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
	if code := decodeErrorCode(t, rec); code != string(pkgerrors.CodeUnauthorized) {
		t.Fatalf("unexpected code %s", code)
	}
	if called {
		t.Fatalf("handler must not run for a forged token")
	}
}

func TestAuthenticateReportsExpiredToken(t *testing.T) {
	handler := Authenticate(testJWT, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run for an expired token")
	}))

	token, err := pkgAuth.MintAccessToken(testJWT, time.Now().Add(-time.Hour), pkgAuth.AccessTokenPayload{Username: "frank"})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/checkout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "token expired") {
		t.Fatalf("expected expiry message, got %s", rec.Body.String())
	}
}

func TestRequireCapability(t *testing.T) {
	protected := Authenticate(testJWT, nil)(RequireCapability(pkgAuth.CapabilityBlogCreate, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})))

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"anonymous", "", http.StatusUnauthorized},
		{"missing capability", mintToken(t, "bob"), http.StatusForbidden},
		{"author", mintToken(t, "carol", pkgAuth.CapabilityBlogCreate), http.StatusCreated},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/blog", nil)
		if tt.token != "" {
			req.Header.Set("Authorization", "Bearer "+tt.token)
		}
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		if rec.Code != tt.want {
			t.Fatalf("%s: expected %d got %d", tt.name, tt.want, rec.Code)
		}
	}
}
