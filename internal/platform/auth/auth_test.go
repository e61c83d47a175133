package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func testIssuer() *TokenIssuer {
	return NewTokenIssuer("test-secret-key-that-is-long-enough", time.Hour)
}

func TestIssueAndVerify(t *testing.T) {
	ti := testIssuer()
	userID := uuid.New()

	token, err := ti.Issue(userID, "reception")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := ti.Verify(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.Subject != userID.String() {
		t.Errorf("expected subject %s, got %s", userID, claims.Subject)
	}
	if claims.Username != "reception" {
		t.Errorf("expected username reception, got %s", claims.Username)
	}
}

func TestVerify_RejectsExpired(t *testing.T) {
	ti := NewTokenIssuer("test-secret-key-that-is-long-enough", -time.Minute)
	token, err := ti.Issue(uuid.New(), "reception")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ti.Verify(token); err == nil {
		t.Error("expected error for expired token")
	}
}

func TestVerify_RejectsWrongKey(t *testing.T) {
	token, err := testIssuer().Issue(uuid.New(), "reception")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	other := NewTokenIssuer("a-completely-different-signing-key!!", time.Hour)
	if _, err := other.Verify(token); err == nil {
		t.Error("expected error for token signed with another key")
	}
}

func TestVerify_RejectsGarbage(t *testing.T) {
	if _, err := testIssuer().Verify("not.a.token"); err == nil {
		t.Error("expected error for malformed token")
	}
}

func middlewareContext(t *testing.T, header string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestMiddleware_ValidToken(t *testing.T) {
	ti := testIssuer()
	userID := uuid.New()
	token, _ := ti.Issue(userID, "reception")

	c, _ := middlewareContext(t, "Bearer "+token)
	var gotID, gotName string
	h := Middleware(ti, nil)(func(c echo.Context) error {
		gotID = UserID(c.Request().Context())
		gotName = Username(c.Request().Context())
		return nil
	})
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotID != userID.String() {
		t.Errorf("expected user id %s, got %s", userID, gotID)
	}
	if gotName != "reception" {
		t.Errorf("expected username reception, got %s", gotName)
	}
}

func TestMiddleware_Unauthorized(t *testing.T) {
	ti := testIssuer()
	cases := []struct {
		name, header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc123"},
		{"bad token", "Bearer garbage"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := middlewareContext(t, tc.header)
			h := Middleware(ti, nil)(func(c echo.Context) error { return nil })
			err := h(c)
			he, ok := err.(*echo.HTTPError)
			if !ok || he.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %v", err)
			}
		})
	}
}

func TestMiddleware_Skipper(t *testing.T) {
	ti := testIssuer()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/user/login", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	called := false
	h := Middleware(ti, DefaultSkipper)(func(c echo.Context) error {
		called = true
		return nil
	})
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("login endpoint should bypass auth")
	}
}
