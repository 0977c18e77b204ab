package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/jmorel/etude-backend/internal/model"
	"github.com/jmorel/etude-backend/internal/repository"
)

type fakeValidator struct {
	user model.User
	err  error
	seen string
}

func (f *fakeValidator) ValidateAndRefresh(_ context.Context, raw string) (model.User, error) {
	f.seen = raw
	if f.err != nil {
		return model.User{}, f.err
	}
	return f.user, nil
}

func gatedRequest(t *testing.T, v Validator, authz string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.GET("/probe", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"user_id":  c.Get("user_id"),
			"username": c.Get("username"),
			"role":     c.Get("role"),
		})
	}, TokenAuth(v))

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestTokenAuthMissingHeader(t *testing.T) {
	v := &fakeValidator{}
	for _, authz := range []string{"", "Basic abc", "bearer lowercase"} {
		rec := gatedRequest(t, v, authz)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("authz %q: status = %d, want 401", authz, rec.Code)
		}
	}
	if v.seen != "" {
		t.Fatal("validator must not run without a bearer header")
	}
}

func TestTokenAuthInvalid(t *testing.T) {
	rec := gatedRequest(t, &fakeValidator{err: repository.ErrTokenInvalid}, "Bearer bogus")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "invalid token") {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestTokenAuthExpired(t *testing.T) {
	rec := gatedRequest(t, &fakeValidator{err: repository.ErrTokenExpired}, "Bearer stale")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "token expired") {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestTokenAuthSuccess(t *testing.T) {
	v := &fakeValidator{user: model.User{ID: 7, Username: "alice", Role: model.RoleAdmin}}
	rec := gatedRequest(t, v, "Bearer good-token")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body = %s", rec.Code, rec.Body.String())
	}
	if v.seen != "good-token" {
		t.Fatalf("validator saw %q", v.seen)
	}
	body := rec.Body.String()
	for _, want := range []string{`"user_id":7`, `"username":"alice"`, `"role":"admin"`} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %s: %s", want, body)
		}
	}
}
