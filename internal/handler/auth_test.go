package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jmorel/etude-backend/internal/auth"
	"github.com/jmorel/etude-backend/internal/model"
	"github.com/jmorel/etude-backend/internal/repository"
	"github.com/jmorel/etude-backend/internal/utils"
)

// memUsers backs both the register endpoint and the auth service in tests.
type memUsers struct {
	byID   map[uint64]model.User
	nextID uint64
}

func newMemUsers() *memUsers { return &memUsers{byID: map[uint64]model.User{}} }

func (m *memUsers) add(t *testing.T, username, password, role string) model.User {
	t.Helper()
	hash, err := utils.HashPassword(password, 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	m.nextID++
	u := model.User{ID: m.nextID, Username: username, PasswordHash: hash, Role: role}
	m.byID[u.ID] = u
	return u
}

func (m *memUsers) Create(_ context.Context, username, password, role string, cost int) (uint64, error) {
	for _, u := range m.byID {
		if u.Username == username {
			return 0, repository.ErrUsernameExists
		}
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	m.nextID++
	m.byID[m.nextID] = model.User{ID: m.nextID, Username: username, PasswordHash: hash, Role: role}
	return m.nextID, nil
}

func (m *memUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) GetByUsername(_ context.Context, username string) (model.User, error) {
	for _, u := range m.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

type memTokens struct {
	byHash map[string]model.AccessToken
	nextID uint64
}

func newMemTokens() *memTokens { return &memTokens{byHash: map[string]model.AccessToken{}} }

func (m *memTokens) Store(_ context.Context, userID uint64, hash string, exp time.Time) error {
	m.nextID++
	m.byHash[hash] = model.AccessToken{
		ID: m.nextID, UserID: userID, TokenHash: hash,
		ExpiresAt: exp, CreatedAt: exp.Add(-model.TokenTTL),
	}
	return nil
}

func (m *memTokens) GetByHash(_ context.Context, hash string) (model.AccessToken, error) {
	tk, ok := m.byHash[hash]
	if !ok {
		return model.AccessToken{}, repository.ErrTokenInvalid
	}
	return tk, nil
}

func (m *memTokens) TouchLastUsed(context.Context, uint64) error { return nil }

func (m *memTokens) DeleteByHash(_ context.Context, hash string) error {
	delete(m.byHash, hash)
	return nil
}

func (m *memTokens) DeleteAllForUser(_ context.Context, userID uint64) error {
	for h, tk := range m.byHash {
		if tk.UserID == userID {
			delete(m.byHash, h)
		}
	}
	return nil
}

type memSessions struct {
	rows   []model.ActiveSession
	nextID uint64
}

func (m *memSessions) Create(_ context.Context, userID uint64, ip, ua string) (uint64, error) {
	m.nextID++
	m.rows = append(m.rows, model.ActiveSession{ID: m.nextID, UserID: userID, IPAddress: ip, UserAgent: ua})
	return m.nextID, nil
}

func (m *memSessions) TouchActivity(context.Context, uint64) error { return nil }

func (m *memSessions) DeleteAllForUser(_ context.Context, userID uint64) error {
	kept := m.rows[:0]
	for _, s := range m.rows {
		if s.UserID != userID {
			kept = append(kept, s)
		}
	}
	m.rows = kept
	return nil
}

func newAuthFixture(t *testing.T) (*AuthHandler, *memUsers, *memSessions) {
	t.Helper()
	users := newMemUsers()
	sessions := &memSessions{}
	svc := auth.NewService(users, newMemTokens(), sessions)
	return NewAuthHandler(users, svc, 4), users, sessions
}

func postJSON(e *echo.Echo, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRegister(t *testing.T) {
	h, users, _ := newAuthFixture(t)
	e := echo.New()
	e.POST("/register", h.Register)

	rec := postJSON(e, "/register", `{"username":"alice","password":"secret1"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"role":"visitor"`) {
		t.Fatalf("role must default to visitor: %s", rec.Body.String())
	}
	u, err := users.GetByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("user not persisted: %v", err)
	}
	if u.PasswordHash == "secret1" {
		t.Fatal("password stored in plaintext")
	}
}

func TestRegisterValidation(t *testing.T) {
	h, _, _ := newAuthFixture(t)
	e := echo.New()
	e.POST("/register", h.Register)

	cases := []struct {
		name string
		body string
		want int
	}{
		{"missing username", `{"password":"secret1"}`, http.StatusUnprocessableEntity},
		{"missing password", `{"username":"bob"}`, http.StatusUnprocessableEntity},
		{"short password", `{"username":"bob","password":"abc"}`, http.StatusUnprocessableEntity},
		{"bad role", `{"username":"bob","password":"secret1","role":"root"}`, http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postJSON(e, "/register", tc.body)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d; body = %s", rec.Code, tc.want, rec.Body.String())
			}
		})
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	h, users, _ := newAuthFixture(t)
	users.add(t, "alice", "whatever1", model.RoleVisitor)
	e := echo.New()
	e.POST("/register", h.Register)

	rec := postJSON(e, "/register", `{"username":"alice","password":"secret1"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409; body = %s", rec.Code, rec.Body.String())
	}
}

func TestLoginHandler(t *testing.T) {
	h, users, sessions := newAuthFixture(t)
	users.add(t, "alice", "secret1", model.RoleVisitor)
	e := echo.New()
	e.POST("/login", h.Login)

	rec := postJSON(e, "/login", `{"username":"alice","password":"secret1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"token":"`) {
		t.Fatalf("response missing token: %s", rec.Body.String())
	}
	if len(sessions.rows) != 1 {
		t.Fatalf("sessions = %d, want 1", len(sessions.rows))
	}
}

func TestLoginHandlerWrongPassword(t *testing.T) {
	h, users, sessions := newAuthFixture(t)
	users.add(t, "alice", "secret1", model.RoleVisitor)
	e := echo.New()
	e.POST("/login", h.Login)

	rec := postJSON(e, "/login", `{"username":"alice","password":"nope"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401; body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "invalid credentials") {
		t.Fatalf("body = %s", rec.Body.String())
	}
	if len(sessions.rows) != 0 {
		t.Fatal("failed login must not create a session")
	}
}

func TestLogoutHandler(t *testing.T) {
	h, users, sessions := newAuthFixture(t)
	users.add(t, "alice", "secret1", model.RoleVisitor)

	raw, _, err := h.Auth.Login(context.Background(), "alice", "secret1", "", "")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	e := echo.New()
	e.POST("/logout", func(c echo.Context) error {
		c.Set("token", raw) // the gate stashes the raw token for the handler
		return h.Logout(c)
	})

	rec := postJSON(e, "/logout", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body = %s", rec.Code, rec.Body.String())
	}
	if len(sessions.rows) != 0 {
		t.Fatal("logout must evict the user's sessions")
	}

	// The token is gone now; a second logout with it is rejected.
	rec = postJSON(e, "/logout", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("second logout status = %d, want 401", rec.Code)
	}
}
