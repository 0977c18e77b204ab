package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmorel/etude-backend/internal/model"
	"github.com/jmorel/etude-backend/internal/repository"
	"github.com/jmorel/etude-backend/internal/utils"
)

// ----- in-memory fakes -----

type fakeUsers struct {
	byName map[string]model.User
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (model.User, error) {
	u, ok := f.byName[username]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	for _, u := range f.byName {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

type fakeTokens struct {
	byHash  map[string]model.AccessToken
	nextID  uint64
	touched []uint64
}

func (f *fakeTokens) Store(_ context.Context, userID uint64, hash string, exp time.Time) error {
	f.nextID++
	f.byHash[hash] = model.AccessToken{
		ID: f.nextID, UserID: userID, TokenHash: hash,
		ExpiresAt: exp, CreatedAt: exp.Add(-model.TokenTTL),
	}
	return nil
}

func (f *fakeTokens) GetByHash(_ context.Context, hash string) (model.AccessToken, error) {
	t, ok := f.byHash[hash]
	if !ok {
		return model.AccessToken{}, repository.ErrTokenInvalid
	}
	return t, nil
}

func (f *fakeTokens) TouchLastUsed(_ context.Context, tokenID uint64) error {
	f.touched = append(f.touched, tokenID)
	return nil
}

func (f *fakeTokens) DeleteByHash(_ context.Context, hash string) error {
	delete(f.byHash, hash)
	return nil
}

func (f *fakeTokens) DeleteAllForUser(_ context.Context, userID uint64) error {
	for h, t := range f.byHash {
		if t.UserID == userID {
			delete(f.byHash, h)
		}
	}
	return nil
}

type fakeSessions struct {
	rows    []model.ActiveSession
	nextID  uint64
	touched int
}

func (f *fakeSessions) Create(_ context.Context, userID uint64, ip, ua string) (uint64, error) {
	f.nextID++
	f.rows = append(f.rows, model.ActiveSession{ID: f.nextID, UserID: userID, IPAddress: ip, UserAgent: ua})
	return f.nextID, nil
}

func (f *fakeSessions) TouchActivity(_ context.Context, userID uint64) error {
	f.touched++
	return nil
}

func (f *fakeSessions) DeleteAllForUser(_ context.Context, userID uint64) error {
	kept := f.rows[:0]
	for _, s := range f.rows {
		if s.UserID != userID {
			kept = append(kept, s)
		}
	}
	f.rows = kept
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeUsers, *fakeTokens, *fakeSessions) {
	t.Helper()
	hash, err := utils.HashPassword("correct-pw", 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	users := &fakeUsers{byName: map[string]model.User{
		"alice": {ID: 1, Username: "alice", PasswordHash: hash, Role: model.RoleVisitor},
	}}
	tokens := &fakeTokens{byHash: map[string]model.AccessToken{}}
	sessions := &fakeSessions{}
	return NewService(users, tokens, sessions), users, tokens, sessions
}

func TestLogin(t *testing.T) {
	svc, _, tokens, sessions := newTestService(t)
	ctx := context.Background()

	raw, u, err := svc.Login(ctx, "alice", "correct-pw", "10.0.0.1", "test-agent")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if u.ID != 1 {
		t.Fatalf("user id = %d, want 1", u.ID)
	}
	if raw == "" {
		t.Fatal("token must not be empty")
	}
	// Only the hash is stored; the raw token must not appear as a key.
	if _, ok := tokens.byHash[raw]; ok {
		t.Fatal("raw token stored instead of its hash")
	}
	if _, ok := tokens.byHash[utils.HashTokenRaw(raw)]; !ok {
		t.Fatal("token hash not stored")
	}
	if len(sessions.rows) != 1 {
		t.Fatalf("sessions = %d, want 1", len(sessions.rows))
	}
	if sessions.rows[0].IPAddress != "10.0.0.1" || sessions.rows[0].UserAgent != "test-agent" {
		t.Fatalf("session metadata = %+v", sessions.rows[0])
	}
}

func TestLoginSecondSessionIsIndependent(t *testing.T) {
	svc, _, tokens, sessions := newTestService(t)
	ctx := context.Background()

	t1, _, err := svc.Login(ctx, "alice", "correct-pw", "", "")
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	t2, _, err := svc.Login(ctx, "alice", "correct-pw", "", "")
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	if t1 == t2 {
		t.Fatal("each login must mint a distinct token")
	}
	if len(tokens.byHash) != 2 {
		t.Fatalf("stored tokens = %d, want 2", len(tokens.byHash))
	}
	if len(sessions.rows) != 2 {
		t.Fatalf("sessions = %d, want 2", len(sessions.rows))
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	svc, _, tokens, sessions := newTestService(t)
	ctx := context.Background()

	if _, _, err := svc.Login(ctx, "alice", "wrong-pw", "", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := svc.Login(ctx, "nobody", "correct-pw", "", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user = %v, want ErrInvalidCredentials", err)
	}
	if len(tokens.byHash) != 0 || len(sessions.rows) != 0 {
		t.Fatal("failed logins must not leave tokens or sessions behind")
	}
}

func TestValidateAndRefresh(t *testing.T) {
	svc, _, tokens, sessions := newTestService(t)
	ctx := context.Background()

	raw, _, err := svc.Login(ctx, "alice", "correct-pw", "", "")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	u, err := svc.ValidateAndRefresh(ctx, raw)
	if err != nil {
		t.Fatalf("ValidateAndRefresh: %v", err)
	}
	if u.Username != "alice" {
		t.Fatalf("user = %+v", u)
	}
	if len(tokens.touched) != 1 {
		t.Fatalf("last_used_at touches = %d, want 1", len(tokens.touched))
	}
	if sessions.touched != 1 {
		t.Fatalf("session activity touches = %d, want 1", sessions.touched)
	}
}

func TestValidateAndRefreshUnknownToken(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	if _, err := svc.ValidateAndRefresh(context.Background(), "no-such-token"); !errors.Is(err, repository.ErrTokenInvalid) {
		t.Fatalf("unknown token = %v, want ErrTokenInvalid", err)
	}
	if _, err := svc.ValidateAndRefresh(context.Background(), ""); !errors.Is(err, repository.ErrTokenInvalid) {
		t.Fatalf("empty token = %v, want ErrTokenInvalid", err)
	}
}

func TestValidateAndRefreshExpiry(t *testing.T) {
	svc, _, tokens, sessions := newTestService(t)
	ctx := context.Background()

	raw, _, err := svc.Login(ctx, "alice", "correct-pw", "", "")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	// One second before the 24h mark the token still validates.
	base := time.Now()
	svc.now = func() time.Time { return base.Add(model.TokenTTL - time.Second) }
	if _, err := svc.ValidateAndRefresh(ctx, raw); err != nil {
		t.Fatalf("token just under TTL: %v", err)
	}

	// At the mark it is revoked along with every session of the user.
	svc.now = func() time.Time { return base.Add(model.TokenTTL + time.Second) }
	if _, err := svc.ValidateAndRefresh(ctx, raw); !errors.Is(err, repository.ErrTokenExpired) {
		t.Fatalf("expired token = %v, want ErrTokenExpired", err)
	}
	if len(tokens.byHash) != 0 {
		t.Fatal("expired token must be deleted")
	}
	if len(sessions.rows) != 0 {
		t.Fatal("expiry must evict all of the user's sessions")
	}

	// A replay of the same token is now just invalid.
	if _, err := svc.ValidateAndRefresh(ctx, raw); !errors.Is(err, repository.ErrTokenInvalid) {
		t.Fatalf("replayed token = %v, want ErrTokenInvalid", err)
	}
}

func TestLogout(t *testing.T) {
	svc, _, tokens, sessions := newTestService(t)
	ctx := context.Background()

	t1, _, err := svc.Login(ctx, "alice", "correct-pw", "", "")
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	if _, _, err := svc.Login(ctx, "alice", "correct-pw", "", ""); err != nil {
		t.Fatalf("second login: %v", err)
	}

	if err := svc.Logout(ctx, t1); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	// The presented token is gone, the other token survives, but every
	// session row of the user is evicted.
	if len(tokens.byHash) != 1 {
		t.Fatalf("remaining tokens = %d, want 1", len(tokens.byHash))
	}
	if len(sessions.rows) != 0 {
		t.Fatalf("remaining sessions = %d, want 0", len(sessions.rows))
	}

	if err := svc.Logout(ctx, t1); !errors.Is(err, repository.ErrTokenInvalid) {
		t.Fatalf("double logout = %v, want ErrTokenInvalid", err)
	}
}
