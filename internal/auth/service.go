// Package auth implements the session/token lifecycle: issuing opaque
// bearer tokens at login, revoking them at logout, and the per-request
// validate-and-refresh step the access gate runs. Tokens are random hex
// values stored as SHA-256 hashes; each login also appends a row to the
// active-sessions log.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jmorel/etude-backend/internal/model"
	"github.com/jmorel/etude-backend/internal/repository"
	"github.com/jmorel/etude-backend/internal/utils"
)

// ErrInvalidCredentials is returned by Login for an unknown username or a
// password mismatch. The two cases are indistinguishable to the caller.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserStore is the slice of the user repository the service needs.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// TokenStore persists bearer token hashes.
type TokenStore interface {
	Store(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	GetByHash(ctx context.Context, tokenHash string) (model.AccessToken, error)
	TouchLastUsed(ctx context.Context, tokenID uint64) error
	DeleteByHash(ctx context.Context, tokenHash string) error
	DeleteAllForUser(ctx context.Context, userID uint64) error
}

// SessionStore records logins in the active-sessions log.
type SessionStore interface {
	Create(ctx context.Context, userID uint64, ip, userAgent string) (uint64, error)
	TouchActivity(ctx context.Context, userID uint64) error
	DeleteAllForUser(ctx context.Context, userID uint64) error
}

// Service wires the three stores into the token lifecycle.
type Service struct {
	Users    UserStore
	Tokens   TokenStore
	Sessions SessionStore

	// now is swappable in tests.
	now func() time.Time
}

// NewService returns a Service over the given stores.
func NewService(users UserStore, tokens TokenStore, sessions SessionStore) *Service {
	return &Service{Users: users, Tokens: tokens, Sessions: sessions, now: time.Now}
}

// Login verifies credentials and, on success, mints a fresh bearer token
// and appends a new active-session row. A second login for the same user
// creates a second, independent session; nothing is merged. The plaintext
// token is returned exactly once and never retrievable afterwards.
func (s *Service) Login(ctx context.Context, username, password, ip, userAgent string) (string, model.User, error) {
	u, err := s.Users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", model.User{}, ErrInvalidCredentials
		}
		return "", model.User{}, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return "", model.User{}, ErrInvalidCredentials
	}

	raw, err := utils.NewSessionToken()
	if err != nil {
		return "", model.User{}, err
	}
	exp := s.now().UTC().Add(model.TokenTTL)
	if err := s.Tokens.Store(ctx, u.ID, utils.HashTokenRaw(raw), exp); err != nil {
		return "", model.User{}, err
	}
	if _, err := s.Sessions.Create(ctx, u.ID, ip, userAgent); err != nil {
		return "", model.User{}, err
	}
	return raw, u, nil
}

// Logout revokes the presented token and deletes every active-session row
// of its owner. Revoking all sessions rather than just the current one is
// inherited behavior, not per-device logout.
func (s *Service) Logout(ctx context.Context, rawToken string) error {
	t, err := s.Tokens.GetByHash(ctx, utils.HashTokenRaw(rawToken))
	if err != nil {
		return err
	}
	if err := s.Tokens.DeleteByHash(ctx, t.TokenHash); err != nil {
		return err
	}
	return s.Sessions.DeleteAllForUser(ctx, t.UserID)
}

// ValidateAndRefresh is the per-request gate step. Unknown tokens yield
// repository.ErrTokenInvalid. Tokens older than model.TokenTTL are revoked
// together with all of the user's sessions and yield
// repository.ErrTokenExpired. Valid tokens have last_used_at and the
// user's session activity refreshed, and the owning user is returned.
//
// Expiry is keyed off created_at; the stored expires_at column is advisory
// only (it always equals created_at + TTL as written at login).
func (s *Service) ValidateAndRefresh(ctx context.Context, rawToken string) (model.User, error) {
	if rawToken == "" {
		return model.User{}, repository.ErrTokenInvalid
	}
	t, err := s.Tokens.GetByHash(ctx, utils.HashTokenRaw(rawToken))
	if err != nil {
		return model.User{}, err
	}
	if t.Expired(s.now().UTC()) {
		if err := s.Tokens.DeleteByHash(ctx, t.TokenHash); err != nil {
			return model.User{}, err
		}
		if err := s.Sessions.DeleteAllForUser(ctx, t.UserID); err != nil {
			return model.User{}, err
		}
		return model.User{}, repository.ErrTokenExpired
	}
	if err := s.Tokens.TouchLastUsed(ctx, t.ID); err != nil {
		return model.User{}, err
	}
	if err := s.Sessions.TouchActivity(ctx, t.UserID); err != nil {
		return model.User{}, err
	}
	return s.Users.GetByID(ctx, t.UserID)
}
