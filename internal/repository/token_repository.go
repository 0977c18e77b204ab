package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmorel/etude-backend/internal/model"
)

// TokenRepo persists bearer tokens (single 'token_hash' column, SHA-256 at
// rest). Expiry is evaluated against created_at, not the stored
// expires_at column; see model.AccessToken.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Store inserts a token hash row for the user. expires_at is written as
// advisory metadata equal to now + model.TokenTTL.
func (r *TokenRepo) Store(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO access_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)",
		userID, tokenHash, exp.UTC())
	return err
}

// GetByHash loads the token row for a hash, or ErrTokenInvalid when no row
// exists.
func (r *TokenRepo) GetByHash(ctx context.Context, tokenHash string) (model.AccessToken, error) {
	var (
		t        model.AccessToken
		lastUsed sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,user_id,token_hash,last_used_at,expires_at,created_at FROM access_tokens WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&t.ID, &t.UserID, &t.TokenHash, &lastUsed, &t.ExpiresAt, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return t, ErrTokenInvalid
	}
	if err != nil {
		return t, err
	}
	if lastUsed.Valid {
		t.LastUsedAt = &lastUsed.Time
	}
	return t, nil
}

// TouchLastUsed refreshes last_used_at on every gated request.
func (r *TokenRepo) TouchLastUsed(ctx context.Context, tokenID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE access_tokens SET last_used_at=NOW() WHERE id=?", tokenID)
	return err
}

// DeleteByHash revokes a single token.
func (r *TokenRepo) DeleteByHash(ctx context.Context, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM access_tokens WHERE token_hash=?", tokenHash)
	return err
}

// DeleteAllForUser revokes every token the user holds. Used on logout and
// on expiry eviction.
func (r *TokenRepo) DeleteAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM access_tokens WHERE user_id=?", userID)
	return err
}
