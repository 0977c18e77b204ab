package model

import "time"

// TokenTTL is the absolute lifetime of a bearer token. Expiry is keyed off
// the token's creation time; ExpiresAt is written at login as advisory
// metadata and always equals CreatedAt + TokenTTL.
const TokenTTL = 24 * time.Hour

// AccessToken models a row in the `access_tokens` table. Only the SHA-256
// hash of the opaque token is stored; the plaintext is returned to the
// client exactly once at login.
//
// Fields:
//  ID         – primary key identifier.
//  UserID     – owner of the token.
//  TokenHash  – SHA-256 hex digest of the token value.
//  LastUsedAt – when the token last passed the gate (null until first use).
//  ExpiresAt  – advisory expiration timestamp (CreatedAt + 24h).
//  CreatedAt  – issuance time; the canonical expiry source.
type AccessToken struct {
	ID         uint64
	UserID     uint64
	TokenHash  string
	LastUsedAt *time.Time
	ExpiresAt  time.Time
	CreatedAt  time.Time
}

// Expired reports whether the token is older than TokenTTL at the given
// instant. The creation time is the single source of truth here, matching
// the gate's behavior rather than the stored ExpiresAt column.
func (t AccessToken) Expired(now time.Time) bool {
	return now.Sub(t.CreatedAt) >= TokenTTL
}
