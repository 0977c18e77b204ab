package model

import "time"

// ActiveSession records one login's connection metadata. A new row is
// inserted on every successful login; nothing enforces one row per user,
// so concurrent logins produce multiple live sessions.
//
// Fields:
//  ID           – primary key identifier.
//  UserID       – the user this login belongs to.
//  IPAddress    – client address at login time (may be empty).
//  UserAgent    – client software at login time (may be empty).
//  LastActivity – bumped on every gated request.
//  CreatedAt    – login time.
type ActiveSession struct {
	ID           uint64    `json:"id"`
	UserID       uint64    `json:"user_id"`
	IPAddress    string    `json:"ip_address"`
	UserAgent    string    `json:"user_agent"`
	LastActivity time.Time `json:"last_activity"`
	CreatedAt    time.Time `json:"created_at"`
}

// ConnectedUser is an ActiveSession joined with its owning user, as served
// by GET /connected-users.
type ConnectedUser struct {
	SessionID    uint64    `json:"session_id"`
	UserID       uint64    `json:"user_id"`
	Username     string    `json:"username"`
	Role         string    `json:"role"`
	IPAddress    string    `json:"ip_address"`
	UserAgent    string    `json:"user_agent"`
	LastActivity time.Time `json:"last_activity"`
}
