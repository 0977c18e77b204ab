package model

import "time"

// Role values accepted for a user account. Every account defaults to
// RoleVisitor; only admins may manage other accounts.
const (
	RoleAdmin   = "admin"
	RoleVisitor = "visitor"
)

// User represents an application user record as stored in the `users`
// table. The password hash is never serialized: handlers can return the
// struct directly without leaking credentials.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique login name.
//  PasswordHash – bcrypt hashed password (hidden from JSON).
//  Role         – "admin" or "visitor".
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ValidRole reports whether the given role is one of the accepted values.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleVisitor
}
