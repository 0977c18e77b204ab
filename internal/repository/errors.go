// Package repository defines the data access layer and the sentinel error
// values shared across repositories. Handlers translate these sentinels
// into HTTP status codes: ErrNotFound -> 404, ErrForbidden -> 403,
// ErrConflict -> 409, ErrTokenInvalid/ErrTokenExpired -> 401.
package repository

import "errors"

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own, such as editing another user's comment.
var ErrForbidden = errors.New("forbidden")

// ErrConflict signals a state collision, e.g. a study-case rename whose
// target directory already exists.
var ErrConflict = errors.New("conflict")

// ErrUsernameExists is returned when a username collides with an existing
// account.
var ErrUsernameExists = errors.New("username already exists")

// ErrTokenInvalid is returned by the token gate for unknown or malformed
// bearer tokens.
var ErrTokenInvalid = errors.New("invalid token")

// ErrTokenExpired is returned by the token gate when a token is older than
// its lifetime. Detecting expiry also revokes the token and evicts the
// user's active sessions.
var ErrTokenExpired = errors.New("token expired")
