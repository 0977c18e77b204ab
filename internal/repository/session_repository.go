package repository

import (
	"context"
	"database/sql"

	"github.com/jmorel/etude-backend/internal/model"
)

// SessionRepo manages the append-only 'active_sessions' log. Every login
// inserts a fresh row; there is deliberately no per-user uniqueness, so a
// user logged in from two clients owns two rows.
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

// Create records a new login.
func (r *SessionRepo) Create(ctx context.Context, userID uint64, ip, userAgent string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO active_sessions (user_id, ip_address, user_agent, last_activity) VALUES (?,?,?,NOW())",
		userID, ip, userAgent)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// TouchActivity bumps last_activity on all of the user's sessions. The
// original system tracks activity per user rather than per session, and
// that behavior is preserved.
func (r *SessionRepo) TouchActivity(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE active_sessions SET last_activity=NOW() WHERE user_id=?", userID)
	return err
}

// DeleteAllForUser evicts every session the user holds (logout and token
// expiry both revoke all sessions, not just the current one).
func (r *SessionRepo) DeleteAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM active_sessions WHERE user_id=?", userID)
	return err
}

// ListConnected returns every live session joined with its user, for
// GET /connected-users.
func (r *SessionRepo) ListConnected(ctx context.Context) ([]model.ConnectedUser, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT s.id, u.id, u.username, u.role,
		       COALESCE(s.ip_address,''), COALESCE(s.user_agent,''), s.last_activity
		FROM active_sessions s
		JOIN users u ON u.id = s.user_id
		ORDER BY s.last_activity DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.ConnectedUser{}
	for rows.Next() {
		var cu model.ConnectedUser
		if err := rows.Scan(&cu.SessionID, &cu.UserID, &cu.Username, &cu.Role,
			&cu.IPAddress, &cu.UserAgent, &cu.LastActivity); err != nil {
			return nil, err
		}
		out = append(out, cu)
	}
	return out, rows.Err()
}
