package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmorel/etude-backend/internal/model"
)

// CommentRepo provides access to the 'comments' table.
type CommentRepo struct{ DB *sql.DB }

func NewCommentRepo(db *sql.DB) *CommentRepo { return &CommentRepo{DB: db} }

const commentCols = "id,user_id,study_case_id,comment,created_at,updated_at"

func scanComment(row *sql.Row) (model.Comment, error) {
	var cm model.Comment
	err := row.Scan(&cm.ID, &cm.UserID, &cm.StudyCaseID, &cm.Comment, &cm.CreatedAt, &cm.UpdatedAt)
	if err == sql.ErrNoRows {
		return cm, ErrNotFound
	}
	return cm, err
}

// Create inserts a comment. Foreign key violations (unknown user or study
// case) surface as ErrNotFound so the handler can reject the reference.
func (r *CommentRepo) Create(ctx context.Context, userID, studyCaseID uint64, text string) (model.Comment, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO comments (user_id, study_case_id, comment) VALUES (?,?,?)",
		userID, studyCaseID, text)
	if err != nil {
		if isFKViolation(err) {
			return model.Comment{}, ErrNotFound
		}
		return model.Comment{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Comment{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches a comment by id.
func (r *CommentRepo) GetByID(ctx context.Context, id uint64) (model.Comment, error) {
	return scanComment(r.DB.QueryRowContext(ctx,
		"SELECT "+commentCols+" FROM comments WHERE id=? LIMIT 1", id))
}

// UpdateText replaces the comment body after verifying ownership: only the
// user who wrote a comment may edit it.
func (r *CommentRepo) UpdateText(ctx context.Context, id, actingUserID uint64, text string) (model.Comment, error) {
	cm, err := r.GetByID(ctx, id)
	if err != nil {
		return model.Comment{}, err
	}
	if cm.UserID != actingUserID {
		return model.Comment{}, ErrForbidden
	}
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE comments SET comment=?, updated_at=NOW() WHERE id=?", text, id); err != nil {
		return model.Comment{}, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a comment. No ownership check applies here; the original
// contract lets any authenticated user delete any comment.
func (r *CommentRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM comments WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns comments, optionally filtered by study case and user. Zero
// values mean "no filter"; the user filter only applies together with the
// study-case filter, matching the exposed routes.
func (r *CommentRepo) List(ctx context.Context, studyCaseID, userID uint64) ([]model.Comment, error) {
	q := "SELECT " + commentCols + " FROM comments"
	args := []any{}
	switch {
	case studyCaseID != 0 && userID != 0:
		q += " WHERE study_case_id=? AND user_id=?"
		args = append(args, studyCaseID, userID)
	case studyCaseID != 0:
		q += " WHERE study_case_id=?"
		args = append(args, studyCaseID)
	}
	q += " ORDER BY id"
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Comment{}
	for rows.Next() {
		var cm model.Comment
		if err := rows.Scan(&cm.ID, &cm.UserID, &cm.StudyCaseID, &cm.Comment, &cm.CreatedAt, &cm.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, cm)
	}
	return out, rows.Err()
}

// isFKViolation detects MySQL foreign-key failures (error 1452).
func isFKViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1452")
}
