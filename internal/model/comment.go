package model

import "time"

// Comment belongs to exactly one user and one study case. Only the owner
// may edit the text; deletion carries no ownership check.
type Comment struct {
	ID          uint64    `json:"id"`
	UserID      uint64    `json:"user_id"`
	StudyCaseID uint64    `json:"study_case_id"`
	Comment     string    `json:"comment"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
