package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/jmorel/etude-backend/internal/model"
	"github.com/jmorel/etude-backend/internal/repository"
)

// CommentStore is the slice of the comment repository the handler needs.
type CommentStore interface {
	Create(ctx context.Context, userID, studyCaseID uint64, text string) (model.Comment, error)
	GetByID(ctx context.Context, id uint64) (model.Comment, error)
	UpdateText(ctx context.Context, id, actingUserID uint64, text string) (model.Comment, error)
	Delete(ctx context.Context, id uint64) error
	List(ctx context.Context, studyCaseID, userID uint64) ([]model.Comment, error)
}

// CommentHandler serves comment CRUD and the filtered listings.
type CommentHandler struct {
	Comments CommentStore
}

func NewCommentHandler(comments CommentStore) *CommentHandler {
	return &CommentHandler{Comments: comments}
}

type createCommentReq struct {
	UserID      uint64 `json:"user_id"`
	StudyCaseID uint64 `json:"study_case_id"`
	Comment     string `json:"comment"`
}

type updateCommentReq struct {
	Comment string `json:"comment"`
}

// List returns all comments. GET /comments
func (h *CommentHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	comments, err := h.Comments.List(ctx, 0, 0)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, comments)
}

// Create adds a comment on a study case. POST /comments
func (h *CommentHandler) Create(c echo.Context) error {
	var req createCommentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	fieldErrs := map[string]string{}
	if req.UserID == 0 {
		fieldErrs["user_id"] = "required"
	}
	if req.StudyCaseID == 0 {
		fieldErrs["study_case_id"] = "required"
	}
	if strings.TrimSpace(req.Comment) == "" {
		fieldErrs["comment"] = "required"
	}
	if len(fieldErrs) > 0 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": fieldErrs})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	cm, err := h.Comments.Create(ctx, req.UserID, req.StudyCaseID, req.Comment)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnprocessableEntity,
				echo.Map{"errors": map[string]string{"study_case_id": "user or study case does not exist"}})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create comment failed"})
	}
	return c.JSON(http.StatusCreated, cm)
}

// Get returns one comment. GET /comments/:id
func (h *CommentHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	cm, err := h.Comments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "comment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, cm)
}

// Update edits the comment text. Only the comment's owner may edit it;
// anyone else gets 403 and the text is left untouched. PUT /comments/:id
func (h *CommentHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req updateCommentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Comment) == "" {
		return c.JSON(http.StatusUnprocessableEntity,
			echo.Map{"errors": map[string]string{"comment": "required"}})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	cm, err := h.Comments.UpdateText(ctx, id, uid, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "comment not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "unauthorized"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, cm)
}

// Delete removes a comment. The inherited contract applies no ownership
// check here. DELETE /comments/:id
func (h *CommentHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Comments.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "comment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ListByStudyCase returns comments for one study case.
// GET /comments/study_case/:study_case_id
func (h *CommentHandler) ListByStudyCase(c echo.Context) error {
	scID, err := pathID(c, "study_case_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	comments, err := h.Comments.List(ctx, scID, 0)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, comments)
}

// ListByStudyCaseAndUser narrows the listing to one user's comments on
// one study case. GET /comments/study_case/:study_case_id/user/:user_id
func (h *CommentHandler) ListByStudyCaseAndUser(c echo.Context) error {
	scID, err := pathID(c, "study_case_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	uid, err := pathID(c, "user_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	comments, err := h.Comments.List(ctx, scID, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, comments)
}
