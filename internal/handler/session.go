package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jmorel/etude-backend/internal/model"
)

// SessionLister serves the connected-users view.
type SessionLister interface {
	ListConnected(ctx context.Context) ([]model.ConnectedUser, error)
}

// SessionHandler serves GET /connected-users: every live session joined
// with its user.
type SessionHandler struct {
	Sessions SessionLister
}

func NewSessionHandler(sessions SessionLister) *SessionHandler {
	return &SessionHandler{Sessions: sessions}
}

// ListConnected returns the active-session log with user identities.
func (h *SessionHandler) ListConnected(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	connected, err := h.Sessions.ListConnected(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, connected)
}
