package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jmorel/etude-backend/internal/model"
)

// ContactStore serves the two read-only reference datasets.
type ContactStore interface {
	ListB2B(ctx context.Context) ([]model.B2BContact, error)
	ListB2C(ctx context.Context) ([]model.B2CContact, error)
}

// ContactHandler serves GET /b2b and GET /b2c.
type ContactHandler struct {
	Contacts ContactStore
}

func NewContactHandler(contacts ContactStore) *ContactHandler {
	return &ContactHandler{Contacts: contacts}
}

// ListB2B returns all business contact records.
func (h *ContactHandler) ListB2B(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	records, err := h.Contacts.ListB2B(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, records)
}

// ListB2C returns all consumer contact records.
func (h *ContactHandler) ListB2C(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	records, err := h.Contacts.ListB2C(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, records)
}
