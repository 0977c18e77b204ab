package middleware // middleware provides reusable request processing for handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jmorel/etude-backend/internal/model"
	"github.com/jmorel/etude-backend/internal/repository"
)

// Validator is the slice of the auth service the gate needs. Validation
// refreshes the token's last_used_at and the user's session activity as a
// side effect, and revokes expired tokens on sight.
type Validator interface {
	ValidateAndRefresh(ctx context.Context, rawToken string) (model.User, error)
}

// TokenAuth returns the access gate applied to every protected route. It
// resolves the bearer token, delegates to the validator, and on success
// stores user_id, username and role in the request context for handlers
// to read via c.Get(). Invalid or expired tokens short-circuit with 401
// and never reach the downstream handler.
func TokenAuth(v Validator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authz := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(authz, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			u, err := v.ValidateAndRefresh(ctx, raw)
			if err != nil {
				if errors.Is(err, repository.ErrTokenExpired) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token expired, please log in again"})
				}
				if errors.Is(err, repository.ErrTokenInvalid) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "auth check failed"})
			}

			c.Set("user_id", u.ID)
			c.Set("username", u.Username)
			c.Set("role", u.Role)
			c.Set("token", raw)
			return next(c)
		}
	}
}
