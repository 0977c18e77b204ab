package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/jmorel/etude-backend/internal/config"
	"github.com/jmorel/etude-backend/internal/handler"
	"github.com/jmorel/etude-backend/internal/middleware"
)

// Handlers bundles every handler the router wires up.
type Handlers struct {
	Auth       *handler.AuthHandler
	Users      *handler.UserHandler
	StudyCases *handler.StudyCaseHandler
	Comments   *handler.CommentHandler
	Contacts   *handler.ContactHandler
	Sessions   *handler.SessionHandler
}

// Register wires all routes onto the Echo instance. Register and login
// are the only unauthenticated endpoints besides the health check; they
// carry the rate limiter. Everything else goes through the token gate,
// and the two seeded listings additionally sit behind the JSON cache.
func Register(e *echo.Echo, h Handlers, v middleware.Validator, rdb *redis.Client,
	rl config.RateLimitConfig, cc config.CacheConfig) {

	e.GET("/healthz", handler.Health)

	limited := middleware.RateLimit(rl, rdb)
	e.POST("/register", h.Auth.Register, limited)
	e.POST("/login", h.Auth.Login, limited)

	g := e.Group("", middleware.TokenAuth(v))

	g.POST("/logout", h.Auth.Logout)
	g.GET("/me", h.Auth.Me)
	g.GET("/connected-users", h.Sessions.ListConnected)

	g.GET("/users", h.Users.List)
	g.GET("/users/:id", h.Users.Get)
	g.PUT("/users/:id", h.Users.Update)
	g.DELETE("/users/:id", h.Users.Delete)

	g.GET("/study-cases", h.StudyCases.List)
	g.POST("/study-cases", h.StudyCases.Create)
	g.GET("/study-cases/:id", h.StudyCases.Get)
	g.PUT("/study-cases/:id", h.StudyCases.UpdateInfo)
	g.PUT("/study-cases/:id/info", h.StudyCases.UpdateInfo)
	g.POST("/study-cases/:id/upload-zip", h.StudyCases.UploadZip)
	g.DELETE("/study-cases/:id", h.StudyCases.Delete)

	g.GET("/comments", h.Comments.List)
	g.POST("/comments", h.Comments.Create)
	g.GET("/comments/:id", h.Comments.Get)
	g.PUT("/comments/:id", h.Comments.Update)
	g.DELETE("/comments/:id", h.Comments.Delete)
	g.GET("/comments/study_case/:study_case_id", h.Comments.ListByStudyCase)
	g.GET("/comments/study_case/:study_case_id/user/:user_id", h.Comments.ListByStudyCaseAndUser)

	cached := middleware.CacheJSON(cc, rdb)
	g.GET("/b2b", h.Contacts.ListB2B, cached)
	g.GET("/b2c", h.Contacts.ListB2C, cached)
}
