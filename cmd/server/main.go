package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/jmorel/etude-backend/internal/auth"
	"github.com/jmorel/etude-backend/internal/config"
	"github.com/jmorel/etude-backend/internal/database"
	"github.com/jmorel/etude-backend/internal/handler"
	"github.com/jmorel/etude-backend/internal/repository"
	"github.com/jmorel/etude-backend/internal/router"
	"github.com/jmorel/etude-backend/internal/storage"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := database.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("schema: %v", err)
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	sessions := repository.NewSessionRepo(db)
	cases := repository.NewStudyCaseRepo(db)
	comments := repository.NewCommentRepo(db)
	contacts := repository.NewContactRepo(db)

	if err := database.SeedContacts(ctx, contacts); err != nil {
		log.Fatalf("seed: %v", err)
	}

	files, err := storage.New(cfg.StorageDir)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	svc := auth.NewService(users, tokens, sessions)

	rdb := config.NewRedisClient() // nil when Redis is not reachable

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	router.Register(e, router.Handlers{
		Auth:       handler.NewAuthHandler(users, svc, cfg.BcryptCost),
		Users:      handler.NewUserHandler(users, cfg.BcryptCost),
		StudyCases: handler.NewStudyCaseHandler(cases, files),
		Comments:   handler.NewCommentHandler(comments),
		Contacts:   handler.NewContactHandler(contacts),
		Sessions:   handler.NewSessionHandler(sessions),
	}, svc, rdb, config.LoadRateLimitConfig(), config.LoadCacheConfig())

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
