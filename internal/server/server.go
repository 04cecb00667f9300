package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/walletgate/walletgate/internal/apperr"
	"github.com/walletgate/walletgate/internal/config"
	"github.com/walletgate/walletgate/internal/routes"
)

// Server wraps the Fiber application and shared dependencies.
type Server struct {
	app   *fiber.App
	cfg   config.Config
	db    *pgxpool.Pool
	cache *redis.Client
}

// New instantiates the HTTP server and delegates route wiring to routes.Setup.
func New(cfg config.Config, db *pgxpool.Pool, cache *redis.Client, logger *slog.Logger) (*Server, error) {
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorHandler: errorHandler,
	})

	if err := routes.Setup(app, routes.Deps{Cfg: cfg, DB: db, Cache: cache, Logger: logger}); err != nil {
		return nil, err
	}

	return &Server{app: app, cfg: cfg, db: db, cache: cache}, nil
}

// errorHandler maps taxonomy errors onto HTTP statuses and renders the
// {code, message} body the client reads.
func errorHandler(c *fiber.Ctx, err error) error {
	status := http.StatusInternalServerError
	code := "INTERNAL"

	switch apperr.KindOf(err) {
	case apperr.NotFound:
		status = http.StatusNotFound
		code = string(apperr.NotFound)
	case apperr.InvalidArgument:
		status = http.StatusBadRequest
		code = string(apperr.InvalidArgument)
	case apperr.InvalidState:
		status = http.StatusConflict
		code = string(apperr.InvalidState)
	default:
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			status = fiberErr.Code
			code = http.StatusText(fiberErr.Code)
		}
	}

	return c.Status(status).JSON(fiber.Map{"code": code, "message": err.Error()})
}

// App exposes the underlying Fiber application for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen starts the HTTP server.
func (s *Server) Listen() error {
	return s.app.Listen(s.cfg.Address())
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
