// Package rest exposes the blog API over HTTP with fiber.
package rest

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/mindbloging/mindbloging/internal/logging"
	"github.com/mindbloging/mindbloging/internal/server/config"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	address string
	app     *fiber.App
	logger  logging.Logger
}

// NewServer builds the fiber application with all routes mounted.
func NewServer(cfg *config.Config, deps Deps, l logging.Logger) *Server {
	logger := l.With("module", "http_server")

	app := fiber.New(fiber.Config{
		AppName:               "mindbloging",
		DisableStartupMessage: true,
		ErrorHandler:          ErrorHandler(logger),
		BodyLimit:             1 << 20,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins(cfg.ClientURL),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))
	app.Use(requestLogger(logger))

	registerRoutes(app, cfg, newHandlers(deps, logger))

	return &Server{address: cfg.EndpointAddrHTTP, app: app, logger: logger}
}

// App returns the underlying fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		if err := s.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			s.logger.Error(ctx, "HTTP shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	return s.app.Listen(s.address)
}

func allowedOrigins(clientURL string) string {
	origins := "http://localhost:3000"
	if clientURL != "" && clientURL != origins {
		origins += ", " + clientURL
	}
	return origins
}

func requestLogger(l logging.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			status, _ = statusFor(err)
		}
		l.Info(c.UserContext(), "request",
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency", time.Since(start).String(),
		)
		return err
	}
}
