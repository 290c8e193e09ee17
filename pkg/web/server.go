package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/pet2cattle/aws-dashboard/pkg/data"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Aggregator produces the AWS side of a page
type Aggregator interface {
	Aggregate(ctx context.Context) (data.AggregateResult, error)
}

// StatusSource produces the orchestration panel of a page
type StatusSource interface {
	Status(ctx context.Context) data.OrchestrationStatus
}

// Config holds server configuration
type Config struct {
	Port             int
	Region           string
	CredentialSource string
	Logger           *slog.Logger
}

// Server serves the dashboard page and its JSON twin
type Server struct {
	app        *fiber.App
	config     Config
	aggregator Aggregator
	status     StatusSource
	page       *template.Template
	logger     *slog.Logger
}

// NewServer creates a new dashboard server
func NewServer(cfg Config, aggregator Aggregator, status StatusSource) (*Server, error) {
	page, err := template.ParseFS(templatesFS, "templates/dashboard.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	server := &Server{
		config:     cfg,
		aggregator: aggregator,
		status:     status,
		page:       page,
		logger:     log,
	}

	server.app = fiber.New(fiber.Config{
		ErrorHandler:          server.errorHandler,
		DisableStartupMessage: true,
	})

	server.setupMiddleware()
	server.setupRoutes()

	return server, nil
}

func (s *Server) setupMiddleware() {
	s.app.Use(recover.New())

	s.app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path}\n",
		TimeFormat: "15:04:05",
	}))
}

func (s *Server) setupRoutes() {
	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	s.app.Get("/", s.handleDashboard)
	s.app.Get("/api/resources", s.handleResources)
}

// App exposes the fiber app (for testing)
func (s *Server) App() *fiber.App {
	return s.app
}

// Start blocks serving on the configured port
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	s.logger.Info("starting server", "addr", addr, "region", s.config.Region, "credentials", s.config.CredentialSource)
	return s.app.Listen(addr)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(timeout time.Duration) error {
	return s.app.ShutdownWithTimeout(timeout)
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	} else {
		s.logger.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
	}

	return c.Status(code).JSON(fiber.Map{
		"error": message,
	})
}
