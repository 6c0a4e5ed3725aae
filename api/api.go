package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/petalhealth/petal/pkg/eventstream"
	"github.com/petalhealth/petal/pkg/history"
	"github.com/petalhealth/petal/pkg/identity"
	"github.com/petalhealth/petal/pkg/rag"
	"github.com/petalhealth/petal/pkg/report"
	"github.com/petalhealth/petal/pkg/retriever"
	"github.com/petalhealth/petal/pkg/worker"
)

// Deps are the pipeline components the server serves over HTTP.
// They are injected to allow sharing with CLI commands and tests.
type Deps struct {
	Engine    *rag.Engine
	Retriever *retriever.Retriever
	History   history.Driver
	Reports   *report.Agent
	Verifier  identity.Verifier
	Pool      *worker.Pool
	Events    eventstream.Publisher
	Logger    *slog.Logger
}

// Server is the API server for the petal answer pipeline.
type Server struct {
	config Config
	deps   Deps
	logger *slog.Logger
	app    *fiber.App
}

// NewServer creates a new API server.
func NewServer(config Config, deps Deps) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		deps:   deps,
		logger: deps.Logger,
		app:    app,
	}

	app.Get("/ping", s.handlePing)
	app.Post("/chat/send", s.handleChatSend)
	app.Get("/chat/history", s.handleChatHistory)
	app.Post("/search", s.handleSearch)
	app.Post("/report/analyze", s.handleReportAnalyze)
	app.Post("/admin/reindex", s.handleReindex)

	return s
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server", "listen", s.config.ListenAddr)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
