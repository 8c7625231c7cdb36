package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/quaesitor-ai/quaesitor/internal/app"
	"github.com/quaesitor-ai/quaesitor/internal/handlers"
)

// Server owns the HTTP listener and the request handlers.
type Server struct {
	app    *app.App
	logger arbor.ILogger
	server *http.Server

	queryHandler  *handlers.QueryHandler
	statusHandler *handlers.StatusHandler
	corpusHandler *handlers.CorpusHandler
	wsHandler     *handlers.WebSocketHandler
}

// New builds the server and its routes from a wired application.
func New(application *app.App) *Server {
	cfg := application.Config

	s := &Server{
		app:           application,
		logger:        application.Logger,
		queryHandler:  handlers.NewQueryHandler(application.Pipeline, application.Logger),
		statusHandler: handlers.NewStatusHandler(application.LLM, application.Index, cfg, application.Logger),
		corpusHandler: handlers.NewCorpusHandler(application.Corpus, cfg, application.Logger),
		wsHandler:     handlers.NewWebSocketHandler(application.Events, &cfg.WebSocket, application.Logger),
	}

	mux := s.setupRoutes()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           s.withConditionalMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Start begins serving. Blocks until the listener fails or Shutdown is
// called; a clean shutdown returns nil.
func (s *Server) Start() error {
	s.wsHandler.Start()

	s.logger.Info().
		Str("addr", s.server.Addr).
		Msg("HTTP server listening")

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown stops the event stream and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.wsHandler.Stop()
	return s.server.Shutdown(ctx)
}
