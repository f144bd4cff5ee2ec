// Package server exposes the support agent over HTTP: the direct chat
// endpoint, the voice tool-call webhook, and the operational endpoints
// (health, metrics, voice config). Both answer-producing routes dispatch
// into the same pipeline so chat and voice answers stay consistent.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/avenhq/support-agent/internal/observability"
	"github.com/avenhq/support-agent/internal/rag"
)

const (
	// DefaultAddr is the default listen address.
	DefaultAddr = ":8080"

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout guards against slow-header clients.
	ReadHeaderTimeout = 10 * time.Second

	// WriteTimeout must cover a full pipeline run: three chained upstream
	// calls with no internal deadline of their own.
	WriteTimeout = 120 * time.Second
)

// Answerer produces an answer for a support question. *rag.Pipeline is the
// production implementation; tests substitute mocks.
type Answerer interface {
	Answer(ctx context.Context, question string) (string, error)
}

// Config carries the transport-level settings the handlers need.
type Config struct {
	VoicePublicKey   string
	VoiceAssistantID string
	WebhookSecret    string
}

// Server is the HTTP server for the support agent.
type Server struct {
	mux      *http.ServeMux
	answerer Answerer
	metrics  *observability.Metrics
	health   *healthState

	voicePublicKey   string
	voiceAssistantID string
	webhookSecret    string
}

// New creates a server with all routes registered.
func New(answerer Answerer, metrics *observability.Metrics, cfg Config) *Server {
	if metrics == nil {
		metrics = observability.NewMetrics()
	}
	s := &Server{
		mux:              http.NewServeMux(),
		answerer:         answerer,
		metrics:          metrics,
		health:           newHealthState(),
		voicePublicKey:   cfg.VoicePublicKey,
		voiceAssistantID: cfg.VoiceAssistantID,
		webhookSecret:    cfg.WebhookSecret,
	}

	s.mux.HandleFunc("/api/ask", s.handleAsk)
	s.mux.HandleFunc("/api/vapi/webhook", s.handleWebhook)
	s.mux.HandleFunc("/api/voice/config", s.handleVoiceConfig)
	s.mux.Handle("/metrics", metrics.Handler())
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/ready", s.handleReady)
	s.mux.HandleFunc("/live", s.handleLive)
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.HandleFunc("/readyz", s.handleReady)
	s.mux.HandleFunc("/livez", s.handleLive)

	return s
}

// Handler returns the HTTP handler with middleware applied.
// Middleware order: recovery → logging → handler.
func (s *Server) Handler() http.Handler {
	return chain(s.mux, recoveryMiddleware, loggingMiddleware)
}

// recordFailure counts a pipeline failure under its stage tag.
func (s *Server) recordFailure(err error) {
	stage := "unknown"
	var stageErr *rag.StageError
	if errors.As(err, &stageErr) {
		stage = string(stageErr.Stage)
	}
	s.metrics.IncFailure(stage)
}

// Run starts the HTTP server and blocks until the context is cancelled,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		WriteTimeout:      WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting HTTP server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()
	s.SetReady(true)

	select {
	case <-ctx.Done():
		s.SetReady(false)
		slog.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
