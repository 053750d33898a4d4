// Package server exposes the assistant and its memory over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/rcliao/ryan/internal/model"
	"github.com/rcliao/ryan/internal/store"
)

// Assistant answers chat messages and direct code requests.
type Assistant interface {
	Handle(ctx context.Context, input, viewed string) model.Response
	Execute(ctx context.Context, code, language string) model.Response
	Debug(ctx context.Context, code, errorOutput, language, extra string) model.Response
	Analyze(ctx context.Context, code, task, extra string) model.Response
	Fix(ctx context.Context, code, suggestedFix, language, extra string) model.Response
	ProcessDocument(ctx context.Context, fileName, content string) string
}

// Memory is the per-user memory view served under /memory.
type Memory interface {
	User() string
	Available() bool
	Entries(ctx context.Context) []model.Entry
	Get(ctx context.Context, key string) (string, bool)
	SaveCategory(ctx context.Context, key, value, category string) bool
	Delete(ctx context.Context, key string) bool
	Wipe(ctx context.Context) (int, error)
}

// Plugins runs a named plugin.
type Plugins interface {
	Names() []string
	Run(ctx context.Context, name, input string) (string, bool, error)
}

// Deps are the collaborators behind the HTTP surface. Plugins and Stats may
// be nil.
type Deps struct {
	Assistant Assistant
	Memory    Memory
	Plugins   Plugins
	Stats     func(ctx context.Context) (*store.Stats, error)
	LogFile   string
	ModelOK   bool
}

// Server holds the router and its dependencies.
type Server struct {
	deps Deps
	log  zerolog.Logger
}

// New returns a Server over deps.
func New(deps Deps, log zerolog.Logger) *Server {
	return &Server{deps: deps, log: log.With().Str("component", "http").Logger()}
}

// Router wires HTTP routes to handlers.
func (s *Server) Router() *mux.Router {
	root := mux.NewRouter()
	root.Use(Recover(s.log), AccessLog(s.log))

	// Chat
	root.HandleFunc("/chat", s.chat).Methods("POST")

	// Memory
	root.HandleFunc("/memory", s.listMemory).Methods("GET")
	root.HandleFunc("/memory", s.wipeMemory).Methods("DELETE")
	root.HandleFunc("/memory/{key}", s.getMemory).Methods("GET")
	root.HandleFunc("/memory/{key}", s.putMemory).Methods("PUT")
	root.HandleFunc("/memory/{key}", s.deleteMemory).Methods("DELETE")

	// Code tools
	root.HandleFunc("/execute_code", s.executeCode).Methods("POST")
	root.HandleFunc("/debug_code", s.debugCode).Methods("POST")
	root.HandleFunc("/analyze_code", s.analyzeCode).Methods("POST")
	root.HandleFunc("/fix_code", s.fixCode).Methods("POST")

	// Documents and plugins
	root.HandleFunc("/upload_document", s.uploadDocument).Methods("POST")
	root.HandleFunc("/plugins", s.listPlugins).Methods("GET")
	root.HandleFunc("/plugins/{name}", s.runPlugin).Methods("POST")

	// Operations
	root.HandleFunc("/logs", s.logs).Methods("GET")
	root.HandleFunc("/stats", s.stats).Methods("GET")
	root.HandleFunc("/health", s.health).Methods("GET")
	root.Handle("/metrics", promhttp.Handler()).Methods("GET")
	return root
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			s.log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return fmt.Errorf("shutdown: %w", err)
		}
		s.log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		s.log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}
