// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/poiesic/dealflow/core"
)

// DefaultShutdownTimeout bounds graceful shutdown in ListenAndServe.
const DefaultShutdownTimeout = 20 * time.Second

// Matcher is the matching engine served over HTTP.
type Matcher interface {
	Match(ctx context.Context, description string) (*core.MatchResponse, error)
	DraftOutreach(ctx context.Context, description string, signal core.Signal, score float64) (*core.OutreachDraft, error)
}

// Corpus reports the state of the signal corpus for health checks.
type Corpus interface {
	Loaded() bool
	Len() int
}

// Server exposes a Matcher over HTTP.
type Server struct {
	matcher         Matcher
	corpus          Corpus
	router          *gin.Engine
	shutdownTimeout time.Duration
	logger          *slog.Logger
}

// Option configures a Server.
type Option func(*Server) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger.With("component", "server")
		return nil
	}
}

// WithShutdownTimeout sets how long ListenAndServe waits for in-flight
// requests once its context is done.
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(s *Server) error {
		if timeout <= 0 {
			return errors.New("shutdown timeout must be positive")
		}
		s.shutdownTimeout = timeout
		return nil
	}
}

// New creates a server for matcher. corpus may be nil, in which case the
// health check reports zero signals.
func New(matcher Matcher, corpus Corpus, opts ...Option) (*Server, error) {
	if matcher == nil {
		return nil, errors.New("matcher is required")
	}

	s := &Server{
		matcher:         matcher,
		corpus:          corpus,
		shutdownTimeout: DefaultShutdownTimeout,
		logger:          slog.Default().With("component", "server"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(RequestID(), AccessLog(s.logger), Recover(s.logger))

	r.NoRoute(func(c *gin.Context) {
		writeError(c, http.StatusNotFound, CodeNotFound, "no such endpoint")
	})
	r.NoMethod(func(c *gin.Context) {
		writeError(c, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", s.handleHealth)
	r.POST("/match", s.handleMatch)
	r.POST("/email", s.handleEmail)
	return r
}

// Handler returns the HTTP handler serving all routes.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
