package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/coreos/go-systemd/v22/daemon"
	"golang.org/x/time/rate"

	"github.com/nlopezgi/bazel-toolchains/pkg/errors"
)

// Server is the autoconfig HTTP server. API handlers are registered by the
// caller; system endpoints and middleware are owned here.
type Server struct {
	cfg      *Config
	name     string
	version  string
	commit   string
	date     string
	handlers map[string]http.HandlerFunc

	limiter *rate.Limiter

	mu    sync.RWMutex
	ready bool
}

// Option is a functional option for configuring the Server.
type Option func(*Server)

// WithName sets the service name reported by the default route.
func WithName(name string) Option {
	return func(s *Server) {
		s.name = name
	}
}

// WithVersion sets the service version reported by the default route and
// GET /version.
func WithVersion(version string) Option {
	return func(s *Server) {
		s.version = version
	}
}

// WithBuildInfo sets the commit and build date reported by GET /version.
func WithBuildInfo(commit, date string) Option {
	return func(s *Server) {
		s.commit = commit
		s.date = date
	}
}

// WithConfig replaces the default configuration.
func WithConfig(cfg *Config) Option {
	return func(s *Server) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithHandler registers API handlers by route path.
func WithHandler(handlers map[string]http.HandlerFunc) Option {
	return func(s *Server) {
		for path, handler := range handlers {
			s.handlers[path] = handler
		}
	}
}

// New creates a server with the provided options.
func New(opts ...Option) *Server {
	s := &Server{
		cfg:      DefaultConfig(),
		name:     "autoconfig",
		version:  "dev",
		commit:   "unknown",
		date:     "unknown",
		handlers: make(map[string]http.HandlerFunc),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.limiter = rate.NewLimiter(s.cfg.RateLimit, s.cfg.RateLimitBurst)
	return s
}

// Run starts the server and blocks until the context is cancelled, a
// termination signal arrives, or the listener fails. Shutdown is graceful
// within the configured timeout, with systemd readiness notifications when
// running under systemd.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf("%s:%d", s.cfg.Address, s.cfg.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      s.setupRoutes(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	s.setReady(true)
	notifySystemd(daemon.SdNotifyReady)

	select {
	case err := <-errCh:
		s.setReady(false)
		return errors.Wrap(errors.ErrCodeUnavailable, "http server failed", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down", "timeout", s.cfg.ShutdownTimeout)
	s.setReady(false)
	notifySystemd(daemon.SdNotifyStopping)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(errors.ErrCodeTimeout, "graceful shutdown failed", err)
	}

	slog.Info("server stopped")
	return nil
}

func (s *Server) setReady(ready bool) {
	s.mu.Lock()
	s.ready = ready
	s.mu.Unlock()
}

// notifySystemd reports server state to systemd. Outside systemd this is a
// no-op.
func notifySystemd(state string) {
	sent, err := daemon.SdNotify(false, state)
	if err != nil {
		slog.Warn("systemd notification failed", "state", state, "error", err)
		return
	}
	if sent {
		slog.Debug("notified systemd", "state", state)
	}
}
