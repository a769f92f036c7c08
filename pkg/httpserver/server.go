// Package httpserver exposes the push endpoint that maps a web path and
// launches the player, together with the liveness, metrics and userscript
// routes.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/czha8903/fnplayer/pkg/audit"
	"github.com/czha8903/fnplayer/pkg/config"
	"github.com/czha8903/fnplayer/pkg/metrics"
	"github.com/czha8903/fnplayer/pkg/staticfiles"
)

const shutdownTimeout = 15 * time.Second

// ConfigSource provides consistent snapshots of the configuration.
type ConfigSource interface {
	Snapshot() config.Config
}

// Launcher starts the player for a mapped path.
type Launcher interface {
	Launch(executable, target string) error
}

// AuditLog records every push.
type AuditLog interface {
	Append(rec audit.Record) error
}

// Deps are the collaborators of the server.
type Deps struct {
	Config   ConfigSource
	Launcher Launcher
	Audit    AuditLog
	Metrics  *metrics.Metrics // optional, a private registry is used when nil
	Logger   *slog.Logger     // optional
	Version  string
}

type Server struct {
	config   ConfigSource
	launcher Launcher
	audit    AuditLog
	metrics  *metrics.Metrics
	logger   *slog.Logger
	version  string
	now      func() time.Time

	mu     sync.Mutex
	server *http.Server // nil while not serving
}

// NewServer creates a new Server instance but doesn't start it yet.
func NewServer(deps Deps) (*Server, error) {
	if deps.Config == nil || deps.Launcher == nil || deps.Audit == nil {
		return nil, errors.New("httpserver: config, launcher and audit log are required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Metrics == nil {
		m, err := metrics.New(prometheus.NewRegistry())
		if err != nil {
			return nil, err
		}
		deps.Metrics = m
	}
	return &Server{
		config:   deps.Config,
		launcher: deps.Launcher,
		audit:    deps.Audit,
		metrics:  deps.Metrics,
		logger:   deps.Logger,
		version:  deps.Version,
		now:      time.Now,
	}, nil
}

// createRootHandler builds the echo instance serving all routes. cfg is the
// snapshot taken at start; only its address is used here.
func (s *Server) createRootHandler(cfg config.Config) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	// The bridge is reached directly, never through a proxy.
	e.IPExtractor = echo.ExtractIPDirect()

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			s.logger.Error("panic while handling request", "uri", c.Request().RequestURI, "error", err, "stack", string(stack))
			return err
		},
	}))
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))
	e.Use(s.requestLogger())

	e.GET("/ping", handlePing)
	e.POST("/push", s.handlePush)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{})))

	script := staticfiles.Userscript{Host: cfg.Host, Port: cfg.Port, Version: s.version}
	if err := staticfiles.RegisterRoutes(e, script, s.logger); err != nil {
		return nil, err
	}
	return e, nil
}

// requestLogger logs one line per request.
func (s *Server) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.String("ip", v.RemoteIP),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}
			s.logger.LogAttrs(c.Request().Context(), slog.LevelDebug, "request", attrs...)
			return nil
		},
	})
}

// Start listens on the address of the current configuration and serves
// until ctx is done. Host and port changes need a restart to take effect.
func (s *Server) Start(ctx context.Context) error {
	addr := s.config.Snapshot().Addr()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve handles requests on ln until ctx is done, then shuts down
// gracefully. It returns early if the listener fails.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	handler, err := s.createRootHandler(s.config.Snapshot())
	if err != nil {
		ln.Close()
		return err
	}

	srv := &http.Server{
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	s.mu.Lock()
	s.server = srv
	s.mu.Unlock()

	serveErr := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		err := srv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		serveErr <- err
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received by HTTP server")
		if err := s.Stop(); err != nil {
			return err
		}
		return <-serveErr
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	}
}

// Stop gracefully stops the HTTP server.
// Shutting down before Serve has started closes the listener, so Serve
// returns http.ErrServerClosed at once.
func (s *Server) Stop() error {
	s.mu.Lock()
	srv := s.server
	s.server = nil
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("HTTP server stopped")
	return nil
}
