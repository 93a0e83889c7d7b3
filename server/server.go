// Package server wires the HTTP surface: routing, middleware, the
// upstream client and its cache.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/SampleBias/mcp-stem-informatics/internal/profile"
	"github.com/SampleBias/mcp-stem-informatics/plugin/stemformatics"
	"github.com/SampleBias/mcp-stem-informatics/server/internal/observability"
	"github.com/SampleBias/mcp-stem-informatics/server/middleware"
	apiv1 "github.com/SampleBias/mcp-stem-informatics/server/router/api/v1"
	"github.com/SampleBias/mcp-stem-informatics/store/cache"
)

// Server hosts the gateway API.
type Server struct {
	Profile *profile.Profile

	echo   *echo.Echo
	logger *slog.Logger
	client *stemformatics.Client
}

// NewServer assembles the gateway from the runtime profile. The cache
// store is chosen here once; everything downstream sees only the
// Store interface.
func NewServer(ctx context.Context, p *profile.Profile) (*Server, error) {
	logger := observability.NewLogger(p.IsDev())

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var store cache.Store
	if p.CacheEnabled {
		store = cache.New(cache.Config{
			TTL:      p.CacheTTL(),
			MaxBytes: p.CacheMaxBytes(),
		})
		store = cache.NewMeteredStore("stemformatics", registry, store)
		logger.Info("response cache enabled",
			slog.Duration("ttl", p.CacheTTL()),
			slog.Int64("max_bytes", p.CacheMaxBytes()))
	} else {
		store = cache.NopStore{}
		logger.Info("response cache disabled")
	}

	client := stemformatics.NewClient(&stemformatics.Config{
		BaseURL:           p.APIBaseURL,
		Timeout:           p.APITimeout(),
		UseAuth:           p.UseAuth,
		APIKey:            p.APIKey,
		RequestsPerSecond: stemformatics.DefaultConfig().RequestsPerSecond,
	}, store)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	}))
	e.Use(requestLogger(logger))
	e.Use(middleware.NewRateLimiter(0, 0).Middleware())

	s := &Server{
		Profile: p,
		echo:    e,
		logger:  logger,
		client:  client,
	}

	e.GET("/healthz", s.healthz)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	metrics := observability.NewMetrics("stemformatics", registry)
	apiService := apiv1.NewAPIV1Service(p, client, metrics)
	apiService.RegisterRoutes(e)

	return s, nil
}

// Start runs the HTTP listener until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	s.logger.Info("server started",
		slog.String("address", address),
		slog.String("version", s.Profile.Version),
		slog.String("mode", s.Profile.Mode))
	if err := s.echo.Start(address); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests before stopping.
func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.echo.Shutdown(ctx); err != nil {
		s.logger.Error("failed to shut down server gracefully", slog.String("error", err.Error()))
	}
	s.logger.Info("server stopped")
}

func (s *Server) healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.Profile.Version,
	})
}

// requestLogger logs each request with a generated request ID.
func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			requestID := uuid.New().String()
			c.Response().Header().Set(echo.HeaderXRequestID, requestID)

			err := next(c)

			logger.Info("request",
				slog.String(observability.LogFieldRequestID, requestID),
				slog.String("method", c.Request().Method),
				slog.String("path", c.Request().URL.Path),
				slog.Int("status", c.Response().Status),
				slog.Int64(observability.LogFieldDuration, time.Since(start).Milliseconds()))
			return err
		}
	}
}
