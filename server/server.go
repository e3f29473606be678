// Package server assembles the HTTP surface: middleware, the v1 API,
// the RSS feed, and the background stats collector.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/akalem0808/memori/internal/profile"
	"github.com/akalem0808/memori/internal/version"
	apierrors "github.com/akalem0808/memori/server/internal/errors"
	"github.com/akalem0808/memori/server/internal/observability"
	"github.com/akalem0808/memori/server/middleware"
	apiv1 "github.com/akalem0808/memori/server/router/api/v1"
	"github.com/akalem0808/memori/server/router/rss"
	"github.com/akalem0808/memori/server/runner/embedding"
	"github.com/akalem0808/memori/server/stats"
	"github.com/akalem0808/memori/store"
)

type Server struct {
	Secret  string
	Profile *profile.Profile
	Store   *store.Store

	echoServer      *echo.Echo
	collector       *stats.Collector
	metrics         *observability.Metrics
	embeddingRunner *embedding.Runner
}

func NewServer(ctx context.Context, prof *profile.Profile, st *store.Store) (*Server, error) {
	s := &Server{
		Secret:    prof.Secret,
		Profile:   prof,
		Store:     st,
		collector: stats.NewCollector(st),
		metrics:   observability.GlobalMetrics(),
	}

	e := echo.New()
	e.Debug = prof.IsDev()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.errorHandler

	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
	}))
	e.Use(echomw.Gzip())
	e.Use(s.requestLogger())

	e.GET("/healthz", s.healthz)

	apiGroup := e.Group("/api/v1")
	apiGroup.Use(middleware.NewRateLimiter(10, 30).Middleware())
	apiV1Service := apiv1.NewAPIV1Service(s.Secret, prof, st, s.collector)
	apiV1Service.RegisterRoutes(apiGroup)

	if apiV1Service.EmbeddingService != nil {
		s.embeddingRunner = embedding.NewRunner(st, apiV1Service.EmbeddingService)
	}

	rssService := rss.NewRSSService(prof, st)
	rssService.RegisterRoutes(e.Group(""))

	s.echoServer = e
	return s, nil
}

func (s *Server) Start(ctx context.Context) error {
	s.collector.Start(ctx)
	if s.embeddingRunner != nil {
		go s.embeddingRunner.Run(ctx)
	}

	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	slog.Info("server started",
		"address", address,
		"version", version.GetCurrentVersion(s.Profile.Mode),
		"driver", s.Profile.Driver)
	if err := s.echoServer.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "failed to start echo server")
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	s.collector.Stop()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}
	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close store", "error", err)
	}
	slog.Info("server shutdown complete")
}

func (s *Server) healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":  "ok",
		"version": version.GetCurrentVersion(s.Profile.Mode),
		"stats":   s.collector.GetSnapshot(),
		"requests": map[string]any{
			"total":  s.metrics.TotalRequests(),
			"failed": s.metrics.TotalFailures(),
			"routes": s.metrics.Snapshot(),
		},
	})
}

// requestLogger attaches a RequestContext to every request and records
// per-route counters.
func (s *Server) requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			route := c.Path()
			reqCtx := observability.NewRequestContext(slog.Default(), route, 0)
			c.SetRequest(c.Request().WithContext(
				observability.WithRequestContext(c.Request().Context(), reqCtx)))

			s.metrics.RecordRequest(route)
			err := next(c)
			s.metrics.RecordDuration(route, reqCtx.Duration())

			if err != nil {
				s.metrics.RecordFailure(route)
				return err
			}
			reqCtx.Info("request handled",
				slog.Int("status", c.Response().Status),
				slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()))
			return nil
		}
	}
}

// errorHandler maps APIError codes onto HTTP statuses and logs failures
// with their code before echo writes the response.
func (s *Server) errorHandler(err error, c echo.Context) {
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		if apiErr, isAPIErr := err.(*apierrors.APIError); isAPIErr {
			httpErr = echo.NewHTTPError(statusFromCode(apiErr.Code), apiErr.Message).SetInternal(apiErr)
		} else {
			httpErr = echo.NewHTTPError(http.StatusInternalServerError, "internal server error").SetInternal(err)
		}
	}

	code := apierrors.GetCodeFromError(httpErr.Internal, codeFromStatus(httpErr.Code))
	if reqCtx, found := observability.FromContext(c.Request().Context()); found {
		reqCtx.Error("request failed", err,
			slog.Int("status", httpErr.Code),
			slog.String(observability.LogFieldErrorCode, string(code)))
	} else {
		slog.Error("request failed", "error", err, "status", httpErr.Code, "code", code)
	}

	s.echoServer.DefaultHTTPErrorHandler(httpErr, c)
}

func statusFromCode(code apierrors.ErrorCode) int {
	switch code {
	case apierrors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case apierrors.ErrCodeInvalidArgument:
		return http.StatusBadRequest
	case apierrors.ErrCodeNotFound:
		return http.StatusNotFound
	case apierrors.ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case apierrors.ErrCodeModelUnavailable, apierrors.ErrCodeVectorSearchUnsupported:
		return http.StatusNotImplemented
	case apierrors.ErrCodeTranscriptionFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func codeFromStatus(status int) apierrors.ErrorCode {
	switch status {
	case http.StatusUnauthorized:
		return apierrors.ErrCodeUnauthorized
	case http.StatusBadRequest:
		return apierrors.ErrCodeInvalidArgument
	case http.StatusNotFound:
		return apierrors.ErrCodeNotFound
	case http.StatusTooManyRequests:
		return apierrors.ErrCodeRateLimitExceeded
	case http.StatusNotImplemented:
		return apierrors.ErrCodeVectorSearchUnsupported
	case http.StatusBadGateway:
		return apierrors.ErrCodeTranscriptionFailed
	default:
		return apierrors.ErrorCode(fmt.Sprintf("HTTP_%d", status))
	}
}
