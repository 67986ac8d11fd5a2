// Package server exposes the study planner over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter wires middleware and routes.
func NewRouter(h *Handler, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestID())
	r.Use(requestLogger(logger))

	r.GET("/health", h.Health)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/plans", h.CreatePlan)

		sessions := v1.Group("/sessions")
		{
			sessions.GET("", h.ListSessions)
			sessions.POST("/complete", h.CompleteSession)
		}

		v1.GET("/progress", h.Progress)
		v1.GET("/completion-rate", h.CompletionRate)

		exports := v1.Group("/export")
		{
			exports.GET("/ics", h.ExportICS)
			exports.GET("/xlsx", h.ExportXLSX)
		}

		v1.GET("/quotes/random", h.RandomQuote)
	}

	return r
}

// Serve runs the HTTP server until ctx is cancelled, then shuts down
// gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("http server stopped")
	return nil
}
