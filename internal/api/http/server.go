// Package httpapi exposes one forecast store over HTTP for a browser map.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mekedron/airq-cli/internal/forecast"
)

const shutdownTimeout = 5 * time.Second

// Server routes HTTP requests to a forecast store.
type Server struct {
	router *gin.Engine
	store  *forecast.Store
	logger *slog.Logger
}

// NewServer builds the gin router. mode is one of debug, release or test.
func NewServer(store *forecast.Store, logger *slog.Logger, mode string) *Server {
	if mode != "" {
		gin.SetMode(mode)
	}
	if logger == nil {
		logger = slog.Default()
	}

	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		router: router,
		store:  store,
		logger: logger.With("component", "http"),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/ping", s.handlePing)

	api := s.router.Group("/api")
	api.GET("/state", s.handleGetState)
	api.POST("/location", s.handlePostLocation)
	api.PUT("/hour", s.handlePutHour)
	api.GET("/markers", s.handleGetMarkers)
}

// Handler returns the router for embedding or tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx ends, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http: %w", err)
	}
	return nil
}
