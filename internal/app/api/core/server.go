package core

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-pkgz/routegroup"

	"github.com/h44z/sms-portal/internal/config"
)

const (
	RequestIDKey = "X-Request-ID"
)

type GroupSetupFn func(group *routegroup.Bundle)

// Server serves the gateway REST API below /api.
type Server struct {
	cfg    *config.MockConfig
	server *routegroup.Bundle
}

func NewServer(cfg *config.MockConfig, observer RequestObserver, endpoints ...GroupSetupFn) *Server {
	s := &Server{
		cfg:    cfg,
		server: routegroup.New(http.NewServeMux()),
	}

	s.server.Use(tracingMiddleware)
	s.server.Use(loggingMiddleware{logRequests: cfg.RequestLogging, observer: observer}.Handler)
	s.server.Use(recoveryMiddleware)

	api := s.server.Mount("/api")
	for _, setupFn := range endpoints {
		setupFn(api)
	}

	return s
}

// Handler returns the root handler, useful for tests.
func (s *Server) Handler() http.Handler {
	return s.server
}

// Run serves requests until the context is done.
func (s *Server) Run(ctx context.Context, listenAddress string) {
	srv := &http.Server{
		Addr:    listenAddress,
		Handler: s.server,
	}

	srvContext, cancelFn := context.WithCancel(ctx)
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			slog.Info("gateway service exited", "address", listenAddress, "error", err)
			cancelFn()
		}
	}()
	slog.Info("started gateway service", "address", listenAddress)

	<-srvContext.Done()

	slog.Debug("gateway service shutting down, grace period: 5 seconds")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)

	slog.Debug("gateway service shut down")
}
