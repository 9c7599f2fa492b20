package adapters

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/h44z/sms-portal/internal/app/api/core/respond"
)

// HealthCheck reports an error if the checked component is not usable.
type HealthCheck func(ctx context.Context) error

// HealthServer answers GET /health with 200 if all checks pass, 503 otherwise.
type HealthServer struct {
	*http.Server
	checks map[string]HealthCheck
}

type healthReport struct {
	Ok     bool
	Checks map[string]string
}

func NewHealthServer(listenAddress string, checks map[string]HealthCheck) *HealthServer {
	h := &HealthServer{checks: checks}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.handleHealth)

	h.Server = &http.Server{
		Addr:         listenAddress,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	return h
}

func (h *HealthServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	report := healthReport{Ok: true, Checks: make(map[string]string, len(h.checks))}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			slog.Warn("health check failed", "check", name, "error", err)
			report.Ok = false
			report.Checks[name] = err.Error()
			continue
		}
		report.Checks[name] = "ok"
	}

	code := http.StatusOK
	if !report.Ok {
		code = http.StatusServiceUnavailable
	}
	respond.JSON(w, code, report)
}

// Run starts the health server and blocks until the context is done.
func (h *HealthServer) Run(ctx context.Context) {
	go func() {
		if err := h.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("health service exited", "address", h.Addr, "error", err)
		}
	}()

	slog.Info("started health service", "address", h.Addr)

	<-ctx.Done()

	// 1-second grace period
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()
	h.SetKeepAlivesEnabled(false)
	_ = h.Shutdown(shutdownCtx)

	slog.Info("health service stopped", "address", h.Addr)
}
