package adapters

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	evbus "github.com/vardius/message-bus"

	"github.com/h44z/sms-portal/internal/app"
)

// MetricsServer exposes console and gateway metrics in the Prometheus format.
type MetricsServer struct {
	*http.Server
	reg *prometheus.Registry

	apiRequestsTotal      *prometheus.CounterVec
	apiRequestDuration    *prometheus.HistogramVec
	sessionEventsTotal    *prometheus.CounterVec
	viewRendersTotal      *prometheus.CounterVec
	serverRequestsTotal   *prometheus.CounterVec
	serverRequestDuration *prometheus.HistogramVec
}

var (
	apiLabels     = []string{"endpoint", "status"}
	sessionLabels = []string{"event"}
	viewLabels    = []string{"view"}
	serverLabels  = []string{"path", "status"}
)

// NewMetricsServer returns a new prometheus server listening on the given address.
func NewMetricsServer(listenAddress string) *MetricsServer {
	reg := prometheus.NewRegistry()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	return &MetricsServer{
		Server: &http.Server{
			Addr:    listenAddress,
			Handler: mux,
		},
		reg: reg,

		apiRequestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "sms_console_api_requests_total",
				Help: "Requests sent to the SMS gateway. Status 0 means the gateway was unreachable.",
			}, apiLabels,
		),
		apiRequestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sms_console_api_request_duration_seconds",
				Help:    "Duration of requests sent to the SMS gateway.",
				Buckets: prometheus.DefBuckets,
			}, apiLabels[:1],
		),
		sessionEventsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "sms_console_session_events_total",
				Help: "Logins, logouts and expired sessions.",
			}, sessionLabels,
		),
		viewRendersTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "sms_console_view_renders_total",
				Help: "Rendered console views.",
			}, viewLabels,
		),
		serverRequestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "sms_gateway_requests_total",
				Help: "Requests handled by the gateway.",
			}, serverLabels,
		),
		serverRequestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sms_gateway_request_duration_seconds",
				Help:    "Duration of requests handled by the gateway.",
				Buckets: prometheus.DefBuckets,
			}, serverLabels[:1],
		),
	}
}

// ConnectToMessageBus counts the session events published by the console.
func (m *MetricsServer) ConnectToMessageBus(bus evbus.MessageBus) error {
	subscriptions := map[string]string{
		app.TopicAuthLogin:      "login",
		app.TopicSessionLogout:  "logout",
		app.TopicSessionExpired: "expired",
	}
	for topic, event := range subscriptions {
		counter := m.sessionEventsTotal.WithLabelValues(event)
		if err := bus.Subscribe(topic, func(app.SessionEvent) { counter.Inc() }); err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
		}
	}
	return nil
}

// Run starts the metrics server and blocks until the context is done.
func (m *MetricsServer) Run(ctx context.Context) {
	go func() {
		if err := m.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics service exited", "address", m.Addr, "error", err)
		}
	}()

	slog.Info("started metrics service", "address", m.Addr)

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := m.Shutdown(shutdownCtx); err != nil {
		slog.Error("metrics service shutdown failed", "address", m.Addr, "error", err)
	} else {
		slog.Info("metrics service shut down gracefully", "address", m.Addr)
	}
}

// ObserveRequest records a finished gateway request of the console.
func (m *MetricsServer) ObserveRequest(endpoint string, status int, duration time.Duration) {
	m.apiRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	m.apiRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// ObserveRender records a rendered console view.
func (m *MetricsServer) ObserveRender(view string) {
	m.viewRendersTotal.WithLabelValues(view).Inc()
}

// ObserveServerRequest records a request handled by the gateway.
func (m *MetricsServer) ObserveServerRequest(path string, status int, duration time.Duration) {
	m.serverRequestsTotal.WithLabelValues(path, strconv.Itoa(status)).Inc()
	m.serverRequestDuration.WithLabelValues(path).Observe(duration.Seconds())
}
