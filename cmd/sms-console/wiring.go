package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/h44z/sms-portal/internal"
	"github.com/h44z/sms-portal/internal/adapters"
	"github.com/h44z/sms-portal/internal/app"
	"github.com/h44z/sms-portal/internal/app/audit"
	"github.com/h44z/sms-portal/internal/app/gateway"
	"github.com/h44z/sms-portal/internal/app/session"
	"github.com/h44z/sms-portal/internal/config"
)

const (
	queueSize    = 100
	drainTimeout = 5 * time.Second
)

// consoleBackend holds everything the console commands share.
type consoleBackend struct {
	cfg *config.Config

	bus      *app.EventBus
	database *adapters.SqlRepo
	session  *session.Store
	gateway  *gateway.Client
	activity *audit.Manager
	recorder *audit.Recorder
	metrics  *adapters.MetricsServer // nil if disabled

	closers []io.Closer
}

func newConsoleBackend(ctx context.Context, cfg *config.Config) (*consoleBackend, error) {
	b := &consoleBackend{
		cfg: cfg,
		bus: app.NewEventBus(queueSize),
	}

	rawDb, err := adapters.NewDatabase(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}
	b.database, err = adapters.NewSqlRepository(rawDb)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize state database: %w", err)
	}
	b.activity = audit.NewManager(b.database)

	var tokens session.Repository
	switch cfg.Session.Backend {
	case config.SessionBackendMemory:
		tokens = session.NewMemoryRepo()
	case config.SessionBackendRedis:
		redisRepo, err := adapters.NewRedisSessionRepo(ctx, cfg.Session.Redis)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, redisRepo)
		tokens = redisRepo
	default:
		tokens = b.database
	}
	b.session = session.NewStore(cfg.Session.Profile, tokens, b.bus)

	b.recorder, err = audit.NewActivityRecorder(cfg, b.bus, b.database)
	if err != nil {
		return nil, err
	}

	var opts []gateway.ClientOption
	if cfg.Metrics.ListeningAddress != "" {
		b.metrics = adapters.NewMetricsServer(cfg.Metrics.ListeningAddress)
		if err := b.metrics.ConnectToMessageBus(b.bus); err != nil {
			return nil, err
		}
		opts = append(opts, gateway.WithObserver(b.metrics))
	}
	b.gateway = gateway.NewClient(&cfg.Gateway, b.session, opts...)

	return b, nil
}

// StartBackgroundJobs starts the metrics endpoint, if enabled.
func (b *consoleBackend) StartBackgroundJobs(ctx context.Context) {
	if b.metrics != nil {
		go b.metrics.Run(ctx)
	}
}

// Close stores pending activity events before the session backends are closed.
func (b *consoleBackend) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()

	if b.recorder != nil {
		if err := b.recorder.Close(ctx); err != nil {
			slog.Error("activity recorder did not shut down cleanly", "error", err)
		}
	}
	for _, c := range b.closers {
		internal.LogClose(c)
	}
	slog.Debug("console backend closed")
}
