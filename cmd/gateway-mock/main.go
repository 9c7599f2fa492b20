package main

import (
	"context"
	"log/slog"
	"syscall"

	"github.com/go-playground/validator/v10"

	"github.com/h44z/sms-portal/internal"
	"github.com/h44z/sms-portal/internal/adapters"
	"github.com/h44z/sms-portal/internal/app/api/core"
	"github.com/h44z/sms-portal/internal/app/api/gateway/backend"
	"github.com/h44z/sms-portal/internal/app/api/gateway/handlers"
	"github.com/h44z/sms-portal/internal/config"
)

// main starts the mock SMS gateway. It serves the gateway REST API from a local database.
func main() {
	ctx := internal.SignalAwareContext(context.Background(), syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)

	cfg, err := config.GetConfig()
	internal.AssertNoError(err)
	internal.SetupLogging(cfg.Advanced.LogLevel, cfg.Advanced.LogPretty, cfg.Advanced.LogJson, nil)

	slog.Info("Starting mock gateway...")

	rawDb, err := adapters.NewDatabase(cfg.Mock.Database)
	internal.AssertNoError(err)

	database, err := adapters.NewGatewayRepository(rawDb)
	internal.AssertNoError(err)

	seed, err := backend.LoadSeed(&cfg.Mock)
	internal.AssertNoError(err)
	internal.AssertNoError(seed.Apply(ctx, database, database))
	serviceConfig, err := seed.ServiceConfig()
	internal.AssertNoError(err)

	auth := backend.NewAuthService(&cfg.Mock, database)
	defer auth.Close()
	users := backend.NewUserService(database)
	messages := backend.NewMessageService(database)
	campaigns := backend.NewCampaignService(database, database, database)
	files := backend.NewFileService(database)
	services := backend.NewServicesService(serviceConfig, seed.Services.Status)

	if cfg.Mock.DeliveryInterval > 0 {
		go messages.RunDelivery(ctx, cfg.Mock.DeliveryInterval)
	}

	var observer core.RequestObserver
	if cfg.Mock.MetricsAddress != "" {
		metrics := adapters.NewMetricsServer(cfg.Mock.MetricsAddress)
		go metrics.Run(ctx)
		observer = metrics
	}

	if cfg.Mock.HealthAddress != "" {
		health := adapters.NewHealthServer(cfg.Mock.HealthAddress, map[string]adapters.HealthCheck{
			"database": func(ctx context.Context) error {
				sqlDb, err := rawDb.DB()
				if err != nil {
					return err
				}
				return sqlDb.PingContext(ctx)
			},
		})
		go health.Run(ctx)
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	authenticator := handlers.NewAuthenticationHandler(auth)
	apiFrontend := handlers.NewRestApi(
		handlers.NewAuthEndpoint(authenticator, v, auth, users),
		handlers.NewMessageEndpoint(authenticator, v, messages),
		handlers.NewCampaignEndpoint(authenticator, v, campaigns),
		handlers.NewFileEndpoint(authenticator, files),
		handlers.NewUsersEndpoint(authenticator, v, users),
		handlers.NewServicesEndpoint(authenticator, services),
	)

	webSrv := core.NewServer(&cfg.Mock, observer, apiFrontend)
	go webSrv.Run(ctx, cfg.Mock.ListeningAddress)

	// wait until context gets cancelled
	<-ctx.Done()

	slog.Info("Stopped mock gateway")
}
