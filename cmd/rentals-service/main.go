package main

import (
	"vinylshop/internal/pkg/bootstrap"
	"vinylshop/internal/pkg/config"
	"vinylshop/internal/pkg/logger"
	"vinylshop/internal/service/rentals/application"
	"vinylshop/internal/service/rentals/infrastructure"
	"vinylshop/internal/service/rentals/interfaces"

	"go.opentelemetry.io/otel"
)

const (
	serviceName = "rentals-service"
	defaultPort = 8082
)

func main() {
	cfg, err := config.Load(serviceName, defaultPort)
	if err != nil {
		panic(err)
	}

	bootstrap.StartService(bootstrap.AppInfo{
		Cfg: cfg,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			store, err := infrastructure.NewMemStoreFromFiles(appCtx.Cfg.Data.Customers, appCtx.Cfg.Data.Rentals)
			if err != nil {
				logger.Logger().Fatal().Err(err).Msg("failed to load rentals seed data")
			}

			svc := application.NewRentalsService(store, otel.Tracer(serviceName))
			interfaces.NewRentalsHandler(svc).RegisterRoutes(appCtx.Mux)
		},
	})
}
