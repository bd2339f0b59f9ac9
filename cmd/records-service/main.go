package main

import (
	"vinylshop/internal/pkg/bootstrap"
	"vinylshop/internal/pkg/config"
	"vinylshop/internal/pkg/logger"
	"vinylshop/internal/service/records/application"
	"vinylshop/internal/service/records/infrastructure"
	"vinylshop/internal/service/records/interfaces"

	"go.opentelemetry.io/otel"
)

const (
	serviceName = "records-service"
	defaultPort = 8081
)

func main() {
	cfg, err := config.Load(serviceName, defaultPort)
	if err != nil {
		panic(err)
	}

	bootstrap.StartService(bootstrap.AppInfo{
		Cfg: cfg,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			store, err := infrastructure.NewMemStoreFromFile(appCtx.Cfg.Data.Records)
			if err != nil {
				logger.Logger().Fatal().Err(err).Msg("failed to load records seed data")
			}

			svc := application.NewRecordsService(store, otel.Tracer(serviceName))
			interfaces.NewRecordsHandler(svc).RegisterRoutes(appCtx.Mux)
		},
	})
}
