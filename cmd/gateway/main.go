package main

import (
	"vinylshop/internal/pkg/bootstrap"
	"vinylshop/internal/pkg/config"
	"vinylshop/internal/pkg/httpclient"
	"vinylshop/internal/service/gateway/application"
	"vinylshop/internal/service/gateway/infrastructure/adapter"
	"vinylshop/internal/service/gateway/interfaces"

	"go.opentelemetry.io/otel"
)

const (
	serviceName = "gateway-service"
	defaultPort = 8080
)

func main() {
	cfg, err := config.Load(serviceName, defaultPort)
	if err != nil {
		panic(err)
	}

	bootstrap.StartService(bootstrap.AppInfo{
		Cfg: cfg,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			tracer := otel.Tracer(serviceName)
			client := httpclient.NewClient(tracer, appCtx.Cfg.Timeout())

			records := adapter.NewRecordsHTTPAdapter(client, appCtx.Cfg.Downstream.RecordsURL)
			rentals := adapter.NewRentalsHTTPAdapter(client, appCtx.Cfg.Downstream.RentalsURL)

			svc := application.NewGatewayService(records, rentals, tracer)
			interfaces.NewGatewayHandler(svc, records, rentals).RegisterRoutes(appCtx.Mux)
		},
	})
}
