// internal/pkg/bootstrap/app.go

package bootstrap

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"vinylshop/internal/pkg/config"
	"vinylshop/internal/pkg/logger"
	"vinylshop/internal/pkg/tracing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// AppCtx is handed to each service's route registration hook.
type AppCtx struct {
	Mux *http.ServeMux
	Cfg config.Config
}

// AppInfo carries the service-specific pieces StartService needs.
type AppInfo struct {
	Cfg              config.Config
	RegisterHandlers func(appCtx AppCtx)
}

// StartService wraps the startup and graceful-shutdown lifecycle shared by
// every service binary: logger, tracer, HTTP server, metrics endpoint,
// SIGINT/SIGTERM handling.
func StartService(info AppInfo) {
	serviceName := info.Cfg.Service.Name
	logger.Init(serviceName)

	tp, err := tracing.InitTracerProvider(serviceName, info.Cfg.Jaeger.Endpoint)
	if err != nil {
		logger.Logger().Fatal().Err(err).Msg("failed to initialize tracer provider")
	}

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())
	if info.RegisterHandlers != nil {
		info.RegisterHandlers(AppCtx{Mux: mux, Cfg: info.Cfg})
	}

	server := &http.Server{Addr: ":" + strconv.Itoa(info.Cfg.Service.Port), Handler: mux}
	go func() {
		logger.Logger().Info().Msgf("%s listening on :%d", serviceName, info.Cfg.Service.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger().Fatal().Err(err).Msgf("could not listen on %s", server.Addr)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Logger().Info().Msgf("shutting down service %s...", serviceName)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Flush buffered spans before the server stops accepting requests.
	if err := tp.Shutdown(ctx); err != nil {
		logger.Logger().Error().Err(err).Msg("error shutting down tracer provider")
	}

	if err := server.Shutdown(ctx); err != nil {
		logger.Logger().Error().Err(err).Msg("error shutting down http server")
	}

	logger.Logger().Info().Msgf("service %s gracefully shut down", serviceName)
}
