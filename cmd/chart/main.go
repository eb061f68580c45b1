package main

import (
	"context"
	"log"

	"go.uber.org/fx"

	"chart_client/internal/modules/chart"
	"chart_client/internal/modules/config"
	"chart_client/internal/modules/feed"
	"chart_client/internal/modules/health"
	"chart_client/internal/modules/postgres"
	"chart_client/internal/notify"
	"chart_client/internal/render"
	"chart_client/pkg/logger"
	"chart_client/pkg/tracing"
)

func main() {
	if err := logger.Init(); err != nil {
		log.Fatal(err)
	}
	logger.SetServiceName("chart_client")
	tracing.SetServiceName("chart_client")

	app := fx.New(
		fx.Provide(
			func() context.Context {
				return context.Background()
			},
			// headless-запуск: рендера нет, диапазон уходит в лог
			func() render.Bridge { return render.NewLogBridge() },
		),
		config.Module(),
		postgres.Module(),
		notify.Module(),
		feed.Module(),
		chart.Module(),
		health.Module(),
		fx.Invoke(func(lc fx.Lifecycle, cfg *config.Config) {
			if cfg.Tracing.Host == "" {
				return
			}
			_, closeTracer, err := tracing.InitTracer(tracing.Config{
				Host: cfg.Tracing.Host,
				Port: cfg.Tracing.Port,
			})
			if err != nil {
				logger.Error("tracer init failed: %v", err)
				return
			}
			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					closeTracer()
					return nil
				},
			})
		}),
	)
	app.Run()
}
