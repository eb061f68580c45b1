package chart

import (
	"context"

	"go.uber.org/fx"

	"chart_client/internal/archive"
	"chart_client/internal/modules/chart/service"
	feedsvc "chart_client/internal/modules/feed/service"
	"chart_client/internal/notify"
)

// Module поднимает контроллер вьюпорта. render.Bridge обязан
// предоставить вызывающий (UI-слой или cmd).
func Module() fx.Option {
	return fx.Module("chart",
		fx.Provide(
			archive.NewRepo,
			func(c *feedsvc.Client) service.Feed { return c },
			func(r *archive.Repo) service.Archive { return r },
			func(n notify.Notifier) service.ServiceNotifier { return n },
			service.NewController,
		),
		fx.Invoke(func(lc fx.Lifecycle, ctrl *service.Controller, ctx context.Context) {
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					go ctrl.Run(ctx)
					return nil
				},
			})
		}),
	)
}
