package feed

import (
	"context"

	"go.uber.org/fx"

	"chart_client/internal/modules/feed/service"
	"chart_client/internal/notify"
)

// Module поднимает стример баров.
func Module() fx.Option {
	return fx.Module("feed",
		fx.Provide(
			func(n notify.Notifier) service.ServiceNotifier { return n },
			service.NewClient,
		),
		fx.Invoke(func(lc fx.Lifecycle, c *service.Client, ctx context.Context) {
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					go c.Run(ctx)
					return nil
				},
			})
		}),
	)
}
