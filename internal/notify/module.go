package notify

import (
	"log"

	"go.uber.org/fx"

	"chart_client/internal/modules/config"
)

func Module() fx.Option {
	return fx.Module("notify",
		fx.Provide(
			func(cfg *config.Config) Notifier {
				if cfg.Telegram.Token == "" || cfg.Telegram.ChatID == 0 {
					return NewStdout()
				}
				t, err := NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID)
				if err != nil {
					log.Printf("[NOTIFY] telegram init failed, fallback to stdout: %v", err)
					return NewStdout()
				}
				return t
			},
		),
	)
}
