package ccxt

import (
	"pingpong_bot/internal/modules/ccxt/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("ccxt",
		fx.Provide(
			service.NewClient,
		),
	)
}
