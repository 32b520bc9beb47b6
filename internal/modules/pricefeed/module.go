package pricefeed

import (
	"pingpong_bot/internal/modules/pricefeed/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("pricefeed",
		fx.Provide(
			service.NewClient,
		),
	)
}
