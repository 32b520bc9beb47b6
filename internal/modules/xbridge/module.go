package xbridge

import (
	"pingpong_bot/internal/modules/xbridge/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("xbridge",
		fx.Provide(
			service.NewClient,
		),
	)
}
