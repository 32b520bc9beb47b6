package health

import (
	"pingpong_bot/internal/modules/health/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("health",
		fx.Provide(
			service.NewState,
		),
	)
}
