package main

import (
	"context"
	"log"

	"pingpong_bot/internal/modules/ccxt"
	"pingpong_bot/internal/modules/config"
	"pingpong_bot/internal/modules/health"
	"pingpong_bot/internal/modules/pricefeed"
	"pingpong_bot/internal/modules/storage"
	"pingpong_bot/internal/modules/xbridge"
	"pingpong_bot/internal/runner"
	"pingpong_bot/pkg/logger"
	"pingpong_bot/pkg/tracing"

	"go.uber.org/fx"
)

func main() {
	if err := logger.Init(); err != nil {
		log.Fatal(err)
	}

	app := fx.New(
		fx.Provide(
			func() context.Context {
				return context.Background()
			},
		),
		config.Module(),
		storage.Module(),
		xbridge.Module(),
		ccxt.Module(),
		pricefeed.Module(),
		health.Module(),
		runner.Module(),
		fx.Invoke(initTracing),
	)
	app.Run()
}

func initTracing(lc fx.Lifecycle, cfg *config.Config) error {
	if !cfg.Jaeger.Enabled {
		return nil
	}
	_, closeTracer, err := tracing.InitTracer(tracing.Config{
		Host: cfg.Jaeger.Host,
		Port: cfg.Jaeger.Port,
	})
	if err != nil {
		return err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			closeTracer()
			return nil
		},
	})
	return nil
}
