package runner

import (
	"context"

	ccxtsvc "pingpong_bot/internal/modules/ccxt/service"
	"pingpong_bot/internal/modules/config"
	pricefeedsvc "pingpong_bot/internal/modules/pricefeed/service"
	xbridgesvc "pingpong_bot/internal/modules/xbridge/service"
	"pingpong_bot/internal/notify"
	"pingpong_bot/pkg/logger"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("runner",
		fx.Provide(
			func(c *xbridgesvc.Client) WalletBridge { return c },
			func(c *ccxtsvc.Client) PriceOracle { return c },
			newNotifier,
			NewController,
		),
		fx.Invoke(registerLifecycle),
	)
}

// Telegram при заданном токене, иначе stdout-заглушка.
func newNotifier(cfg *config.Config) notify.Notifier {
	if cfg.Telegram.Token == "" {
		return notify.NewStdout()
	}
	t, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID)
	if err != nil {
		logger.Error("notify: telegram init failed, falling back to stdout: %v", err)
		return notify.NewStdout()
	}
	return t
}

func registerLifecycle(
	lc fx.Lifecycle,
	cfg *config.Config,
	ctrl *Controller,
	n notify.Notifier,
	feed *pricefeedsvc.Client,
) {
	runCtx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if tg, ok := n.(*notify.Telegram); ok {
				tg.SetStatusSource(ctrl)
				if err := tg.Start(runCtx); err != nil {
					return err
				}
			}

			go ctrl.Run(runCtx)

			if cfg.PriceFeed.Enabled {
				go func() {
					for tick := range feed.StreamTickers(runCtx, ctrl.WatchSymbols()) {
						ctrl.ApplyTick(tick)
					}
				}()
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			ctrl.Stop(ctx)
			if tg, ok := n.(*notify.Telegram); ok {
				tg.Stop()
			}
			return nil
		},
	})
}
