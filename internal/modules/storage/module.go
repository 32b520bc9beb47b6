package storage

import (
	"context"
	"fmt"

	"pingpong_bot/internal/modules/config"
	"pingpong_bot/internal/storage"
	"pingpong_bot/pkg/db"
	"pingpong_bot/pkg/logger"

	"go.uber.org/fx"
)

// Выбор бэкенда стора: Postgres при заданном DSN, иначе JSON-файл.
func Module() fx.Option {
	return fx.Module("storage",
		fx.Provide(
			func(ctx context.Context, cfg *config.Config, lc fx.Lifecycle) (storage.Store, error) {
				if cfg.Store.DSN == "" {
					logger.Info("storage: file backend %s", cfg.Store.Path)
					return storage.NewFile(cfg.Store.Path), nil
				}

				poolMaster, err := db.NewPool(ctx, db.PoolConfig{
					DSN: cfg.Store.DSN,
				})
				if err != nil {
					return nil, fmt.Errorf("failed to create poolMaster: %w", err)
				}
				if err = poolMaster.Ping(ctx); err != nil {
					return nil, err
				}

				tm := db.NewPgTxManager(poolMaster)
				pg := storage.NewPg(tm)
				if err = pg.EnsureSchema(ctx); err != nil {
					return nil, err
				}

				lc.Append(fx.Hook{
					OnStop: func(context.Context) error {
						tm.Close()
						return nil
					},
				})

				logger.Info("storage: postgres backend")
				return pg, nil
			},
		),
	)
}
