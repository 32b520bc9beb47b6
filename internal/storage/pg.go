package storage

import (
	"context"
	"fmt"

	"pingpong_bot/internal/models"
	"pingpong_bot/pkg/db"

	"github.com/bytedance/sonic"
	"github.com/jackc/pgx/v5"
)

// Pg — постгресовый бэкенд стора: история ордеров и адреса лежат
// jsonb/text-строками, ключ тот же, что у файлового бэкенда.
type Pg struct {
	tx db.TxManager
}

func NewPg(tx db.TxManager) *Pg {
	return &Pg{tx: tx}
}

// EnsureSchema — схема создаётся на старте, миграций у бота нет.
func (p *Pg) EnsureSchema(ctx context.Context) error {
	return p.tx.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctxTx, `
			CREATE TABLE IF NOT EXISTS order_history (
				key        text PRIMARY KEY,
				data       jsonb NOT NULL,
				updated_at timestamptz NOT NULL DEFAULT now()
			)`); err != nil {
			return err
		}
		_, err := tx.Exec(ctxTx, `
			CREATE TABLE IF NOT EXISTS deposit_addresses (
				key        text PRIMARY KEY,
				address    text NOT NULL,
				updated_at timestamptz NOT NULL DEFAULT now()
			)`)
		return err
	})
}

func (p *Pg) LoadOrder(ctx context.Context, key string) (order *models.Order, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("Pg.LoadOrder: %w", err)
		}
	}()

	err = p.tx.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		var data []byte
		qErr := tx.QueryRow(ctxTx,
			`SELECT data FROM order_history WHERE key = $1`, key,
		).Scan(&data)
		if qErr == pgx.ErrNoRows {
			return nil
		}
		if qErr != nil {
			return qErr
		}

		var o models.Order
		if uErr := sonic.Unmarshal(data, &o); uErr != nil {
			return uErr
		}
		order = &o
		return nil
	})
	return order, err
}

func (p *Pg) SaveOrder(ctx context.Context, key string, order *models.Order) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("Pg.SaveOrder: %w", err)
		}
	}()

	var data []byte
	data, err = sonic.Marshal(order)
	if err != nil {
		return err
	}
	return p.tx.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, eErr := tx.Exec(ctxTx, `
			INSERT INTO order_history (key, data, updated_at)
			VALUES ($1, $2, now())
			ON CONFLICT (key) DO UPDATE SET data = $2, updated_at = now()`,
			key, data)
		return eErr
	})
}

func (p *Pg) LoadAddress(ctx context.Context, key string) (address string, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("Pg.LoadAddress: %w", err)
		}
	}()

	err = p.tx.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		qErr := tx.QueryRow(ctxTx,
			`SELECT address FROM deposit_addresses WHERE key = $1`, key,
		).Scan(&address)
		if qErr == pgx.ErrNoRows {
			return nil
		}
		return qErr
	})
	return address, err
}

func (p *Pg) SaveAddress(ctx context.Context, key string, address string) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("Pg.SaveAddress: %w", err)
		}
	}()

	return p.tx.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, eErr := tx.Exec(ctxTx, `
			INSERT INTO deposit_addresses (key, address, updated_at)
			VALUES ($1, $2, now())
			ON CONFLICT (key) DO UPDATE SET address = $2, updated_at = now()`,
			key, address)
		return eErr
	})
}
