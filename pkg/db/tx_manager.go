package db

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TxManager — контракт транзакционного раннера, от которого зависит стор:
// согласованное выполнение на мастере. Реализация — PgTxManager,
// в тестах — фейк.
type TxManager interface {
	RunMaster(ctx context.Context, fn func(ctxTx context.Context, tx pgx.Tx) error) error
}
