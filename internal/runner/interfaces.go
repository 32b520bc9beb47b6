package runner

import (
	"context"

	"pingpong_bot/internal/models"
)

// WalletBridge — узкий контракт демона кошелька, который нужен ядру.
// Реализация — internal/modules/xbridge/service.Client; в тестах фейк.
type WalletBridge interface {
	PlaceOrder(ctx context.Context,
		maker string, makerSize float64, makerAddress string,
		taker string, takerSize float64, takerAddress string,
	) (*models.DexOrderReply, error)
	PlacePartialOrder(ctx context.Context,
		maker string, makerSize float64, makerAddress string,
		taker string, takerSize float64, takerAddress string,
		minimumSize float64,
	) (*models.DexOrderReply, error)
	CancelOrder(ctx context.Context, id string) error
	GetOrderStatus(ctx context.Context, id string) (*models.DexOrderReply, error)
	GetUTXOs(ctx context.Context, token string, includeUsed bool) ([]models.UTXO, error)
	GetNewAddress(ctx context.Context, token string) (string, error)
	GetLocalTokens(ctx context.Context) ([]string, error)
	CancelAllOrders(ctx context.Context) error
}

// PriceOracle — узкий контракт ценового оракула (CCXT-коннектор).
type PriceOracle interface {
	FetchTicker(ctx context.Context, symbol string) (float64, error)
	FetchTickers(ctx context.Context, symbols []string) (map[string]float64, error)
}
