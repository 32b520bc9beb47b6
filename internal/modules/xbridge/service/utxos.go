package service

import (
	"context"
	"fmt"
	"time"

	"pingpong_bot/internal/helper"
	"pingpong_bot/internal/models"
)

// GetUTXOs — dxGetUtxos: все выходы токена, включая занятые ордерами
// (includeUsed=true, иначе не отличить total от free).
// Чтение идемпотентно, поэтому ретраим транспортные сбои.
func (c *Client) GetUTXOs(ctx context.Context, token string, includeUsed bool) ([]models.UTXO, error) {
	var raw []struct {
		TxID    string `json:"txid"`
		Vout    int    `json:"vout"`
		Amount  string `json:"amount"`
		Address string `json:"address"`
		OrderID string `json:"orderid"`
	}

	err := helper.Retry(ctx, 3, helper.FixedDelay(time.Second), func() error {
		raw = raw[:0]
		return c.call(ctx, "dxGetUtxos", []any{token, includeUsed}, &raw)
	})
	if err != nil {
		return nil, fmt.Errorf("GetUTXOs %s: %w", token, err)
	}

	out := make([]models.UTXO, 0, len(raw))
	for _, u := range raw {
		out = append(out, models.UTXO{
			TxID:    u.TxID,
			Vout:    u.Vout,
			Amount:  parseAmount(u.Amount),
			Address: u.Address,
			OrderID: u.OrderID,
		})
	}
	return out, nil
}

// GetNewAddress — dxGetNewTokenAddress: свежий депозитный адрес токена.
func (c *Client) GetNewAddress(ctx context.Context, token string) (string, error) {
	var addr string
	err := helper.Retry(ctx, 3, helper.FixedDelay(time.Second), func() error {
		return c.call(ctx, "dxGetNewTokenAddress", []any{token}, &addr)
	})
	if err != nil {
		return "", fmt.Errorf("GetNewAddress %s: %w", token, err)
	}
	if addr == "" {
		return "", fmt.Errorf("GetNewAddress %s: empty address", token)
	}
	return addr, nil
}

// GetLocalTokens — dxGetLocalTokens: какие монеты кошелёк вообще знает.
// Используется на warmup для ранней диагностики конфига.
func (c *Client) GetLocalTokens(ctx context.Context) ([]string, error) {
	var tokens []string
	if err := c.call(ctx, "dxGetLocalTokens", []any{}, &tokens); err != nil {
		return nil, fmt.Errorf("GetLocalTokens: %w", err)
	}
	return tokens, nil
}
