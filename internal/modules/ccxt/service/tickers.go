package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"pingpong_bot/internal/helper"
)

type tickerResponse struct {
	Symbol string  `json:"symbol"`
	Last   float64 `json:"last"`
}

// FetchTicker — последняя цена сделки по символу ("BTC/USD", "BLOCK/BTC").
// Линейный бэкофф: пауза = номеру попытки.
func (c *Client) FetchTicker(ctx context.Context, symbol string) (float64, error) {
	var tr tickerResponse
	path := fmt.Sprintf("/api/%s/ticker?symbol=%s", c.exchange, url.QueryEscape(symbol))

	err := helper.Retry(ctx, c.retries, helper.LinearDelay, func() error {
		return c.get(ctx, path, &tr)
	})
	if err != nil {
		return 0, fmt.Errorf("FetchTicker %s: %w", symbol, err)
	}
	if tr.Last <= 0 {
		return 0, fmt.Errorf("FetchTicker %s: no last price", symbol)
	}
	return tr.Last, nil
}

// FetchTickers — батчевый запрос для мультитокенового рефреша.
// Отсутствующие в ответе символы просто не попадают в мапу —
// вызывающий обязан трактовать это как "цена неизвестна", а не ноль.
func (c *Client) FetchTickers(ctx context.Context, symbols []string) (map[string]float64, error) {
	if len(symbols) == 0 {
		return map[string]float64{}, nil
	}

	var resp struct {
		Tickers map[string]tickerResponse `json:"tickers"`
	}
	path := fmt.Sprintf("/api/%s/tickers?symbols=%s",
		c.exchange, url.QueryEscape(strings.Join(symbols, ",")))

	err := helper.Retry(ctx, c.retries, helper.LinearDelay, func() error {
		return c.get(ctx, path, &resp)
	})
	if err != nil {
		return nil, fmt.Errorf("FetchTickers: %w", err)
	}

	out := make(map[string]float64, len(resp.Tickers))
	for sym, t := range resp.Tickers {
		if t.Last > 0 {
			out[sym] = t.Last
		}
	}
	return out, nil
}
