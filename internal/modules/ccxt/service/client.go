package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"pingpong_bot/internal/modules/config"

	"golang.org/x/time/rate"
)

// Client — обёртка над CCXT-совместимым коннектором (ценовой оракул).
// Сам коннектор — внешний REST-шлюз, нам от него нужны только тикеры.
type Client struct {
	baseURL  string
	exchange string

	http    *http.Client
	limiter *rate.Limiter
	retries int
}

func NewClient(cfg *config.Config) *Client {
	retries := cfg.CCXT.Retries
	if retries <= 0 {
		retries = 3
	}
	rl := time.Duration(cfg.CCXT.RateLimitMS) * time.Millisecond
	if rl <= 0 {
		rl = time.Second
	}
	timeout := time.Duration(cfg.CCXT.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.CCXT.BaseURL, "/"),
		exchange: cfg.CCXT.Exchange,
		http:     &http.Client{Timeout: timeout},
		limiter:  rate.NewLimiter(rate.Every(rl), 1),
		retries:  retries,
	}
}

// Retries — ретрай-бюджет оракула; им же пользуется Token при обновлении цены.
func (c *Client) Retries() int { return c.retries }

func (c *Client) get(ctx context.Context, path string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("http %d: %s", resp.StatusCode, string(data))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode: %w; body=%s", err, string(data))
	}
	return nil
}
