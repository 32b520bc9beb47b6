package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"pingpong_bot/internal/modules/config"

	"github.com/bytedance/sonic"
	"golang.org/x/sync/semaphore"
)

// Client — обёртка над JSON-RPC демоном кошелька (XBridge).
// Демон по сути однопоточный, поэтому все вызовы проходят через общий
// семафор: лишние запросы встают в очередь, а не валят демона.
type Client struct {
	url      string
	user     string
	password string

	http *http.Client
	sem  *semaphore.Weighted

	reqID atomic.Int64
}

func NewClient(cfg *config.Config) *Client {
	maxConc := cfg.XBridge.MaxConcurrent
	if maxConc <= 0 {
		maxConc = 5
	}
	timeout := time.Duration(cfg.XBridge.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		url:      fmt.Sprintf("http://%s:%d/", cfg.XBridge.Host, cfg.XBridge.Port),
		user:     cfg.XBridge.User,
		password: cfg.XBridge.Password,
		http:     &http.Client{Timeout: timeout},
		sem:      semaphore.NewWeighted(maxConc),
	}
}

// call — один RPC-вызов под семафором. out — указатель на result.
func (c *Client) call(ctx context.Context, method string, params []any, out any) error {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer c.sem.Release(1)

	payload, err := sonic.Marshal(rpcRequest{
		JSONRPC: "1.0",
		ID:      c.reqID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("%s marshal: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%s new request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.user != "" {
		req.SetBasicAuth(c.user, c.password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s do: %w", method, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)

	var env struct {
		Result json.RawMessage `json:"result"`
		Error  *RPCError       `json:"error"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("%s decode: %w; body=%s", method, err, string(data))
	}
	if env.Error != nil {
		return env.Error
	}
	if out != nil && len(env.Result) > 0 && string(env.Result) != "null" {
		if err := json.Unmarshal(env.Result, out); err != nil {
			return fmt.Errorf("%s decode result: %w; body=%s", method, err, string(data))
		}
	}
	return nil
}

// fmtAmount — суммы демон принимает строками, максимум 8 знаков.
func fmtAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 8, 64)
}

func parseAmount(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
