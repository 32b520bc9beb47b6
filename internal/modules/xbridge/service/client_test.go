package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strconv"
	"sync"
	"testing"

	"pingpong_bot/internal/modules/config"
	"pingpong_bot/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// rpcHandler — минимальный JSON-RPC демон для тестов.
type rpcHandler struct {
	mu      sync.Mutex
	calls   []rpcRequest
	results map[string]any // method -> result
}

func (h *rpcHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	h.mu.Lock()
	h.calls = append(h.calls, req)
	result, ok := h.results[req.Method]
	h.mu.Unlock()

	if !ok {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"result": nil,
			"error":  map[string]any{"code": -32601, "message": "method not found"},
		})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"result": result, "error": nil})
}

func (h *rpcHandler) lastCall() rpcRequest {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls[len(h.calls)-1]
}

func newTestClient(t *testing.T, h *rpcHandler) *Client {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.XBridge.Host = u.Hostname()
	cfg.XBridge.Port = port
	cfg.XBridge.User = "rpcuser"
	cfg.XBridge.Password = "rpcpass"
	cfg.XBridge.MaxConcurrent = 2
	cfg.XBridge.TimeoutSeconds = 5

	return NewClient(cfg)
}

func TestPlaceOrder(t *testing.T) {
	h := &rpcHandler{results: map[string]any{
		"dxMakeOrder": map[string]any{"id": "abc123", "status": "created"},
	}}
	c := newTestClient(t, h)

	reply, err := c.PlaceOrder(context.Background(),
		"BLOCK", 0.2, "block-addr", "LTC", 0.021, "ltc-addr")
	require.NoError(t, err)

	assert.Equal(t, "abc123", reply.ID)
	assert.Equal(t, "created", reply.Status)
	assert.Zero(t, reply.Code)

	call := h.lastCall()
	assert.Equal(t, "dxMakeOrder", call.Method)
	// суммы уходят строками с 8 знаками, последний аргумент — "exact"
	require.Len(t, call.Params, 7)
	assert.Equal(t, "0.20000000", call.Params[1])
	assert.Equal(t, "0.02100000", call.Params[4])
	assert.Equal(t, "exact", call.Params[6])
}

func TestPlaceOrderInBandRejection(t *testing.T) {
	// отказ демона приходит в result, а не в error конверта
	h := &rpcHandler{results: map[string]any{
		"dxMakeOrder": map[string]any{"code": 1026, "error": "funds busy"},
	}}
	c := newTestClient(t, h)

	reply, err := c.PlaceOrder(context.Background(),
		"BLOCK", 0.2, "a1", "LTC", 0.021, "a2")
	require.NoError(t, err)

	assert.Equal(t, 1026, reply.Code)
	assert.Equal(t, "funds busy", reply.Message)
	assert.Empty(t, reply.ID)
}

func TestPlaceOrderEnvelopeError(t *testing.T) {
	h := &rpcHandler{results: map[string]any{}}
	c := newTestClient(t, h)

	_, err := c.PlaceOrder(context.Background(),
		"BLOCK", 0.2, "a1", "LTC", 0.021, "a2")
	require.Error(t, err)

	var rpcErr *RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, -32601, rpcErr.Code)
}

func TestPlacePartialOrder(t *testing.T) {
	h := &rpcHandler{results: map[string]any{
		"dxMakePartialOrder": map[string]any{"id": "p1", "status": "created"},
	}}
	c := newTestClient(t, h)

	reply, err := c.PlacePartialOrder(context.Background(),
		"BLOCK", 0.5, "a1", "LTC", 0.05, "a2", 0.05)
	require.NoError(t, err)
	assert.Equal(t, "p1", reply.ID)

	call := h.lastCall()
	require.Len(t, call.Params, 8)
	assert.Equal(t, "0.05000000", call.Params[6])
	assert.Equal(t, "true", call.Params[7])
}

func TestCancelOrder(t *testing.T) {
	h := &rpcHandler{results: map[string]any{
		"dxCancelOrder": map[string]any{"id": "abc123", "status": "canceled"},
	}}
	c := newTestClient(t, h)

	require.NoError(t, c.CancelOrder(context.Background(), "abc123"))
	assert.Equal(t, []any{"abc123"}, h.lastCall().Params)
}

func TestCancelOrderDaemonRejects(t *testing.T) {
	h := &rpcHandler{results: map[string]any{
		"dxCancelOrder": map[string]any{"code": 1024, "error": "not my order"},
	}}
	c := newTestClient(t, h)

	err := c.CancelOrder(context.Background(), "abc123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1024")
}

func TestGetUTXOs(t *testing.T) {
	h := &rpcHandler{results: map[string]any{
		"dxGetUtxos": []map[string]any{
			{"txid": "t1", "vout": 0, "amount": "1.50000000", "address": "a1"},
			{"txid": "t2", "vout": 1, "amount": "0.50000000", "address": "a1", "orderid": "busy"},
		},
	}}
	c := newTestClient(t, h)

	utxos, err := c.GetUTXOs(context.Background(), "BLOCK", true)
	require.NoError(t, err)
	require.Len(t, utxos, 2)

	assert.Equal(t, 1.5, utxos[0].Amount)
	assert.Empty(t, utxos[0].OrderID)
	assert.Equal(t, "busy", utxos[1].OrderID)

	assert.Equal(t, []any{"BLOCK", true}, h.lastCall().Params)
}

func TestGetNewAddress(t *testing.T) {
	h := &rpcHandler{results: map[string]any{
		"dxGetNewTokenAddress": "bXyz123",
	}}
	c := newTestClient(t, h)

	addr, err := c.GetNewAddress(context.Background(), "BLOCK")
	require.NoError(t, err)
	assert.Equal(t, "bXyz123", addr)
}

func TestCancelAllOrdersSkipsDeadOnes(t *testing.T) {
	h := &rpcHandler{results: map[string]any{
		"dxGetMyOrders": []map[string]any{
			{"id": "o1", "status": "open"},
			{"id": "o2", "status": "finished"},
			{"id": "o3", "status": "created"},
			{"id": "o4", "status": "canceled"},
		},
		"dxCancelOrder": map[string]any{"status": "canceled"},
	}}
	c := newTestClient(t, h)

	require.NoError(t, c.CancelAllOrders(context.Background()))

	var cancelled []string
	h.mu.Lock()
	for _, call := range h.calls {
		if call.Method == "dxCancelOrder" {
			cancelled = append(cancelled, call.Params[0].(string))
		}
	}
	h.mu.Unlock()
	assert.Equal(t, []string{"o1", "o3"}, cancelled)
}

func TestClientSendsBasicAuth(t *testing.T) {
	var gotUser, gotPass string
	var gotOK bool

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, gotOK = r.BasicAuth()
		_ = json.NewEncoder(w).Encode(map[string]any{"result": []string{}, "error": nil})
	}))
	defer srv.Close()

	u, _ := url.Parse(srv.URL)
	port, _ := strconv.Atoi(u.Port())

	cfg := &config.Config{}
	cfg.XBridge.Host = u.Hostname()
	cfg.XBridge.Port = port
	cfg.XBridge.User = "rpcuser"
	cfg.XBridge.Password = "rpcpass"

	c := NewClient(cfg)
	_, err := c.GetLocalTokens(context.Background())
	require.NoError(t, err)

	require.True(t, gotOK)
	assert.Equal(t, "rpcuser", gotUser)
	assert.Equal(t, "rpcpass", gotPass)
}
