package service

import "fmt"

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

// RPCError — ошибка уровня JSON-RPC конверта (не путать с in-band кодом
// в result, который демон возвращает при отказе поставить ордер).
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("xbridge rpc error: code=%d msg=%s", e.Code, e.Message)
}

// orderInfo — сырой ордер из dxGetOrder / dxGetMyOrders.
type orderInfo struct {
	ID        string `json:"id"`
	Maker     string `json:"maker"`
	MakerSize string `json:"maker_size"`
	Taker     string `json:"taker"`
	TakerSize string `json:"taker_size"`
	UpdatedAt string `json:"updated_at"`
	CreatedAt string `json:"created_at"`
	Status    string `json:"status"`

	// при отказе демон кладёт ошибку прямо в result
	Code  int    `json:"code,omitempty"`
	Error string `json:"error,omitempty"`
}
