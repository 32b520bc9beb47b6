package models

// TickerTick — тик цены из websocket-фида (fast path поверх REST-опроса).
type TickerTick struct {
	Symbol string // "BLOCK/BTC", "BTC/USD"
	Last   float64
}
