package service

import (
	"net/http"
	"time"

	"pingpong_bot/internal/modules/config"

	"github.com/gorilla/websocket"
)

// Client — websocket-стример тикеров CEX: fast path поверх REST-опроса
// оракула. Пишет в тот же ценовой кеш, ничего не решает сам.
type Client struct {
	cfg      *config.Config
	wsDialer *websocket.Dialer
	http     *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		cfg:      cfg,
		wsDialer: &websocket.Dialer{},
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}
