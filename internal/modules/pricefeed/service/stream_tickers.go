package service

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"time"

	"pingpong_bot/internal/helper"
	"pingpong_bot/internal/models"
)

// StreamTickers — один WebSocket на весь watchlist, пачка инструментов в args.
// Возвращает поток TickerTick; реконнект внутри, канал закрывается по ctx.
func (c *Client) StreamTickers(ctx context.Context, symbols []string) <-chan models.TickerTick {
	ch := make(chan models.TickerTick)

	go func() {
		defer close(ch)

		if len(symbols) == 0 || c.cfg.PriceFeed.URL == "" {
			return
		}

		// подготавливаем args сразу пачкой
		args := make([]map[string]string, 0, len(symbols))
		for _, sym := range symbols {
			args = append(args, map[string]string{
				"channel": "tickers",
				"instId":  helper.SymbolToInstID(sym),
			})
		}

		for {
			log.Printf("[WS] tickers connect, %d symbols", len(symbols))
			conn, _, err := c.wsDialer.Dial(c.cfg.PriceFeed.URL, nil)
			if err != nil {
				log.Printf("[WS] tickers dial error: %v", err)
				select {
				case <-ctx.Done():
					return
				case <-time.After(time.Second):
				}
				continue
			}

			sub := map[string]any{
				"op":   "subscribe",
				"args": args,
			}
			if err := conn.WriteJSON(sub); err != nil {
				log.Printf("[WS] tickers subscribe error: %v", err)
				_ = conn.Close()
				continue
			}

			// keepalive ping каждые 20s — иначе шлюз рвёт соединение.
			// stopPing закрывает читающая сторона при выходе из read-loop,
			// иначе горутина пинга живёт до ctx и копится на каждом реконнекте.
			stopPing := make(chan struct{})
			go func() {
				t := time.NewTicker(20 * time.Second)
				defer t.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-stopPing:
						return
					case <-t.C:
						_ = conn.WriteJSON(map[string]string{"op": "ping"})
					}
				}
			}()

			// основной read-loop
			for {
				_, msg, err := conn.ReadMessage()
				if err != nil {
					log.Printf("[WS] tickers read error: %v", err)
					_ = conn.Close()
					break
				}

				var frame struct {
					Arg struct {
						Channel string `json:"channel"`
						InstID  string `json:"instId"`
					} `json:"arg"`
					Data []struct {
						InstID string `json:"instId"`
						Last   string `json:"last"`
					} `json:"data"`
				}
				if err := json.Unmarshal(msg, &frame); err != nil {
					continue
				}
				if frame.Arg.Channel != "tickers" || len(frame.Data) == 0 {
					continue
				}

				for _, row := range frame.Data {
					last, err := strconv.ParseFloat(row.Last, 64)
					if err != nil || last <= 0 {
						continue
					}

					tick := models.TickerTick{
						Symbol: helper.InstIDToSymbol(row.InstID),
						Last:   last,
					}

					select {
					case ch <- tick:
					case <-ctx.Done():
						close(stopPing)
						_ = conn.Close()
						return
					}
				}
			}
			close(stopPing)

			select {
			case <-ctx.Done():
				return
			default:
				time.Sleep(time.Second)
			}
		}
	}()

	return ch
}
