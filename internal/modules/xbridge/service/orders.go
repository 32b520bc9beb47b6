package service

import (
	"context"
	"fmt"

	"pingpong_bot/internal/models"
	"pingpong_bot/pkg/logger"
)

// PlaceOrder — dxMakeOrder, exact-size ордер.
// Отказ демона приходит in-band: reply.Code != 0. Транспортные ошибки —
// обычным error. Ретраев тут нет намеренно: постановка не идемпотентна,
// state machine сама попробует на следующем цикле.
func (c *Client) PlaceOrder(
	ctx context.Context,
	maker string, makerSize float64, makerAddress string,
	taker string, takerSize float64, takerAddress string,
) (*models.DexOrderReply, error) {
	var info orderInfo
	err := c.call(ctx, "dxMakeOrder", []any{
		maker, fmtAmount(makerSize), makerAddress,
		taker, fmtAmount(takerSize), takerAddress,
		"exact",
	}, &info)
	if err != nil {
		return nil, fmt.Errorf("PlaceOrder: %w", err)
	}
	return replyFromInfo(&info), nil
}

// PlacePartialOrder — dxMakePartialOrder с минимальным размером исполнения.
func (c *Client) PlacePartialOrder(
	ctx context.Context,
	maker string, makerSize float64, makerAddress string,
	taker string, takerSize float64, takerAddress string,
	minimumSize float64,
) (*models.DexOrderReply, error) {
	var info orderInfo
	err := c.call(ctx, "dxMakePartialOrder", []any{
		maker, fmtAmount(makerSize), makerAddress,
		taker, fmtAmount(takerSize), takerAddress,
		fmtAmount(minimumSize), "true",
	}, &info)
	if err != nil {
		return nil, fmt.Errorf("PlacePartialOrder: %w", err)
	}
	return replyFromInfo(&info), nil
}

// CancelOrder — dxCancelOrder. Ошибку не глотаем, но для уже мёртвого
// ордера демон тоже вернёт отказ — это решает вызывающий.
func (c *Client) CancelOrder(ctx context.Context, id string) error {
	var info orderInfo
	if err := c.call(ctx, "dxCancelOrder", []any{id}, &info); err != nil {
		return fmt.Errorf("CancelOrder: %w", err)
	}
	if info.Code != 0 {
		return fmt.Errorf("CancelOrder: daemon code=%d error=%s", info.Code, info.Error)
	}
	return nil
}

// GetOrderStatus — dxGetOrder по id. Один вызов без ретраев: бэкофф
// 1s/2s/3s на пустой статус живёт в state machine пары.
func (c *Client) GetOrderStatus(ctx context.Context, id string) (*models.DexOrderReply, error) {
	var info orderInfo
	if err := c.call(ctx, "dxGetOrder", []any{id}, &info); err != nil {
		return nil, fmt.Errorf("GetOrderStatus: %w", err)
	}
	return replyFromInfo(&info), nil
}

// GetMyOrders — dxGetMyOrders, все ордера этого кошелька.
func (c *Client) GetMyOrders(ctx context.Context) ([]models.DexOrderReply, error) {
	var infos []orderInfo
	if err := c.call(ctx, "dxGetMyOrders", []any{}, &infos); err != nil {
		return nil, fmt.Errorf("GetMyOrders: %w", err)
	}
	out := make([]models.DexOrderReply, 0, len(infos))
	for i := range infos {
		out = append(out, *replyFromInfo(&infos[i]))
	}
	return out, nil
}

// CancelAllOrders — аварийный/шатдаун путь: снимаем всё, что ещё живо.
// У демона нет батчевой отмены, идём по одному.
func (c *Client) CancelAllOrders(ctx context.Context) error {
	orders, err := c.GetMyOrders(ctx)
	if err != nil {
		return fmt.Errorf("CancelAllOrders: %w", err)
	}
	for i := range orders {
		o := &orders[i]
		switch o.Status {
		case "open", "new", "created":
		default:
			continue
		}
		if err := c.CancelOrder(ctx, o.ID); err != nil {
			logger.Error("CancelAllOrders: order %s: %v", o.ID, err)
		}
	}
	return nil
}

func replyFromInfo(info *orderInfo) *models.DexOrderReply {
	return &models.DexOrderReply{
		ID:      info.ID,
		Status:  info.Status,
		Code:    info.Code,
		Message: info.Error,
	}
}
