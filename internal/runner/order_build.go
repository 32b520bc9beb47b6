package runner

import (
	"pingpong_bot/internal/helper"
	"pingpong_bot/internal/models"
	"pingpong_bot/internal/modules/config"
	"pingpong_bot/pkg/logger"
)

// livePrice — живая цена пары T1/T2 как отношение BTC-цен.
// ok=false, если хоть одна из цен неизвестна: в этом цикле не торгуем.
func (p *Pair) livePrice() (float64, bool) {
	if p.T1.CexPrice == nil || p.T2.CexPrice == nil || *p.T2.CexPrice == 0 {
		return 0, false
	}
	return *p.T1.CexPrice / *p.T2.CexPrice, true
}

// basicSellerPrice — цена SELL для одноразового продавца: апскейл поверх
// живой цены плюс USD-пол. Если долларовая цена T1 просела ниже
// минимума, продаём не дешевле min_sell_price_usd.
// Отдельная политика, с клампом BUY её не унифицируем.
func (p *Pair) basicSellerPrice() (float64, bool) {
	live, ok := p.livePrice()
	if !ok {
		return 0, false
	}
	price := live * (1 + p.cfg.SellPriceOffset)

	if p.cfg.MinSellPriceUSD > 0 {
		if p.T1.UsdPrice == nil || p.T2.UsdPrice == nil || *p.T2.UsdPrice == 0 {
			return 0, false
		}
		if *p.T1.UsdPrice < p.cfg.MinSellPriceUSD {
			price = p.cfg.MinSellPriceUSD / *p.T2.UsdPrice
		}
	}
	return price, true
}

// buildSellOrder — виртуальный SELL: отдаём T1, получаем T2.
func (p *Pair) buildSellOrder() (*models.Order, bool) {
	var price float64
	var ok bool
	if p.Strategy == config.StrategyBasicSeller {
		price, ok = p.basicSellerPrice()
	} else {
		price, ok = p.livePrice()
	}
	if !ok || price <= 0 {
		return nil, false
	}

	var amount float64
	if p.Strategy == config.StrategyBasicSeller {
		amount = p.cfg.SellAmount
	} else {
		// размер от USD-ноционала
		if p.T1.UsdPrice == nil || *p.T1.UsdPrice == 0 {
			return nil, false
		}
		amount = p.cfg.USDAmount / *p.T1.UsdPrice
	}
	if amount <= 0 {
		return nil, false
	}

	if p.T1.Address == "" || p.T2.Address == "" {
		logger.Error("pair %s: missing deposit address, sell order not built", p.Symbol)
		return nil, false
	}

	order := &models.Order{
		Symbol:       p.Symbol,
		Side:         models.SideSell,
		Maker:        p.T1.Symbol,
		MakerSize:    helper.RoundSat(amount),
		MakerAddress: p.T1.Address,
		Taker:        p.T2.Symbol,
		TakerSize:    helper.RoundSat(amount * price * (1 + p.cfg.Spread)),
		TakerAddress: p.T2.Address,
		Kind:         models.KindExact,
		DexPrice:     price,
		OrgPrice:     price,
	}
	p.freezeUsdPrices(order)

	if p.Strategy == config.StrategyBasicSeller && p.cfg.PartialPercent > 0 {
		order.Kind = models.KindPartial
		order.MinimumSize = helper.RoundSat(order.MakerSize * p.cfg.PartialPercent)
	}
	return order, true
}

// buildBuyOrder — виртуальный BUY: выкупаем ровно maker_size завершённого
// SELL. Цена исполнения — min(живая, цена того SELL): за юнит никогда не
// платим больше, чем выручили. Упавшая живая цена становится новым
// референсом, выросшая игнорируется и референс прижимается к старому.
func (p *Pair) buildBuyOrder() (*models.Order, bool) {
	h := p.OrderHistory
	if h == nil || h.MakerSize <= 0 {
		return nil, false
	}

	live, ok := p.livePrice()
	if !ok || live <= 0 {
		return nil, false
	}

	price := live
	manual := false
	if live > h.DexPrice {
		price = h.DexPrice
		manual = true
	}

	if p.T1.Address == "" || p.T2.Address == "" {
		logger.Error("pair %s: missing deposit address, buy order not built", p.Symbol)
		return nil, false
	}

	amount := h.MakerSize
	order := &models.Order{
		Symbol:       p.Symbol,
		Side:         models.SideBuy,
		Maker:        p.T2.Symbol,
		MakerSize:    helper.RoundSat(amount * price * (1 - p.cfg.Spread)),
		MakerAddress: p.T2.Address,
		Taker:        p.T1.Symbol,
		TakerSize:    helper.RoundSat(amount),
		TakerAddress: p.T1.Address,
		Kind:         models.KindExact,
		DexPrice:     price,
		OrgPrice:     price,
		ManualPrice:  manual,
	}
	p.freezeUsdPrices(order)
	return order, true
}

// freezeUsdPrices — замораживаем долларовые цены обеих ног на момент
// конструирования, для последующего сравнения дрейфа.
func (p *Pair) freezeUsdPrices(o *models.Order) {
	if p.T1.UsdPrice != nil {
		o.T1UsdPrice = *p.T1.UsdPrice
	}
	if p.T2.UsdPrice != nil {
		o.T2UsdPrice = *p.T2.UsdPrice
	}
}

// createVirtualOrder — выбор стороны детерминирован историей:
// нет истории / история BUY / basic_seller -> SELL; история SELL -> BUY.
func (p *Pair) createVirtualOrder() bool {
	h := p.OrderHistory

	var order *models.Order
	var ok bool
	if p.Strategy == config.StrategyBasicSeller || h == nil || h.Side == models.SideBuy {
		order, ok = p.buildSellOrder()
	} else {
		order, ok = p.buildBuyOrder()
	}
	if !ok {
		return false
	}
	p.CurrentOrder = order
	return true
}
