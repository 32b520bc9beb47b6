package runner

import (
	"pingpong_bot/internal/models"
	"pingpong_bot/internal/modules/config"
)

// CheckPriceInRange — не уехала ли цена живого ордера от текущего рынка.
//
// Вариация = кандидатная цена / замороженная OrgPrice. Для BUY с прижатой
// ценой (ManualPrice) рост рынка выше референса считаем вариацией 1.0:
// ордер и так стоит по клампу, пересоздавать нечего. Границы строгие:
// ровно 1±tolerance — уже дрейф.
//
// ok=false значит "посчитать нельзя" (нет живой цены): это не дрейф,
// решение откладывается до следующего цикла.
func (p *Pair) CheckPriceInRange() (bool, bool) {
	o := p.DexOrder
	if o == nil {
		o = p.CurrentOrder
	}
	if o == nil || o.OrgPrice == 0 {
		return false, false
	}

	var candidate float64
	if p.Strategy == config.StrategyBasicSeller {
		c, ok := p.basicSellerPrice()
		if !ok {
			return false, false
		}
		candidate = c
	} else {
		live, ok := p.livePrice()
		if !ok {
			return false, false
		}
		if o.Side == models.SideBuy && o.ManualPrice && live > o.OrgPrice {
			p.Variation = 1.0
			return true, true
		}
		candidate = live
	}

	v := candidate / o.OrgPrice
	p.Variation = v

	in := v > 1-p.tolerance && v < 1+p.tolerance
	return in, true
}
