package runner

import (
	"context"
	"errors"

	"pingpong_bot/internal/helper"
	"pingpong_bot/internal/models"
	"pingpong_bot/internal/modules/config"
	"pingpong_bot/internal/notify"
	"pingpong_bot/internal/storage"
	"pingpong_bot/pkg/logger"
)

// Pair — машина состояний одной торговой пары. Инвариант: не больше
// одного живого ордера на пару (DexOrder != nil ровно тогда, когда
// ордер отправлен демону и ещё не завершён).
type Pair struct {
	Symbol   string
	Strategy string

	T1  *Token
	T2  *Token
	btc *Token

	cfg       *config.PairConfig
	tolerance float64

	// виртуальный ордер текущего шага, его живое отражение у демона
	// и последний завершённый ордер (определяет сторону следующего)
	CurrentOrder *models.Order
	DexOrder     *models.Order
	OrderHistory *models.Order

	Disabled  bool
	Variation float64

	dex   WalletBridge
	store storage.Store
	n     notify.Notifier
}

func NewPair(
	cfg *config.PairConfig,
	tolerance float64,
	t1, t2, btc *Token,
	dex WalletBridge,
	store storage.Store,
	n notify.Notifier,
) *Pair {
	return &Pair{
		Symbol:    cfg.Symbol,
		Strategy:  cfg.Strategy,
		T1:        t1,
		T2:        t2,
		btc:       btc,
		cfg:       cfg,
		tolerance: tolerance,
		Disabled:  cfg.Disabled,
		dex:       dex,
		store:     store,
		n:         n,
	}
}

func (p *Pair) historyKey() string {
	return helper.PairKey(p.Strategy, p.Symbol)
}

// InitFromStore — возобновление после рестарта: история последнего
// завершённого ордера восстанавливается из стора, и следующая сторона
// выводится из неё детерминированно.
func (p *Pair) InitFromStore(ctx context.Context) {
	h, err := p.store.LoadOrder(ctx, p.historyKey())
	if err != nil {
		logger.Error("pair %s: load history: %v", p.Symbol, err)
		return
	}
	if h != nil {
		p.OrderHistory = h
		logger.Info("pair %s: resumed, last finished side=%s price=%v",
			p.Symbol, h.Side, h.DexPrice)
	}
}

// StatusCheck — один шаг машины состояний, раз в цикл контроллера.
func (p *Pair) StatusCheck(ctx context.Context) {
	p.T1.UpdateCexPrice(ctx, p.btc)
	p.T2.UpdateCexPrice(ctx, p.btc)

	if p.Disabled {
		// выключенная пара гасит свой живой ордер и больше ничего не делает
		if p.DexOrder != nil {
			p.DexCancelOrder(ctx)
		}
		return
	}

	if p.DexOrder == nil {
		p.createAndPlace(ctx)
		return
	}

	status, ok := p.dexCheckOrderStatus(ctx)
	if !ok {
		return
	}

	switch status {
	case models.StatusOpen:
		in, known := p.CheckPriceInRange()
		if known && !in {
			logger.Info("pair %s: price drifted (variation %.4f), recreating", p.Symbol, p.Variation)
			p.DexCancelOrder(ctx)
			p.createAndPlace(ctx)
		}

	case models.StatusFinished:
		p.atOrderFinished(ctx)

	case models.StatusOthers:
		// сделка в процессе: отменять нельзя, только наблюдаем дрейф
		if in, known := p.CheckPriceInRange(); known && !in {
			logger.Info("pair %s: in-flight order drifted (variation %.4f)", p.Symbol, p.Variation)
		}

	case models.StatusErrorSwap:
		raw := ""
		if p.DexOrder != nil {
			raw = p.DexOrder.Status
		}
		if raw == "expired" {
			// протухание — не сбой обмена: пересоздаём ту же сторону,
			// история не трогается
			logger.Info("pair %s: order expired, recreating same side", p.Symbol)
			p.DexOrder = nil
			p.createAndPlace(ctx)
			return
		}
		p.Disabled = true
		p.DexOrder = nil
		p.n.Sendf("🚨 Пара %s: сбой обмена (статус %q), пара остановлена", p.Symbol, raw)
		logger.Error("pair %s: swap failure, status %q, pair disabled", p.Symbol, raw)

	case models.StatusCancelledWithoutCall:
		// кто-то снял ордер мимо нас (или демон его потерял) —
		// чистим ссылку и ставим заново
		logger.Info("pair %s: order cancelled externally, recreating", p.Symbol)
		p.DexOrder = nil
		p.createAndPlace(ctx)

	default:
		p.DexOrder = nil
		p.createAndPlace(ctx)
	}
}

// пустой или нераспознанный статус в успешном ответе демона
var errNoOrderStatus = errors.New("order status missing")

// dexCheckOrderStatus — опрос статуса с тремя попытками и нарастающей
// паузой. Пустой или неизвестный статус — не приговор: одиночный икающий
// ответ демона переопрашивается по тому же расписанию, и только когда все
// попытки подряд пришли без внятного статуса, ордер считается снятым без
// нашего участия.
func (p *Pair) dexCheckOrderStatus(ctx context.Context) (models.OrderStatus, bool) {
	if p.DexOrder == nil || p.DexOrder.ID == "" {
		return 0, false
	}

	var reply *models.DexOrderReply
	err := helper.Retry(ctx, 3, helper.LinearDelay, func() error {
		r, e := p.dex.GetOrderStatus(ctx, p.DexOrder.ID)
		if e != nil {
			return e
		}
		if r == nil || r.ID == "" {
			return errNoOrderStatus
		}
		if _, known := models.StatusFromDaemon(r.Status); !known {
			logger.Error("pair %s: unknown daemon status %q", p.Symbol, r.Status)
			return errNoOrderStatus
		}
		reply = r
		return nil
	})
	if err != nil {
		if errors.Is(err, errNoOrderStatus) {
			p.DexOrder = nil
			return models.StatusCancelledWithoutCall, true
		}
		logger.Error("pair %s: status check %s: %v", p.Symbol, p.DexOrder.ID, err)
		return 0, false
	}

	p.DexOrder.Status = reply.Status
	status, _ := models.StatusFromDaemon(reply.Status)
	return status, true
}

// createAndPlace — сконструировать виртуальный ордер и сразу отправить.
func (p *Pair) createAndPlace(ctx context.Context) {
	if !p.createVirtualOrder() {
		return
	}
	p.DexCreateOrder(ctx)
}

// DexCreateOrder — отправка CurrentOrder демону. Постановка не
// идемпотентна, поэтому без ретраев: транспортная ошибка — ждём
// следующий цикл. Протокольная ошибка из транзиентного списка — тоже
// следующий цикл, любая другая останавливает пару.
func (p *Pair) DexCreateOrder(ctx context.Context) {
	if p.Disabled || p.CurrentOrder == nil || p.DexOrder != nil {
		return
	}
	o := p.CurrentOrder

	// pre-flight по свободному балансу: не дёргаем демона впустую
	makerToken := p.T1
	if o.Side == models.SideBuy {
		makerToken = p.T2
	}
	if free, ok := makerToken.FreeBalanceValue(); ok && free < o.MakerSize {
		logger.Info("pair %s: insufficient free %s balance (%.8f < %.8f), skip",
			p.Symbol, makerToken.Symbol, free, o.MakerSize)
		return
	}

	var reply *models.DexOrderReply
	var err error
	if o.Kind == models.KindPartial {
		reply, err = p.dex.PlacePartialOrder(ctx,
			o.Maker, o.MakerSize, o.MakerAddress,
			o.Taker, o.TakerSize, o.TakerAddress,
			o.MinimumSize)
	} else {
		reply, err = p.dex.PlaceOrder(ctx,
			o.Maker, o.MakerSize, o.MakerAddress,
			o.Taker, o.TakerSize, o.TakerAddress)
	}
	if err != nil {
		logger.Error("pair %s: place order: %v", p.Symbol, err)
		return
	}

	if reply.Code != 0 {
		if models.IsTransientDexCode(reply.Code) {
			logger.Info("pair %s: transient daemon error %d (%s), retry next cycle",
				p.Symbol, reply.Code, reply.Message)
			return
		}
		p.Disabled = true
		p.n.Sendf("🚨 Пара %s: демон отклонил ордер (код %d: %s), пара остановлена",
			p.Symbol, reply.Code, reply.Message)
		logger.Error("pair %s: daemon rejected order, code %d: %s, pair disabled",
			p.Symbol, reply.Code, reply.Message)
		return
	}

	live := o.Clone()
	live.ID = reply.ID
	live.Status = reply.Status
	p.DexOrder = live

	p.n.Sendf("📬 %s %s: ордер выставлен\n%s %.8f -> %s %.8f (цена %.8f)",
		p.Symbol, o.Side, o.Maker, o.MakerSize, o.Taker, o.TakerSize, o.DexPrice)
	logger.Info("pair %s: placed %s order id=%s", p.Symbol, o.Side, live.ID)
}

// DexCancelOrder — снять живой ордер. Ошибка не фатальна: ссылку
// чистим в любом случае, осиротевший ордер подберёт следующий опрос
// как CANCELLED_WITHOUT_CALL или его добьёт CancelAllOrders на выходе.
func (p *Pair) DexCancelOrder(ctx context.Context) {
	if p.DexOrder == nil || p.DexOrder.ID == "" {
		p.DexOrder = nil
		return
	}
	if err := p.dex.CancelOrder(ctx, p.DexOrder.ID); err != nil {
		logger.Error("pair %s: cancel %s: %v", p.Symbol, p.DexOrder.ID, err)
	}
	p.DexOrder = nil
}

// atOrderFinished — обмен завершился: ордер становится историей
// (персистится ровно один раз), адрес принятого актива ротируется,
// и противоположная сторона выставляется немедленно, не дожидаясь
// следующего цикла.
func (p *Pair) atOrderFinished(ctx context.Context) {
	done := p.DexOrder.Clone()
	p.DexOrder = nil
	p.CurrentOrder = nil
	p.OrderHistory = done

	if err := p.store.SaveOrder(ctx, p.historyKey(), done); err != nil {
		logger.Error("pair %s: save history: %v", p.Symbol, err)
	}

	// средства пришли на taker-адрес — ему свежий адрес на следующий раз
	takerToken := p.T2
	if done.Side == models.SideBuy {
		takerToken = p.T1
	}
	_ = takerToken.RotateAddress(ctx)

	p.n.Sendf("✅ %s %s: обмен завершён\n%s %.8f -> %s %.8f (цена %.8f)",
		p.Symbol, done.Side, done.Maker, done.MakerSize,
		done.Taker, done.TakerSize, done.DexPrice)
	logger.Info("pair %s: order %s finished (%s)", p.Symbol, done.ID, done.Side)

	if p.Strategy == config.StrategyBasicSeller {
		// одноразовый продавец: продал — и всё
		p.Disabled = true
		p.n.Sendf("🏁 Пара %s: basic_seller выполнен, пара остановлена", p.Symbol)
		return
	}

	p.createAndPlace(ctx)
}

// StatusLine — строка для /status и периодической сводки.
func (p *Pair) StatusLine() string {
	state := "idle"
	switch {
	case p.Disabled:
		state = "disabled"
	case p.DexOrder != nil:
		state = string(p.DexOrder.Side) + " " + p.DexOrder.Status
	}
	return p.Symbol + " [" + p.Strategy + "]: " + state
}
