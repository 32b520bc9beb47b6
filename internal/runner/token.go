package runner

import (
	"context"
	"sync"
	"time"

	"pingpong_bot/internal/storage"
	"pingpong_bot/pkg/logger"
)

// BridgeToken — мостовой актив: через его USD-цену считаются USD-цены
// всех остальных токенов.
const BridgeToken = "BTC"

// не дёргаем оракул чаще, чем раз в 2 секунды на токен
const priceGuard = 2 * time.Second

// Token — рантайм-состояние одного актива.
//
// Цена и баланс — *float64: nil значит "данных нет", и это принципиально
// не ноль. Потребитель обязан скипнуть токен в этом цикле, а не торговать
// по нулю.
type Token struct {
	Symbol     string
	Strategy   string
	DexEnabled bool

	cex           PriceOracle
	dex           WalletBridge
	store         storage.Store
	customTickers map[string]float64

	CexPrice *float64 // относительно BTC; для BTC всегда 1.0
	UsdPrice *float64

	Address string

	TotalBalance *float64
	FreeBalance  *float64

	lastPriceAt time.Time
	balanceMu   *sync.Mutex // общий на все токены: пары делят одни балансы
}

func NewToken(
	symbol, strategy string,
	dexEnabled bool,
	cex PriceOracle,
	dex WalletBridge,
	store storage.Store,
	customTickers map[string]float64,
	balanceMu *sync.Mutex,
) *Token {
	return &Token{
		Symbol:        symbol,
		Strategy:      strategy,
		DexEnabled:    dexEnabled,
		cex:           cex,
		dex:           dex,
		store:         store,
		customTickers: customTickers,
		balanceMu:     balanceMu,
	}
}

// ComparisonSymbol — что спрашивать у оракула: мост котируется в USD,
// всё остальное — в BTC.
func (t *Token) ComparisonSymbol() string {
	if t.Symbol == BridgeToken {
		return "BTC/USD"
	}
	return t.Symbol + "/BTC"
}

// UpdateCexPrice — обновление цены с guard'ом: если цену брали меньше
// 2 секунд назад — no-op. Кастомный тикер из конфига приоритетнее оракула.
// При неудаче цена остаётся неизвестной (nil), не нулевой.
func (t *Token) UpdateCexPrice(ctx context.Context, btc *Token) {
	if time.Since(t.lastPriceAt) < priceGuard {
		return
	}

	sym := t.ComparisonSymbol()
	if v, ok := t.customTickers[sym]; ok {
		t.ApplyTick(v, btc)
		return
	}

	// ретраи с линейным бэкоффом уже внутри клиента оракула
	price, err := t.cex.FetchTicker(ctx, sym)
	if err != nil {
		logger.Error("token %s: ticker %s failed: %v", t.Symbol, sym, err)
		t.SetPriceUnknown()
		return
	}
	t.ApplyTick(price, btc)
}

// ApplyTick — применить цену (из батча, websocket-фида или кастомного
// тикера). Для моста цена — это USD-цена, CexPrice фиксирован в 1.0.
func (t *Token) ApplyTick(price float64, btc *Token) {
	if price <= 0 {
		return
	}
	if t.Symbol == BridgeToken {
		one := 1.0
		t.CexPrice = &one
		t.UsdPrice = &price
	} else {
		p := price
		t.CexPrice = &p
		if btc != nil && btc.UsdPrice != nil {
			usd := price * *btc.UsdPrice
			t.UsdPrice = &usd
		} else {
			t.UsdPrice = nil
		}
	}
	t.lastPriceAt = time.Now()
}

func (t *Token) SetPriceUnknown() {
	t.CexPrice = nil
	t.UsdPrice = nil
	t.lastPriceAt = time.Time{}
}

// UpdateBalance — total = сумма всех UTXO, free = сумма не занятых
// ордерами (без orderid). Неизвестный демону токен -> nil, nil:
// "нет данных" и "нет денег" — разные вещи.
func (t *Token) UpdateBalance(ctx context.Context) error {
	utxos, err := t.dex.GetUTXOs(ctx, t.Symbol, true)

	t.balanceMu.Lock()
	defer t.balanceMu.Unlock()

	if err != nil {
		t.TotalBalance = nil
		t.FreeBalance = nil
		logger.Error("token %s: balance failed: %v", t.Symbol, err)
		return err
	}

	var total, free float64
	for _, u := range utxos {
		total += u.Amount
		if u.OrderID == "" {
			free += u.Amount
		}
	}
	t.TotalBalance = &total
	t.FreeBalance = &free
	return nil
}

// FreeBalanceValue — читаем free под тем же локом, что и запись.
func (t *Token) FreeBalanceValue() (float64, bool) {
	t.balanceMu.Lock()
	defer t.balanceMu.Unlock()
	if t.FreeBalance == nil {
		return 0, false
	}
	return *t.FreeBalance, true
}

func (t *Token) addressKey() string {
	return "addr/" + t.Strategy + "/" + t.Symbol
}

// ReadAddress — ленивый депозитный адрес: сначала из стора, при промахе
// запрашиваем у демона и персистим. Ошибка не фатальна — адрес останется
// пустым, и постановка ордера на этот токен чисто зафейлится.
func (t *Token) ReadAddress(ctx context.Context) error {
	if t.Address != "" {
		return nil
	}
	addr, err := t.store.LoadAddress(ctx, t.addressKey())
	if err != nil {
		logger.Error("token %s: load address: %v", t.Symbol, err)
	}
	if addr != "" {
		t.Address = addr
		return nil
	}
	return t.RotateAddress(ctx)
}

// RotateAddress — свежий адрес у демона + персист. Дёргается после
// FINISHED для актива, на который пришли средства.
func (t *Token) RotateAddress(ctx context.Context) error {
	addr, err := t.dex.GetNewAddress(ctx, t.Symbol)
	if err != nil {
		logger.Error("token %s: new address: %v", t.Symbol, err)
		return err
	}
	t.Address = addr
	if err := t.store.SaveAddress(ctx, t.addressKey(), addr); err != nil {
		logger.Error("token %s: save address: %v", t.Symbol, err)
	}
	return nil
}
