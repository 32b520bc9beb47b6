package runner

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"pingpong_bot/internal/helper"
	"pingpong_bot/internal/models"
	"pingpong_bot/internal/modules/config"
	healthsvc "pingpong_bot/internal/modules/health/service"
	"pingpong_bot/internal/notify"
	"pingpong_bot/internal/storage"
	"pingpong_bot/pkg/logger"
)

// после стольких подряд неудачных батч-запросов цен бот останавливается:
// торговать вслепую хуже, чем не торговать
const maxOracleFails = 3

// как часто слать периодическую сводку в нотифайер
const healthReportEvery = 40 // циклов

// Controller — владелец токенов и пар: общий цикл опроса, батч-обновление
// цен и балансов, параллельный прогон пар.
type Controller struct {
	cfg   *config.Config
	dex   WalletBridge
	cex   PriceOracle
	store storage.Store
	state *healthsvc.State
	n     notify.Notifier

	btc    *Token
	tokens map[string]*Token // PairKey(strategy, symbol) -> Token
	pairs  []*Pair

	balanceMu   sync.Mutex
	oracleFails int
	cycles      int
}

func NewController(
	cfg *config.Config,
	dex WalletBridge,
	cex PriceOracle,
	store storage.Store,
	state *healthsvc.State,
	n notify.Notifier,
) (*Controller, error) {
	c := &Controller{
		cfg:    cfg,
		dex:    dex,
		cex:    cex,
		store:  store,
		state:  state,
		n:      n,
		tokens: make(map[string]*Token),
	}

	// мостовой токен всегда есть: через него считаются все USD-цены
	c.btc = NewToken(BridgeToken, "shared", false, cex, dex, store,
		cfg.CustomTickers, &c.balanceMu)

	for i := range cfg.Pairs {
		pc := &cfg.Pairs[i]
		t1sym, t2sym, ok := pc.Tokens()
		if !ok {
			return nil, fmt.Errorf("pair %q: bad symbol", pc.Symbol)
		}
		t1 := c.tokenFor(pc.Strategy, t1sym)
		t2 := c.tokenFor(pc.Strategy, t2sym)

		p := NewPair(pc, cfg.Tolerance(pc), t1, t2, c.btc, dex, store, n)
		c.pairs = append(c.pairs, p)
	}

	return c, nil
}

// tokenFor — токен в разрезе стратегии (у каждой стратегии свои
// депозитные адреса). Мостовой токен один на всех.
func (c *Controller) tokenFor(strategy, symbol string) *Token {
	if symbol == BridgeToken {
		c.btc.DexEnabled = true
		return c.btc
	}
	key := helper.PairKey(strategy, symbol)
	if t, ok := c.tokens[key]; ok {
		return t
	}
	t := NewToken(symbol, strategy, true, c.cex, c.dex, c.store,
		c.cfg.CustomTickers, &c.balanceMu)
	c.tokens[key] = t
	return t
}

// Run — блокирующий главный цикл; выходит по ctx или по внутреннему
// сигналу остановки (например, оракул умер).
func (c *Controller) Run(ctx context.Context) {
	c.startup(ctx)

	interval := time.Duration(c.cfg.Controller.IntervalSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.state.Shutdown():
			return
		case <-ticker.C:
			c.cycle(ctx)
		}
	}
}

// startup — возобновление из стора, прогрев адресов, первый цикл.
func (c *Controller) startup(ctx context.Context) {
	c.checkLocalTokens(ctx)

	for _, p := range c.pairs {
		p.InitFromStore(ctx)
	}
	for _, t := range c.allTokens() {
		if t.DexEnabled {
			_ = t.ReadAddress(ctx)
		}
	}

	c.cycle(ctx)
	c.state.SetReady(true)

	c.n.Sendf("🚀 Бот запущен: %d пар, интервал %dс",
		len(c.pairs), c.cfg.Controller.IntervalSeconds)
	logger.Info("controller: started, %d pairs", len(c.pairs))
}

// checkLocalTokens — ранняя диагностика конфига: монета, которой кошелёк
// не знает, не зафейлит ничего сразу, но все её пары будут стоять.
func (c *Controller) checkLocalTokens(ctx context.Context) {
	known, err := c.dex.GetLocalTokens(ctx)
	if err != nil {
		logger.Error("controller: local tokens: %v", err)
		return
	}
	set := make(map[string]struct{}, len(known))
	for _, t := range known {
		set[t] = struct{}{}
	}
	for _, t := range c.allTokens() {
		if !t.DexEnabled {
			continue
		}
		if _, ok := set[t.Symbol]; !ok {
			c.n.Sendf("⚠️ Кошелёк не знает монету %s, её пары торговать не будут", t.Symbol)
			logger.Error("controller: wallet does not know token %s", t.Symbol)
		}
	}
}

func (c *Controller) cycle(ctx context.Context) {
	c.refreshPrices(ctx)
	c.refreshBalances(ctx)
	if c.state.ShutdownRequested() || ctx.Err() != nil {
		return
	}
	c.runPairs(ctx)

	c.state.TouchCycle(time.Now())
	c.cycles++
	if c.cycles%healthReportEvery == 0 {
		c.n.Sendf("💓 Бот жив: аптайм %s, циклов %d",
			c.state.Uptime().Truncate(time.Second), c.cycles)
	}
}

// refreshPrices — один батч-запрос на все тикеры цикла. Мост применяется
// первым: USD-цены остальных считаются через него. Кастомные тикеры из
// конфига перекрывают оракул, отсутствующий в ответе символ обнуляет
// знание цены (nil, не ноль).
func (c *Controller) refreshPrices(ctx context.Context) {
	all := c.allTokens()

	seen := map[string]struct{}{}
	symbols := []string{c.btc.ComparisonSymbol()}
	seen[c.btc.ComparisonSymbol()] = struct{}{}
	for _, t := range all {
		s := t.ComparisonSymbol()
		if _, ok := seen[s]; ok {
			continue
		}
		if _, custom := c.cfg.CustomTickers[s]; custom {
			continue
		}
		seen[s] = struct{}{}
		symbols = append(symbols, s)
	}

	prices, err := c.cex.FetchTickers(ctx, symbols)
	if err != nil {
		c.oracleFails++
		c.state.SetCexUp(false)
		logger.Error("controller: tickers batch failed (%d/%d): %v",
			c.oracleFails, maxOracleFails, err)
		if c.oracleFails >= maxOracleFails {
			c.n.Send("🛑 Ценовой оракул недоступен, бот останавливается")
			c.state.RequestShutdown()
		}
		return
	}
	c.oracleFails = 0
	c.state.SetCexUp(true)

	apply := func(t *Token) {
		s := t.ComparisonSymbol()
		if v, ok := c.cfg.CustomTickers[s]; ok {
			t.ApplyTick(v, c.btc)
			return
		}
		if v, ok := prices[s]; ok {
			t.ApplyTick(v, c.btc)
			return
		}
		t.SetPriceUnknown()
	}

	apply(c.btc)
	for _, t := range all {
		if t == c.btc {
			continue
		}
		apply(t)
	}
}

// refreshBalances — последовательно, демон кошелька не любит параллельных
// запросов по балансам одного кошелька.
func (c *Controller) refreshBalances(ctx context.Context) {
	okAll := true
	for _, t := range c.allTokens() {
		if !t.DexEnabled {
			continue
		}
		if c.state.ShutdownRequested() || ctx.Err() != nil {
			return
		}
		if err := t.UpdateBalance(ctx); err != nil {
			okAll = false
		}
	}
	c.state.SetDexUp(okAll)
}

// runPairs — пары независимы, гоняем параллельно; паника одной пары не
// валит остальных.
func (c *Controller) runPairs(ctx context.Context) {
	var wg sync.WaitGroup
	for _, p := range c.pairs {
		wg.Add(1)
		go func(p *Pair) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					logger.Error("pair %s: panic recovered: %v", p.Symbol, r)
				}
			}()
			p.StatusCheck(ctx)
		}(p)
	}
	wg.Wait()
}

// ApplyTick — вход для websocket-фида цен: тик применяется к каждому
// токену с этим символом сравнения, мост первым.
func (c *Controller) ApplyTick(tick models.TickerTick) {
	if tick.Last <= 0 {
		return
	}
	if tick.Symbol == c.btc.ComparisonSymbol() {
		c.btc.ApplyTick(tick.Last, nil)
	}
	for _, t := range c.allTokens() {
		if t != c.btc && t.ComparisonSymbol() == tick.Symbol {
			t.ApplyTick(tick.Last, c.btc)
		}
	}
}

// WatchSymbols — символы сравнения всех токенов для websocket-фида.
func (c *Controller) WatchSymbols() []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(c.tokens)+1)
	for _, t := range c.allTokens() {
		s := t.ComparisonSymbol()
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// StatusLines — сводка для команды /status.
func (c *Controller) StatusLines(ctx context.Context) []string {
	lines := make([]string, 0, len(c.pairs)+len(c.tokens))
	for _, p := range c.pairs {
		lines = append(lines, p.StatusLine())
	}
	for _, t := range c.allTokens() {
		if !t.DexEnabled {
			continue
		}
		if free, ok := t.FreeBalanceValue(); ok {
			lines = append(lines, fmt.Sprintf("%s: свободно %.8f", t.Symbol, free))
		} else {
			lines = append(lines, t.Symbol+": баланс неизвестен")
		}
	}
	return lines
}

// Stop — финальная зачистка на выключении.
func (c *Controller) Stop(ctx context.Context) {
	if c.cfg.Controller.CancelAllOnExit {
		if err := c.dex.CancelAllOrders(ctx); err != nil {
			logger.Error("controller: cancel all on exit: %v", err)
		}
	}
	c.state.SetReady(false)
	c.n.Send("👋 Бот остановлен")
}

// allTokens — стабильный порядок: мост первым, дальше по ключу.
func (c *Controller) allTokens() []*Token {
	keys := make([]string, 0, len(c.tokens))
	for k := range c.tokens {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]*Token, 0, len(c.tokens)+1)
	out = append(out, c.btc)
	for _, k := range keys {
		out = append(out, c.tokens[k])
	}
	return out
}
