package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"pingpong_bot/internal/models"
	"pingpong_bot/internal/modules/config"
	"pingpong_bot/internal/storage"
	"pingpong_bot/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// ---- фейки ----

type fakeBridge struct {
	mu sync.Mutex

	placeReply *models.DexOrderReply
	placeErr   error
	placeCalls int
	lastPlaced *models.Order // реконструкция из аргументов последнего Place*

	statusReply *models.DexOrderReply
	statusQueue []*models.DexOrderReply // приоритетнее statusReply, по ответу на вызов
	statusErr   error
	statusCalls int

	cancelled []string

	utxos map[string][]models.UTXO

	addrSeq   int
	addrCalls int

	localTokens []string
}

func newFakeBridge() *fakeBridge {
	return &fakeBridge{
		placeReply: &models.DexOrderReply{ID: "order-1", Status: "created"},
		utxos:      map[string][]models.UTXO{},
	}
}

func (f *fakeBridge) PlaceOrder(_ context.Context,
	maker string, makerSize float64, makerAddress string,
	taker string, takerSize float64, takerAddress string,
) (*models.DexOrderReply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.placeCalls++
	f.lastPlaced = &models.Order{
		Maker: maker, MakerSize: makerSize, MakerAddress: makerAddress,
		Taker: taker, TakerSize: takerSize, TakerAddress: takerAddress,
		Kind: models.KindExact,
	}
	if f.placeErr != nil {
		return nil, f.placeErr
	}
	return f.placeReply, nil
}

func (f *fakeBridge) PlacePartialOrder(ctx context.Context,
	maker string, makerSize float64, makerAddress string,
	taker string, takerSize float64, takerAddress string,
	minimumSize float64,
) (*models.DexOrderReply, error) {
	reply, err := f.PlaceOrder(ctx, maker, makerSize, makerAddress, taker, takerSize, takerAddress)
	if err == nil {
		f.mu.Lock()
		f.lastPlaced.Kind = models.KindPartial
		f.lastPlaced.MinimumSize = minimumSize
		f.mu.Unlock()
	}
	return reply, err
}

func (f *fakeBridge) CancelOrder(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, id)
	return nil
}

func (f *fakeBridge) GetOrderStatus(_ context.Context, id string) (*models.DexOrderReply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls++
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	if len(f.statusQueue) > 0 {
		reply := f.statusQueue[0]
		f.statusQueue = f.statusQueue[1:]
		return reply, nil
	}
	if f.statusReply != nil {
		return f.statusReply, nil
	}
	return &models.DexOrderReply{ID: id, Status: "open"}, nil
}

func (f *fakeBridge) GetUTXOs(_ context.Context, token string, _ bool) ([]models.UTXO, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.utxos[token], nil
}

func (f *fakeBridge) GetNewAddress(_ context.Context, token string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addrSeq++
	f.addrCalls++
	return fmt.Sprintf("%s-addr-%d", token, f.addrSeq), nil
}

func (f *fakeBridge) GetLocalTokens(context.Context) ([]string, error) {
	return f.localTokens, nil
}

func (f *fakeBridge) CancelAllOrders(context.Context) error { return nil }

type fakeOracle struct {
	mu     sync.Mutex
	prices map[string]float64
	err    error
	calls  int
}

func (f *fakeOracle) FetchTicker(_ context.Context, symbol string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	v, ok := f.prices[symbol]
	if !ok || v <= 0 {
		return 0, fmt.Errorf("no price for %s", symbol)
	}
	return v, nil
}

func (f *fakeOracle) FetchTickers(_ context.Context, symbols []string) (map[string]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := map[string]float64{}
	for _, s := range symbols {
		if v, ok := f.prices[s]; ok && v > 0 {
			out[s] = v
		}
	}
	return out, nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (f *fakeNotifier) Send(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, msg)
}

func (f *fakeNotifier) Sendf(format string, args ...any) { f.Send(fmt.Sprintf(format, args...)) }

// ---- сборка тестовой пары ----

type pairFixture struct {
	pair   *Pair
	bridge *fakeBridge
	oracle *fakeOracle
	store  storage.Store
	n      *fakeNotifier

	t1, t2, btc *Token
}

// newPairFixture — пара BLOCK/LTC с живыми ценами:
// BTC/USD=100000, BLOCK/BTC=0.0001 (10$), LTC/BTC=0.001 (100$).
func newPairFixture(t *testing.T, pc *config.PairConfig) *pairFixture {
	t.Helper()

	bridge := newFakeBridge()
	oracle := &fakeOracle{prices: map[string]float64{
		"BTC/USD":   100000,
		"BLOCK/BTC": 0.0001,
		"LTC/BTC":   0.001,
	}}
	store := storage.NewFile(filepath.Join(t.TempDir(), "state.json"))
	n := &fakeNotifier{}
	var balanceMu sync.Mutex

	btc := NewToken("BTC", "shared", false, oracle, bridge, store, nil, &balanceMu)
	t1 := NewToken("BLOCK", pc.Strategy, true, oracle, bridge, store, nil, &balanceMu)
	t2 := NewToken("LTC", pc.Strategy, true, oracle, bridge, store, nil, &balanceMu)

	btc.ApplyTick(100000, nil)
	t1.ApplyTick(0.0001, btc)
	t2.ApplyTick(0.001, btc)
	t1.Address = "block-addr"
	t2.Address = "ltc-addr"

	cfg := &config.Config{}
	p := NewPair(pc, cfg.Tolerance(pc), t1, t2, btc, bridge, store, n)

	return &pairFixture{
		pair: p, bridge: bridge, oracle: oracle, store: store, n: n,
		t1: t1, t2: t2, btc: btc,
	}
}

func pingpongPC() *config.PairConfig {
	return &config.PairConfig{
		Symbol:                  "BLOCK/LTC",
		Strategy:                config.StrategyPingPong,
		USDAmount:               2.0,
		Spread:                  0.05,
		PriceVariationTolerance: 0.02,
	}
}

func basicSellerPC() *config.PairConfig {
	return &config.PairConfig{
		Symbol:          "BLOCK/LTC",
		Strategy:        config.StrategyBasicSeller,
		SellAmount:      0.5,
		SellPriceOffset: 0.03,
	}
}
