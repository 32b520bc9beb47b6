package runner

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestToken(sym string, oracle *fakeOracle, custom map[string]float64) *Token {
	var mu sync.Mutex
	return NewToken(sym, "pingpong", true, oracle, newFakeBridge(), nil, custom, &mu)
}

func TestTokenComparisonSymbol(t *testing.T) {
	assert.Equal(t, "BTC/USD", newTestToken("BTC", testOracle(), nil).ComparisonSymbol())
	assert.Equal(t, "BLOCK/BTC", newTestToken("BLOCK", testOracle(), nil).ComparisonSymbol())
}

func TestTokenUpdateCexPriceGuard(t *testing.T) {
	oracle := testOracle()
	btc := newTestToken("BTC", oracle, nil)
	btc.ApplyTick(100000, nil)

	tok := newTestToken("BLOCK", oracle, nil)
	tok.UpdateCexPrice(context.Background(), btc)
	require.NotNil(t, tok.CexPrice)
	calls := oracle.calls

	// свежую цену не перезапрашиваем
	tok.UpdateCexPrice(context.Background(), btc)
	assert.Equal(t, calls, oracle.calls)
}

func TestTokenUpdateCexPriceCustomTicker(t *testing.T) {
	oracle := testOracle()
	btc := newTestToken("BTC", oracle, nil)
	btc.ApplyTick(100000, nil)

	tok := newTestToken("BLOCK", oracle, map[string]float64{"BLOCK/BTC": 0.0005})
	tok.UpdateCexPrice(context.Background(), btc)

	require.NotNil(t, tok.CexPrice)
	assert.Equal(t, 0.0005, *tok.CexPrice)
	assert.Zero(t, oracle.calls, "кастомный тикер не дёргает оракул")
}

func TestTokenUpdateCexPriceFailureKeepsUnknown(t *testing.T) {
	oracle := &fakeOracle{err: assert.AnError}
	btc := newTestToken("BTC", oracle, nil)

	tok := newTestToken("BLOCK", oracle, nil)
	tok.UpdateCexPrice(context.Background(), btc)

	assert.Nil(t, tok.CexPrice, "при сбое цена неизвестна, не ноль")
	assert.Nil(t, tok.UsdPrice)
}

func TestTokenApplyTickUsdThroughBridge(t *testing.T) {
	oracle := testOracle()
	btc := newTestToken("BTC", oracle, nil)

	tok := newTestToken("BLOCK", oracle, nil)

	// без USD-цены моста своя USD-цена неизвестна
	tok.ApplyTick(0.0001, btc)
	require.NotNil(t, tok.CexPrice)
	assert.Nil(t, tok.UsdPrice)

	btc.ApplyTick(100000, nil)
	tok.ApplyTick(0.0001, btc)
	require.NotNil(t, tok.UsdPrice)
	assert.InDelta(t, 10.0, *tok.UsdPrice, 1e-6)
}

func TestTokenReadAddressPersists(t *testing.T) {
	fx := newPairFixture(t, pingpongPC())

	tok := NewToken("DOGE", "pingpong", true, fx.oracle, fx.bridge, fx.store, nil, &sync.Mutex{})
	require.NoError(t, tok.ReadAddress(context.Background()))
	first := tok.Address
	require.NotEmpty(t, first)

	// второй инстанс берёт адрес из стора, а не у демона
	again := NewToken("DOGE", "pingpong", true, fx.oracle, fx.bridge, fx.store, nil, &sync.Mutex{})
	require.NoError(t, again.ReadAddress(context.Background()))
	assert.Equal(t, first, again.Address)
}
