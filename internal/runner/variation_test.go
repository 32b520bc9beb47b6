package runner

import (
	"testing"

	"pingpong_bot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckPriceInRange(t *testing.T) {
	// живая цена пары двигается через цену T1, OrgPrice фиксирован в 0.1
	tests := []struct {
		name      string
		liveT1    float64
		tolerance float64
		wantIn    bool
	}{
		{"цена на месте", 0.0001, 0.02, true},
		{"дрейф внутри допуска", 0.000101, 0.02, true}, // вариация 1.01
		{"дрейф вверх за допуск", 0.000105, 0.02, false},
		{"дрейф вниз за допуск", 0.000095, 0.02, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pc := pingpongPC()
			pc.PriceVariationTolerance = tt.tolerance
			fx := newPairFixture(t, pc)
			fx.t1.ApplyTick(tt.liveT1, fx.btc)

			fx.pair.CurrentOrder = &models.Order{
				Side:     models.SideSell,
				OrgPrice: 0.1,
			}

			in, known := fx.pair.CheckPriceInRange()
			require.True(t, known)
			assert.Equal(t, tt.wantIn, in)
		})
	}
}

func TestCheckPriceInRangeStrictBounds(t *testing.T) {
	// границы строгие: вариация ровно 1±tol — уже дрейф.
	// Все значения точны в двоичной арифметике (степени двойки и 3/32).
	tests := []struct {
		name   string
		liveT1 float64 // при T2=0.5 и OrgPrice=0.125
		wantIn bool
	}{
		{"ровно верхняя граница 1.5", 0.09375, false}, // live 0.1875, v=1.5
		{"ровно нижняя граница 0.5", 0.03125, false},  // live 0.0625, v=0.5
		{"чуть внутри", 0.0625, true},                 // live 0.125, v=1.0
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pc := pingpongPC()
			pc.PriceVariationTolerance = 0.5
			fx := newPairFixture(t, pc)
			fx.t2.ApplyTick(0.5, fx.btc)
			fx.t1.ApplyTick(tt.liveT1, fx.btc)

			fx.pair.CurrentOrder = &models.Order{
				Side:     models.SideSell,
				OrgPrice: 0.125,
			}

			in, known := fx.pair.CheckPriceInRange()
			require.True(t, known)
			assert.Equal(t, tt.wantIn, in)
		})
	}
}

func TestCheckPriceInRangeUnknownPrice(t *testing.T) {
	fx := newPairFixture(t, pingpongPC())
	fx.pair.CurrentOrder = &models.Order{Side: models.SideSell, OrgPrice: 0.1}
	fx.t1.SetPriceUnknown()

	_, known := fx.pair.CheckPriceInRange()
	assert.False(t, known, "без живой цены дрейф не считается")
}

func TestCheckPriceInRangePinnedBuyIgnoresRally(t *testing.T) {
	// BUY с прижатой ценой: рост рынка выше референса — не дрейф,
	// ордер и так стоит по клампу
	fx := newPairFixture(t, pingpongPC())
	fx.t1.ApplyTick(0.00013, fx.btc) // live 0.13, заметно выше OrgPrice

	fx.pair.CurrentOrder = &models.Order{
		Side:        models.SideBuy,
		OrgPrice:    0.1,
		ManualPrice: true,
	}

	in, known := fx.pair.CheckPriceInRange()
	require.True(t, known)
	assert.True(t, in)
	assert.Equal(t, 1.0, fx.pair.Variation)
}

func TestCheckPriceInRangePinnedBuyStillSeesDrop(t *testing.T) {
	// падение рынка под прижатым BUY — обычный дрейф вниз
	fx := newPairFixture(t, pingpongPC())
	fx.t1.ApplyTick(0.00009, fx.btc) // live 0.09

	fx.pair.CurrentOrder = &models.Order{
		Side:        models.SideBuy,
		OrgPrice:    0.1,
		ManualPrice: true,
	}

	in, known := fx.pair.CheckPriceInRange()
	require.True(t, known)
	assert.False(t, in)
}

func TestCheckPriceInRangeBasicSellerUsesOwnPrice(t *testing.T) {
	// для basic_seller кандидат — его собственная цена (с апскейлом),
	// допуск жёстко 1%
	fx := newPairFixture(t, basicSellerPC())

	fx.pair.CurrentOrder = &models.Order{
		Side:     models.SideSell,
		OrgPrice: 0.1 * 1.03, // построен той же политикой
	}

	in, known := fx.pair.CheckPriceInRange()
	require.True(t, known)
	assert.True(t, in, "кандидатная цена совпадает с OrgPrice")

	// сдвиг живой цены на 2% выбивает из 1% допуска
	fx.t1.ApplyTick(0.000102, fx.btc)
	in, known = fx.pair.CheckPriceInRange()
	require.True(t, known)
	assert.False(t, in)
}
