package storage

import (
	"context"
	"path/filepath"
	"testing"

	"pingpong_bot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileOrderRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	ctx := context.Background()

	f := NewFile(path)

	got, err := f.LoadOrder(ctx, "pingpong/BLOCK/LTC")
	require.NoError(t, err)
	assert.Nil(t, got, "пустой стор отдаёт nil, nil")

	order := &models.Order{
		Symbol:    "BLOCK/LTC",
		Side:      models.SideSell,
		Maker:     "BLOCK",
		MakerSize: 0.2,
		Taker:     "LTC",
		TakerSize: 0.021,
		Kind:      models.KindExact,
		DexPrice:  0.1,
		OrgPrice:  0.1,
		ID:        "abc",
		Status:    "finished",
	}
	require.NoError(t, f.SaveOrder(ctx, "pingpong/BLOCK/LTC", order))

	// читаем другим инстансом: состояние пережило "рестарт"
	f2 := NewFile(path)
	got, err = f2.LoadOrder(ctx, "pingpong/BLOCK/LTC")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, order, got)
}

func TestFileAddressRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	ctx := context.Background()

	f := NewFile(path)

	addr, err := f.LoadAddress(ctx, "addr/pingpong/BLOCK")
	require.NoError(t, err)
	assert.Empty(t, addr)

	require.NoError(t, f.SaveAddress(ctx, "addr/pingpong/BLOCK", "bXyz123"))

	f2 := NewFile(path)
	addr, err = f2.LoadAddress(ctx, "addr/pingpong/BLOCK")
	require.NoError(t, err)
	assert.Equal(t, "bXyz123", addr)
}

func TestFileKeysAreIsolated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	ctx := context.Background()

	f := NewFile(path)
	require.NoError(t, f.SaveOrder(ctx, "pingpong/BLOCK/LTC",
		&models.Order{Side: models.SideSell}))
	require.NoError(t, f.SaveOrder(ctx, "basic_seller/BLOCK/LTC",
		&models.Order{Side: models.SideBuy}))

	a, err := f.LoadOrder(ctx, "pingpong/BLOCK/LTC")
	require.NoError(t, err)
	b, err := f.LoadOrder(ctx, "basic_seller/BLOCK/LTC")
	require.NoError(t, err)

	assert.Equal(t, models.SideSell, a.Side)
	assert.Equal(t, models.SideBuy, b.Side)
}

func TestFileLoadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	f := NewFile(filepath.Join(t.TempDir(), "state.json"))

	require.NoError(t, f.SaveOrder(ctx, "k", &models.Order{MakerSize: 1}))

	got, err := f.LoadOrder(ctx, "k")
	require.NoError(t, err)
	got.MakerSize = 99

	again, err := f.LoadOrder(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 1.0, again.MakerSize, "мутация копии не трогает стор")
}
