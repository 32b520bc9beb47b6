package helper

import (
	"math"
	"strings"
)

// PairKey — ключ персистентного состояния: "strategy/T1/T2".
func PairKey(strategy, symbol string) string { return strategy + "/" + symbol }

// SplitPair — "T1/T2" -> (T1, T2). ok=false для кривого символа.
func SplitPair(symbol string) (t1 string, t2 string, ok bool) {
	i := strings.IndexByte(symbol, '/')
	if i <= 0 || i >= len(symbol)-1 {
		return "", "", false
	}
	return symbol[:i], symbol[i+1:], true
}

// SymbolToInstID — "BLOCK/BTC" -> "BLOCK-BTC" (формат websocket-фида).
func SymbolToInstID(symbol string) string { return strings.ReplaceAll(symbol, "/", "-") }

// InstIDToSymbol — обратное преобразование.
func InstIDToSymbol(instID string) string { return strings.ReplaceAll(instID, "-", "/") }

// RoundSat — округление суммы до сатоши (8 знаков). UTXO-демон не
// принимает больше 8 знаков после запятой.
func RoundSat(v float64) float64 {
	return math.Round(v*1e8) / 1e8
}
