package models

// OrderStatus — внутреннее состояние живого ордера после маппинга
// статусной строки демона.
type OrderStatus int

const (
	StatusOpen OrderStatus = iota + 1
	StatusOthers
	StatusFinished
	StatusErrorSwap
	StatusCancelledWithoutCall
)

func (s OrderStatus) String() string {
	switch s {
	case StatusOpen:
		return "OPEN"
	case StatusOthers:
		return "OTHERS"
	case StatusFinished:
		return "FINISHED"
	case StatusErrorSwap:
		return "ERROR_SWAP"
	case StatusCancelledWithoutCall:
		return "CANCELLED_WITHOUT_CALL"
	default:
		return "UNKNOWN"
	}
}

// Таблица маппинга статусных строк демона. Это протокольное знание,
// порядок и состав строк менять нельзя.
var daemonStatus = map[string]OrderStatus{
	"open": StatusOpen,
	"new":  StatusOpen,

	"created":     StatusOthers,
	"initialized": StatusOthers,
	"committed":   StatusOthers,

	"finished": StatusFinished,

	"expired":         StatusErrorSwap,
	"offline":         StatusErrorSwap,
	"invalid":         StatusErrorSwap,
	"rolled back":     StatusErrorSwap,
	"rollback failed": StatusErrorSwap,

	"canceled": StatusCancelledWithoutCall,
}

// StatusFromDaemon — маппит строку демона в OrderStatus.
// ok=false для пустой или нераспознанной строки: решение о ретраях
// и очистке живого ордера принимает вызывающий.
func StatusFromDaemon(raw string) (OrderStatus, bool) {
	st, ok := daemonStatus[raw]
	return st, ok
}

// Коды ошибок демона, после которых пару НЕ отключаем навсегда:
// гонки вида "ордер уже существует" / "баланс временно занят".
// Состав захардкожен исторически, см. DESIGN.md.
var transientDexCodes = map[int]struct{}{
	1018: {},
	1019: {},
	1026: {},
	1032: {},
}

// IsTransientDexCode — true, если код из известного transient-списка.
func IsTransientDexCode(code int) bool {
	_, ok := transientDexCodes[code]
	return ok
}
