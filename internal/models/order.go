package models

// Side — сторона виртуального ордера в пинг-понг цикле.
type Side string

const (
	SideSell Side = "SELL"
	SideBuy  Side = "BUY"
)

// Opposite — следующая сторона цикла после завершённого ордера.
func (s Side) Opposite() Side {
	if s == SideSell {
		return SideBuy
	}
	return SideSell
}

// OrderKind — тип ордера на стороне демона.
type OrderKind string

const (
	KindExact   OrderKind = "exact"
	KindPartial OrderKind = "partial"
)

// Order — value object: виртуальный (ещё не отправленный) и живой ордер
// структурно одинаковы, отличаются только наличием ID/Status.
type Order struct {
	Symbol string `json:"symbol"` // "T1/T2"
	Side   Side   `json:"side"`

	Maker        string  `json:"maker"`
	MakerSize    float64 `json:"maker_size"`
	MakerAddress string  `json:"maker_address"`

	Taker        string  `json:"taker"`
	TakerSize    float64 `json:"taker_size"`
	TakerAddress string  `json:"taker_address"`

	Kind        OrderKind `json:"type"`
	MinimumSize float64   `json:"minimum_size,omitempty"` // только для partial

	// цена исполнения и замороженные референсы на момент конструирования
	DexPrice   float64 `json:"dex_price"`
	OrgPrice   float64 `json:"org_pprice"`
	T1UsdPrice float64 `json:"org_t1_usd_price"`
	T2UsdPrice float64 `json:"org_t2_usd_price"`

	// true, если цена BUY была прижата к цене завершённого SELL
	// (защита прибыли: никогда не платим за юнит больше, чем продали)
	ManualPrice bool `json:"manual_price"`

	// заполняются после отправки демону
	ID     string `json:"id,omitempty"`
	Status string `json:"status,omitempty"`
}

// Clone — копия, чтобы никто извне не мутировал shared ptr.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	cp := *o
	return &cp
}

// DexOrderReply — ответ демона на постановку/опрос ордера.
// Ошибка уровня протокола приходит в Code/Message, транспортные ошибки —
// обычным error из клиента.
type DexOrderReply struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Code    int    `json:"code,omitempty"`
	Message string `json:"error,omitempty"`
}

// UTXO — один выход из dxGetUtxos. Непустой OrderID означает,
// что выход зарезервирован под открытый ордер.
type UTXO struct {
	TxID    string  `json:"txid"`
	Vout    int     `json:"vout"`
	Amount  float64 `json:"amount"`
	Address string  `json:"address"`
	OrderID string  `json:"orderid,omitempty"`
}
