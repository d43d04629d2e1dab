package model

import "time"

// Holding is a cost-basis lot in the tracked portfolio.
type Holding struct {
	Ticker       string  `json:"ticker"`
	Shares       float64 `json:"shares"`
	AvgPrice     float64 `json:"avg_price"`
	PurchaseDate string  `json:"purchase_date"`
}

// CostBasis returns shares × average price.
func (h Holding) CostBasis() float64 { return h.Shares * h.AvgPrice }

// TradeAction is the side of a paper trade.
type TradeAction string

const (
	ActionBuy  TradeAction = "BUY"
	ActionSell TradeAction = "SELL"
)

// TradeRecord is an immutable entry of the paper-trading history.
type TradeRecord struct {
	ID     string      `json:"id"`
	Action TradeAction `json:"action"`
	Ticker string      `json:"ticker"`
	Shares float64     `json:"shares"`
	Price  float64     `json:"price"`
	Total  float64     `json:"total"`
	Time   time.Time   `json:"time"`
}

// Position is an open paper-trading position.
type Position struct {
	Ticker   string  `json:"ticker"`
	Shares   float64 `json:"shares"`
	AvgPrice float64 `json:"avg_price"`
}
