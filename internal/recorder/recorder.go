package recorder

import (
	"time"

	"Investaur/internal/model"
)

// Account names of the journal.
const (
	AccountPaper     = "paper"
	AccountPortfolio = "portfolio"
)

// ValuationEvent is one mark-to-market snapshot of a ledger.
type ValuationEvent struct {
	Account string    `json:"account"`
	Time    time.Time `json:"time"`
	Cash    float64   `json:"cash"`
	Value   float64   `json:"value"` // total, cash included
	PnL     float64   `json:"pnl"`
	Stale   int       `json:"stale"` // positions valued at cost
}

// SignalEvent records a sentiment reading of a watched symbol.
type SignalEvent struct {
	Symbol     string          `json:"symbol"`
	Time       time.Time       `json:"time"`
	Price      float64         `json:"price"`
	BullishPct float64         `json:"bullish_pct"`
	Sentiment  model.Sentiment `json:"sentiment"`
}

// Recorder journals ledger activity for the session.
type Recorder interface {
	RecordTrade(account string, rec model.TradeRecord) error
	RecordValuation(evt ValuationEvent) error
	RecordSignal(evt SignalEvent) error
	Valuations(account string, limit int) ([]ValuationEvent, error)
	Trades(account string, limit int) ([]model.TradeRecord, error)
	Close() error
}
