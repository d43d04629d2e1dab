package collector

import (
	"context"
	"sort"

	"go.uber.org/zap"
)

// Instrument is a named symbol of the market overview.
type Instrument struct {
	Name   string
	Symbol string
}

// MarketSymbols is the default market overview list.
var MarketSymbols = []Instrument{
	{"S&P 500 ETF", "SPY"}, {"Nasdaq 100 ETF", "QQQ"}, {"Dow Jones ETF", "DIA"},
	{"Russell 2000", "IWM"}, {"VIX", "^VIX"}, {"Gold", "GLD"}, {"Oil", "USO"},
	{"EUR/USD", "EURUSD=X"},
	{"Bitcoin", "BTC-USD"}, {"Ethereum", "ETH-USD"}, {"Solana", "SOL-USD"},
	{"Apple", "AAPL"}, {"NVIDIA", "NVDA"}, {"Microsoft", "MSFT"},
	{"Tesla", "TSLA"}, {"Meta", "META"}, {"Amazon", "AMZN"}, {"AMD", "AMD"},
	{"Netflix", "NFLX"}, {"Alphabet", "GOOGL"}, {"Broadcom", "AVGO"},
}

// SectorSymbols are the SPDR sector ETFs of the sector heatmap.
var SectorSymbols = []Instrument{
	{"Technology", "XLK"}, {"Healthcare", "XLV"}, {"Financials", "XLF"},
	{"Energy", "XLE"}, {"Utilities", "XLU"}, {"Consumer Disc.", "XLY"},
	{"Industrials", "XLI"}, {"Materials", "XLB"}, {"Real Estate", "XLRE"},
	{"Comm. Services", "XLC"}, {"Staples", "XLP"},
}

// MarketRow is one line of the market overview.
type MarketRow struct {
	Name      string  `json:"name"`
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Change    float64 `json:"change"`
	ChangePct float64 `json:"change_pct"`
	Volume    float64 `json:"volume"`
}

// Up reports a non-negative day change.
func (r MarketRow) Up() bool { return r.Change >= 0 }

// SectorMove is the day change of one sector.
type SectorMove struct {
	Name      string  `json:"name"`
	Symbol    string  `json:"symbol"`
	ChangePct float64 `json:"change_pct"`
}

// ChangePct is the percentage move from prev to curr, 0 when prev is 0.
func ChangePct(curr, prev float64) float64 {
	if prev == 0 {
		return 0
	}
	return (curr - prev) / prev * 100
}

// MarketOverview fetches the day change of each instrument against its previous
// close. Instruments that fail or return no bars are skipped.
func MarketOverview(ctx context.Context, p Provider, instruments []Instrument, log *zap.Logger) []MarketRow {
	rows := make([]MarketRow, 0, len(instruments))
	for _, in := range instruments {
		series, err := p.History(ctx, in.Symbol, "5d", "1d")
		if err != nil {
			log.Warn("market overview: skip symbol", zap.String("symbol", in.Symbol), zap.Error(err))
			continue
		}
		n := series.Len()
		if n == 0 {
			continue
		}
		last := series.Bars[n-1]
		prev := last.Close
		if n > 1 {
			prev = series.Bars[n-2].Close
		}
		rows = append(rows, MarketRow{
			Name:      in.Name,
			Symbol:    in.Symbol,
			Price:     last.Close,
			Change:    last.Close - prev,
			ChangePct: ChangePct(last.Close, prev),
			Volume:    last.Volume,
		})
	}
	return rows
}

// SectorMoves returns sector day changes sorted from worst to best.
// Sectors with fewer than two bars are skipped.
func SectorMoves(ctx context.Context, p Provider, sectors []Instrument, log *zap.Logger) []SectorMove {
	moves := make([]SectorMove, 0, len(sectors))
	for _, in := range sectors {
		series, err := p.History(ctx, in.Symbol, "5d", "1d")
		if err != nil {
			log.Warn("sector moves: skip symbol", zap.String("symbol", in.Symbol), zap.Error(err))
			continue
		}
		n := series.Len()
		if n < 2 {
			continue
		}
		moves = append(moves, SectorMove{
			Name:      in.Name,
			Symbol:    in.Symbol,
			ChangePct: ChangePct(series.Bars[n-1].Close, series.Bars[n-2].Close),
		})
	}
	sort.SliceStable(moves, func(i, j int) bool { return moves[i].ChangePct < moves[j].ChangePct })
	return moves
}
