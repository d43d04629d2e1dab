package collector

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"Investaur/internal/model"
	"Investaur/internal/strategy"
)

// DefaultAnalysisPeriod is the history window of a symbol analysis.
const DefaultAnalysisPeriod = "2y"

// Analysis bundles everything the analysis views render for one symbol.
type Analysis struct {
	Symbol       string                 `json:"symbol"`
	Series       *model.PriceSeries     `json:"series"`
	Fundamentals *model.Fundamentals    `json:"fundamentals"`
	Report       *model.IndicatorReport `json:"report"`
	Signals      model.SignalSet        `json:"signals"`
	PeriodChange float64                `json:"period_change_pct"`
}

// Collector orchestrates data fetching and indicator computation.
type Collector struct {
	Provider Provider
	Log      *zap.Logger
}

// NewCollector creates a new Collector.
func NewCollector(p Provider, log *zap.Logger) *Collector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Collector{Provider: p, Log: log}
}

// Analyze fetches the daily history of symbol and computes the report and signals.
// A fundamentals failure is logged and leaves Fundamentals with only the symbol set.
func (c *Collector) Analyze(ctx context.Context, symbol, period string) (*Analysis, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if period == "" {
		period = DefaultAnalysisPeriod
	}
	if err := ValidatePeriod(period, "1d"); err != nil {
		return nil, err
	}
	series, err := c.Provider.History(ctx, symbol, period, "1d")
	if err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	if series.Empty() {
		return nil, fmt.Errorf("fetch history %s: %w", symbol, ErrNoData)
	}

	rep, signals, err := strategy.Analyze(series)
	if err != nil {
		return nil, err
	}

	funds, err := c.Provider.Fundamentals(ctx, symbol)
	if err != nil {
		c.Log.Warn("fundamentals unavailable", zap.String("symbol", symbol), zap.Error(err))
		funds = &model.Fundamentals{Symbol: symbol}
	}

	closes := series.Closes()
	return &Analysis{
		Symbol:       symbol,
		Series:       series,
		Fundamentals: funds,
		Report:       rep,
		Signals:      signals,
		PeriodChange: ChangePct(closes[len(closes)-1], closes[0]),
	}, nil
}

// Unavailable reports whether err is a provider outage rather than a bad request.
func Unavailable(err error) bool {
	return errors.Is(err, ErrProviderUnavailable)
}
