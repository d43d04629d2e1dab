package strategy

import (
	"fmt"

	"Investaur/internal/calculator"
	"Investaur/internal/model"
)

// MinAnalysisBars is the shortest series Analyze accepts.
const MinAnalysisBars = 20

// Windows of the analysis grid.
const (
	volatilityWindow = 30
	sharpeWindow     = 252
	rsiWindow        = 14
	bollingerWindow  = 20
	bollingerK       = 2.0
	atrWindow        = 14
)

// Sentiments maps the bullish percentage to a label, highest threshold first.
var Sentiments = []struct {
	MinPct    float64
	Sentiment model.Sentiment
}{
	{78, model.StrongBullish},
	{56, model.Bullish},
	{44, model.Neutral},
	{22, model.Bearish},
}

// Sentiment discretizes a bullish percentage. Anything under 22 is STRONG BEARISH.
func Sentiment(pct float64) model.Sentiment {
	for _, s := range Sentiments {
		if pct >= s.MinPct {
			return s.Sentiment
		}
	}
	return model.StrongBearish
}

// RSI zones.
const (
	ZoneOversold   = "OVERSOLD"
	ZoneOverbought = "OVERBOUGHT"
	ZoneNeutral    = "NEUTRAL"
)

// RSIZone labels an RSI reading.
func RSIZone(rsi float64) string {
	switch {
	case rsi <= 30:
		return ZoneOversold
	case rsi >= 70:
		return ZoneOverbought
	default:
		return ZoneNeutral
	}
}

// Analyze computes the full indicator grid and the signal set of series.
func Analyze(series *model.PriceSeries) (*model.IndicatorReport, model.SignalSet, error) {
	if series.Len() < MinAnalysisBars {
		return nil, model.SignalSet{}, fmt.Errorf("analyze %s: %d bars, need %d: %w",
			symbolOf(series), series.Len(), MinAnalysisBars, calculator.ErrInsufficientData)
	}
	if err := series.Validate(); err != nil {
		return nil, model.SignalSet{}, fmt.Errorf("analyze %s: %w", series.Symbol, err)
	}

	closes := series.Closes()
	n := len(closes)
	rep := &model.IndicatorReport{
		Symbol:       series.Symbol,
		Samples:      n,
		CurrentPrice: closes[n-1],
	}

	sma20, err := calculator.SMA(closes, 20)
	if err != nil {
		return nil, model.SignalSet{}, fmt.Errorf("analyze %s: sma20: %w", series.Symbol, err)
	}
	rep.SMA20 = sma20
	rep.SMA20Series = calculator.SMASeries(closes, 20)
	if v, err := calculator.SMA(closes, 50); err == nil {
		rep.SMA50 = &v
	}
	if v, err := calculator.SMA(closes, 200); err == nil {
		rep.SMA200 = &v
	}

	rep.RSI14 = calculator.RSI(closes, rsiWindow)
	rep.RSIZone = RSIZone(rep.RSI14)

	macd := calculator.DefaultMACD(closes)
	line, sig, hist := macd.Last()
	rep.MACD = model.MACDSnapshot{
		Line:            line,
		Signal:          sig,
		Histogram:       hist,
		LineSeries:      macd.Line,
		SignalSeries:    macd.Signal,
		HistogramSeries: macd.Histogram,
	}

	bb, err := calculator.Bollinger(closes, bollingerWindow, bollingerK)
	if err != nil {
		return nil, model.SignalSet{}, fmt.Errorf("analyze %s: bollinger: %w", series.Symbol, err)
	}
	rep.BBMid, rep.BBUpper, rep.BBLower = bb.Mid, bb.Upper, bb.Lower

	returns := calculator.Returns(closes)
	rep.VolatilityAn = calculator.VolatilityAnnualized(returns, volatilityWindow)
	rep.Sharpe = calculator.Sharpe(returns, sharpeWindow)

	rep.Momentum1M = calculator.Momentum(closes, calculator.Lookback1M)
	rep.Momentum3M = calculator.Momentum(closes, calculator.Lookback3M)
	rep.Momentum6M = calculator.Momentum(closes, calculator.Lookback6M)
	rep.Momentum1Y = calculator.Momentum(closes, calculator.Lookback1Y)
	rep.MaxDrawdown = calculator.MaxDrawdown(closes)

	if series.HasRange() {
		if v, err := calculator.ATR(series.Bars, atrWindow); err == nil {
			rep.ATR14 = &v
		}
	}
	if h, l, err := calculator.Range(series.Bars, calculator.Days52Weeks); err == nil {
		rep.High52w, rep.Low52w = h, l
		if pos, err := calculator.RangePosition(rep.CurrentPrice, h, l); err == nil {
			rep.RangePos52w = pos * 100
		}
	}

	return rep, BuildSignalSet(closes), nil
}

func symbolOf(s *model.PriceSeries) string {
	if s == nil {
		return ""
	}
	return s.Symbol
}
