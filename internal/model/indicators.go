package model

// MACDSnapshot holds the latest MACD values plus the full series for charting.
type MACDSnapshot struct {
	Line            float64   `json:"line"`
	Signal          float64   `json:"signal"`
	Histogram       float64   `json:"histogram"`
	LineSeries      []float64 `json:"line_series"`
	SignalSeries    []float64 `json:"signal_series"`
	HistogramSeries []float64 `json:"histogram_series"`
}

// IndicatorReport holds all computed technical indicators for one series snapshot.
// Pointer fields are omitted when the series is too short for the window.
type IndicatorReport struct {
	Symbol       string       `json:"symbol"`
	Samples      int          `json:"samples"`
	CurrentPrice float64      `json:"current_price"`
	SMA20        float64      `json:"sma20"`
	SMA20Series  []float64    `json:"sma20_series"` // one value per complete window
	SMA50        *float64     `json:"sma50,omitempty"`
	SMA200       *float64     `json:"sma200,omitempty"`
	RSI14        float64      `json:"rsi14"`
	RSIZone      string       `json:"rsi_zone"`
	MACD         MACDSnapshot `json:"macd"`
	BBMid        float64      `json:"bb_mid"`
	BBUpper      float64      `json:"bb_upper"`
	BBLower      float64      `json:"bb_lower"`
	VolatilityAn float64      `json:"volatility_annualized"`
	Sharpe       float64      `json:"sharpe"`
	Momentum1M   float64      `json:"momentum_1m"`
	Momentum3M   float64      `json:"momentum_3m"`
	Momentum6M   float64      `json:"momentum_6m"`
	Momentum1Y   float64      `json:"momentum_1y"`
	MaxDrawdown  float64      `json:"max_drawdown"`
	ATR14        *float64     `json:"atr14,omitempty"`
	High52w      float64      `json:"high_52w"`
	Low52w       float64      `json:"low_52w"`
	RangePos52w  float64      `json:"range_pos_52w"` // percent of the way from low to high
}
