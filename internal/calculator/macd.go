package calculator

// MACDResult holds the three MACD series, each aligned to the input closes.
type MACDResult struct {
	Line      []float64
	Signal    []float64
	Histogram []float64
}

// Last returns the most recent line, signal and histogram values.
func (m MACDResult) Last() (line, signal, hist float64) {
	n := len(m.Line)
	if n == 0 {
		return 0, 0, 0
	}
	return m.Line[n-1], m.Signal[n-1], m.Histogram[n-1]
}

// MACD computes EMA(fast) - EMA(slow), its signal EMA and the histogram.
func MACD(closes []float64, fast, slow, signal int) MACDResult {
	fastEMA := EMA(closes, fast)
	slowEMA := EMA(closes, slow)

	line := make([]float64, len(closes))
	for i := range closes {
		line[i] = fastEMA[i] - slowEMA[i]
	}
	sig := EMA(line, signal)

	hist := make([]float64, len(closes))
	for i := range closes {
		hist[i] = line[i] - sig[i]
	}
	return MACDResult{Line: line, Signal: sig, Histogram: hist}
}

// DefaultMACD uses the conventional 12/26/9 periods.
func DefaultMACD(closes []float64) MACDResult {
	return MACD(closes, 12, 26, 9)
}
