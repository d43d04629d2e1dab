package calculator

// Momentum lookbacks in trading days. The reference sample is
// closes[len-lookback], so a 1M lookback compares against closes[-22].
const (
	Lookback1M = 22
	Lookback3M = 63
	Lookback6M = 126
	Lookback1Y = 252
)

// Momentum returns the percentage change from closes[n-lookback] to the last close.
// It returns 0 when fewer than lookback+1 closes exist; callers that need to tell
// "flat" from "no data" must check the length themselves.
func Momentum(closes []float64, lookback int) float64 {
	n := len(closes)
	if lookback <= 0 || n < lookback+1 {
		return 0
	}
	ref := closes[n-lookback]
	if ref == 0 {
		return 0
	}
	return (closes[n-1]/ref - 1) * 100
}
