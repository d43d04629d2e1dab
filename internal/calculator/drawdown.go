package calculator

// MaxDrawdown tracks the running peak and returns the most negative
// (price-peak)/peak percentage. The result is <= 0.
func MaxDrawdown(prices []float64) float64 {
	if len(prices) == 0 {
		return 0
	}
	peak, maxDD := prices[0], 0.0
	for _, p := range prices {
		if p > peak {
			peak = p
		}
		if peak <= 0 {
			continue
		}
		if dd := (p - peak) / peak * 100; dd < maxDD {
			maxDD = dd
		}
	}
	return maxDD
}
