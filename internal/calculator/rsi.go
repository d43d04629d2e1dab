package calculator

import "math"

// NeutralRSI is reported when there are not enough closes for the window.
const NeutralRSI = 50.0

const minLoss = 1e-9

// RSI computes the relative strength index over the last period price changes
// using plain averages of gains and losses.
// Requires at least period+1 closes. Returns NeutralRSI if data is insufficient:
// RSI only feeds secondary signals, so a short series reads as neutral.
func RSI(closes []float64, period int) float64 {
	if period <= 0 || len(closes) < period+1 {
		return NeutralRSI
	}

	var gains, losses float64
	for i := len(closes) - period; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}
	gains /= float64(period)
	losses /= float64(period)

	rs := gains / math.Max(losses, minLoss)
	return 100.0 - 100.0/(1.0+rs)
}
