package calculator

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// TradingDays is the annualization factor for daily samples.
const TradingDays = 252

const minStd = 1e-9

// Returns converts closes to simple returns: r[i-1] = closes[i]/closes[i-1] - 1.
func Returns(closes []float64) []float64 {
	if len(closes) < 2 {
		return []float64{}
	}
	out := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] != 0 {
			out[i-1] = closes[i]/closes[i-1] - 1
		}
	}
	return out
}

// VolatilityAnnualized is the population standard deviation of the last
// window returns × √252, as a percentage. Returns 0 with fewer than window returns.
func VolatilityAnnualized(returns []float64, window int) float64 {
	if window <= 0 || len(returns) < window {
		return 0
	}
	_, std := stat.PopMeanStdDev(returns[len(returns)-window:], nil)
	return std * math.Sqrt(TradingDays) * 100
}

// Sharpe is the annualized mean/std ratio of the last window returns, with no
// risk-free rate. Returns 0 with fewer than window returns.
func Sharpe(returns []float64, window int) float64 {
	if window <= 0 || len(returns) < window {
		return 0
	}
	mean, std := stat.PopMeanStdDev(returns[len(returns)-window:], nil)
	return mean / math.Max(std, minStd) * math.Sqrt(TradingDays)
}
