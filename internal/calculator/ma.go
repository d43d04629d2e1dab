package calculator

import (
	"fmt"

	"github.com/markcheno/go-talib"
)

// SMA computes the simple moving average of the last period prices.
func SMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errNonPositivePeriod
	}
	if len(prices) < period {
		return 0, fmt.Errorf("sma(%d) over %d samples: %w", period, len(prices), ErrInsufficientData)
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// SMASeries returns the rolling SMA for every complete window, aligned to
// prices[period-1:]. It is empty when the series is shorter than period.
func SMASeries(prices []float64, period int) []float64 {
	if period <= 0 || len(prices) < period {
		return []float64{}
	}
	out := talib.Sma(prices, period)
	return out[period-1:]
}

// EMA computes the exponential moving average seeded with the first sample.
// The result is aligned to prices.
func EMA(prices []float64, period int) []float64 {
	out := make([]float64, len(prices))
	if len(prices) == 0 {
		return out
	}
	k := 2.0 / float64(period+1)
	out[0] = prices[0]
	for i := 1; i < len(prices); i++ {
		out[i] = prices[i]*k + out[i-1]*(1-k)
	}
	return out
}
