package calculator

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// BollingerBands is the band triple at the latest sample.
type BollingerBands struct {
	Mid   float64
	Upper float64
	Lower float64
}

// Bollinger computes mean ± k population standard deviations of the last period closes.
func Bollinger(closes []float64, period int, k float64) (BollingerBands, error) {
	if period <= 0 {
		return BollingerBands{}, errNonPositivePeriod
	}
	if len(closes) < period {
		return BollingerBands{}, fmt.Errorf("bollinger(%d) over %d samples: %w", period, len(closes), ErrInsufficientData)
	}
	mean, std := stat.PopMeanStdDev(closes[len(closes)-period:], nil)
	return BollingerBands{
		Mid:   mean,
		Upper: mean + k*std,
		Lower: mean - k*std,
	}, nil
}
