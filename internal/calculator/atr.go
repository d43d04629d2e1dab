package calculator

import (
	"fmt"

	"github.com/markcheno/go-talib"

	"Investaur/internal/model"
)

// ATR returns the latest Wilder average true range over period bars.
func ATR(bars []model.OHLCV, period int) (float64, error) {
	if period <= 0 {
		return 0, errNonPositivePeriod
	}
	if len(bars) < period+1 {
		return 0, fmt.Errorf("atr(%d) over %d bars: %w", period, len(bars), ErrInsufficientData)
	}
	high := make([]float64, len(bars))
	low := make([]float64, len(bars))
	closes := make([]float64, len(bars))
	for i, b := range bars {
		high[i], low[i], closes[i] = b.High, b.Low, b.Close
	}
	out := talib.Atr(high, low, closes, period)
	return out[len(out)-1], nil
}
