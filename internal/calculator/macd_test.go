package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMACD_ConstantSeriesIsFlat(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 50
	}
	m := DefaultMACD(closes)
	assert.Len(t, m.Line, 40)
	assert.Len(t, m.Signal, 40)
	assert.Len(t, m.Histogram, 40)
	line, sig, hist := m.Last()
	assert.InDelta(t, 0.0, line, 1e-12)
	assert.InDelta(t, 0.0, sig, 1e-12)
	assert.InDelta(t, 0.0, hist, 1e-12)
}

func TestMACD_Composition(t *testing.T) {
	closes := []float64{10, 11, 12, 11, 13, 15, 14, 16, 18, 17}
	m := MACD(closes, 3, 6, 2)
	fast, slow := EMA(closes, 3), EMA(closes, 6)
	for i := range closes {
		assert.InDelta(t, fast[i]-slow[i], m.Line[i], 1e-12)
		assert.InDelta(t, m.Line[i]-m.Signal[i], m.Histogram[i], 1e-12)
	}
	assert.InDeltaSlice(t, EMA(m.Line, 2), m.Signal, 1e-12)
}

func TestMACD_RisingSeriesHasPositiveLine(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = float64(100 + 2*i)
	}
	line, _, _ := DefaultMACD(closes).Last()
	assert.Greater(t, line, 0.0)
}

func TestMACD_Empty(t *testing.T) {
	line, sig, hist := DefaultMACD(nil).Last()
	assert.Zero(t, line)
	assert.Zero(t, sig)
	assert.Zero(t, hist)
}
