package calculator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReturns(t *testing.T) {
	got := Returns([]float64{100, 110, 99})
	assert.InDeltaSlice(t, []float64{0.1, -0.1}, got, 1e-12)
	assert.Empty(t, Returns([]float64{100}))
}

func TestVolatilityAnnualized(t *testing.T) {
	tests := []struct {
		name    string
		returns []float64
		window  int
		want    float64
	}{
		{"short series", []float64{0.01, 0.02}, 30, 0},
		{"flat", []float64{0.01, 0.01, 0.01}, 3, 0},
		{"alternating", []float64{0.01, -0.01}, 2, 0.01 * math.Sqrt(252) * 100},
		{"last window only", []float64{0.5, 0.01, -0.01}, 2, 0.01 * math.Sqrt(252) * 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, VolatilityAnnualized(tt.returns, tt.window), 1e-9)
		})
	}
}

func TestSharpe(t *testing.T) {
	assert.Zero(t, Sharpe([]float64{0.01}, 252))
	assert.InDelta(t, 2*math.Sqrt(252), Sharpe([]float64{0.01, 0.03}, 2), 1e-9)
}

func TestSharpe_ZeroStdIsFloored(t *testing.T) {
	got := Sharpe([]float64{0.001, 0.001, 0.001}, 3)
	assert.False(t, math.IsInf(got, 0))
	assert.False(t, math.IsNaN(got))
	assert.Greater(t, got, 0.0)
}
