package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaxDrawdown(t *testing.T) {
	tests := []struct {
		name   string
		prices []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"recovering dip", []float64{100, 80, 120}, -20},
		{"non-decreasing", []float64{1, 1, 2, 3, 3, 4}, 0},
		{"deepest after new peak", []float64{100, 90, 200, 100, 150}, -50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MaxDrawdown(tt.prices)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.LessOrEqual(t, got, 0.0)
		})
	}
}
