package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUSD(t *testing.T) {
	assert.Equal(t, "$99,000.00", USD(99000))
	assert.Equal(t, "$0.10", USD(0.1))
	assert.Equal(t, "-$5.25", USD(-5.25))
	assert.Equal(t, "+$100.00", SignedUSD(100))
	assert.Equal(t, "$0.00", SignedUSD(0))
}

func TestBigUSD(t *testing.T) {
	assert.Equal(t, "$3.20T", BigUSD(3.2e12))
	assert.Equal(t, "$450.00B", BigUSD(4.5e11))
	assert.Equal(t, "$12.50M", BigUSD(1.25e7))
	assert.Equal(t, "$950,000", BigUSD(950000))
	assert.Equal(t, "1,234,567", Volume(1234567))
}

func TestOpt(t *testing.T) {
	var pe Opt[float64]
	assert.Equal(t, NA, pe.String())
	assert.Equal(t, 7.0, pe.Or(7))

	pe = Some(21.456)
	assert.Equal(t, "21.46", pe.Render("%.2f"))

	data, err := json.Marshal(struct {
		A Opt[float64] `json:"a"`
		B Opt[string]  `json:"b"`
	}{A: Some(1.5)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1.5,"b":null}`, string(data))

	var back struct {
		A Opt[float64] `json:"a"`
		B Opt[string]  `json:"b"`
	}
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.A.Valid)
	assert.False(t, back.B.Valid)
}

func TestFundamentalsDisplayName(t *testing.T) {
	f := &Fundamentals{Symbol: "BTC-USD"}
	assert.Equal(t, "BTC-USD", f.DisplayName())
	f.ShortName = Some("Bitcoin USD")
	assert.Equal(t, "Bitcoin USD", f.DisplayName())
	f.LongName = Some("Bitcoin")
	assert.Equal(t, "Bitcoin", f.DisplayName())
}

func TestPriceSeriesValidate(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	ok := &PriceSeries{Bars: []OHLCV{{Time: t0, Close: 1}, {Time: t0.Add(time.Hour), Close: 2}}}
	assert.NoError(t, ok.Validate())

	tests := []struct {
		name string
		bars []OHLCV
	}{
		{"non-increasing time", []OHLCV{{Time: t0, Close: 1}, {Time: t0, Close: 2}}},
		{"zero close", []OHLCV{{Time: t0, Close: 0}}},
	}
	for _, tt := range tests {
		s := &PriceSeries{Bars: tt.bars}
		assert.Error(t, s.Validate(), tt.name)
	}
	var nilSeries *PriceSeries
	assert.Error(t, nilSeries.Validate())
	assert.True(t, nilSeries.Empty())
}

func TestPriceSeriesHasRange(t *testing.T) {
	s := &PriceSeries{Bars: []OHLCV{{High: 2, Low: 1, Close: 1.5}}}
	assert.True(t, s.HasRange())
	s.Bars = append(s.Bars, OHLCV{Close: 1})
	assert.False(t, s.HasRange())
}
