package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Investaur/internal/model"
)

func TestParseTrades(t *testing.T) {
	got, err := parseTrades([]string{"buy", "AAPL", "10", "SELL", "aapl", "2.5"})
	require.NoError(t, err)
	assert.Equal(t, []trade{
		{action: model.ActionBuy, ticker: "AAPL", shares: 10},
		{action: model.ActionSell, ticker: "aapl", shares: 2.5},
	}, got)

	for _, args := range [][]string{
		nil,
		{"buy", "AAPL"},
		{"hold", "AAPL", "1"},
		{"buy", "AAPL", "ten"},
	} {
		_, err := parseTrades(args)
		assert.Error(t, err, args)
	}
}
