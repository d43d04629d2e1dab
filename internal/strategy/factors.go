package strategy

import (
	"Investaur/internal/calculator"
	"Investaur/internal/model"
)

// Signal names, in display order.
const (
	SigAboveSMA20  = "Price > SMA20"
	SigAboveSMA50  = "Price > SMA50"
	SigAboveSMA200 = "Price > SMA200"
	SigNotOB       = "RSI < 70 (not OB)"
	SigNotOS       = "RSI > 30 (not OS)"
	SigMACDBullish = "MACD Bullish"
	SigAboveBBMid  = "Price above BB Mid"
	SigMomentum1M  = "1M Momentum +"
	SigMomentum3M  = "3M Momentum +"
)

// SignalNames lists the nine signals in the order BuildSignalSet emits them.
var SignalNames = []string{
	SigAboveSMA20, SigAboveSMA50, SigAboveSMA200,
	SigNotOB, SigNotOS, SigMACDBullish,
	SigAboveBBMid, SigMomentum1M, SigMomentum3M,
}

// aboveSMA is false when the series is shorter than the window.
func aboveSMA(closes []float64, window int) bool {
	sma, err := calculator.SMA(closes, window)
	if err != nil {
		return false
	}
	return closes[len(closes)-1] > sma
}

func macdBullish(closes []float64) bool {
	line, sig, _ := calculator.DefaultMACD(closes).Last()
	return line > sig
}

func aboveBollingerMid(closes []float64) bool {
	bb, err := calculator.Bollinger(closes, bollingerWindow, bollingerK)
	if err != nil {
		return false
	}
	return closes[len(closes)-1] > bb.Mid
}

// BuildSignalSet evaluates the nine technical signals on closes. An empty
// series yields every signal false.
func BuildSignalSet(closes []float64) model.SignalSet {
	values := make([]bool, len(SignalNames))
	if len(closes) > 0 {
		rsi := calculator.RSI(closes, rsiWindow)
		values = []bool{
			aboveSMA(closes, 20),
			aboveSMA(closes, 50),
			aboveSMA(closes, 200),
			rsi < 70,
			rsi > 30,
			macdBullish(closes),
			aboveBollingerMid(closes),
			calculator.Momentum(closes, calculator.Lookback1M) > 0,
			calculator.Momentum(closes, calculator.Lookback3M) > 0,
		}
	}

	set := model.SignalSet{Signals: make([]model.Signal, len(SignalNames))}
	for i, name := range SignalNames {
		set.Signals[i] = model.Signal{Name: name, Bullish: values[i]}
		if values[i] {
			set.BullCount++
		}
	}
	set.BullishPct = float64(set.BullCount) / float64(len(SignalNames)) * 100
	set.Sentiment = Sentiment(set.BullishPct)
	return set
}
