package model

// Sentiment is the discretized reading of the bullish percentage.
type Sentiment string

const (
	StrongBullish Sentiment = "STRONG BULLISH"
	Bullish       Sentiment = "BULLISH"
	Neutral       Sentiment = "NEUTRAL"
	Bearish       Sentiment = "BEARISH"
	StrongBearish Sentiment = "STRONG BEARISH"
)

// Signal is one named boolean technical signal.
type Signal struct {
	Name    string `json:"name"`
	Bullish bool   `json:"bullish"`
}

// SignalSet is the technical signal breakdown of one price snapshot.
type SignalSet struct {
	Signals    []Signal  `json:"signals"`
	BullCount  int       `json:"bull_count"`
	BullishPct float64   `json:"bullish_pct"`
	Sentiment  Sentiment `json:"sentiment"`
}

// Lookup returns the named signal's value.
func (s SignalSet) Lookup(name string) (bool, bool) {
	for _, sig := range s.Signals {
		if sig.Name == name {
			return sig.Bullish, true
		}
	}
	return false, false
}
