package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// NA is the display text for an absent field.
const NA = "N/A"

// Opt is a value that the provider may not have reported.
type Opt[T any] struct {
	Value T
	Valid bool
}

// Some wraps a present value.
func Some[T any](v T) Opt[T] { return Opt[T]{Value: v, Valid: true} }

// Get returns the value and whether it is present.
func (o Opt[T]) Get() (T, bool) { return o.Value, o.Valid }

// Or returns the value, or def when absent.
func (o Opt[T]) Or(def T) T {
	if !o.Valid {
		return def
	}
	return o.Value
}

// Render renders the value with the given verb, or "N/A".
func (o Opt[T]) Render(verb string) string {
	if !o.Valid {
		return NA
	}
	return fmt.Sprintf(verb, o.Value)
}

// String renders the value with %v, or "N/A".
func (o Opt[T]) String() string { return o.Render("%v") }

// MarshalJSON encodes an absent value as null.
func (o Opt[T]) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// UnmarshalJSON decodes null as absent.
func (o *Opt[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Opt[T]{}
		return nil
	}
	if err := json.Unmarshal(data, &o.Value); err != nil {
		return err
	}
	o.Valid = true
	return nil
}

// Fundamentals is the typed company profile returned by the provider.
// Every field is optional: ETFs, crypto and thinly covered names omit most of them.
type Fundamentals struct {
	Symbol             string       `json:"symbol"`
	LongName           Opt[string]  `json:"long_name"`
	ShortName          Opt[string]  `json:"short_name"`
	Exchange           Opt[string]  `json:"exchange"`
	Sector             Opt[string]  `json:"sector"`
	Industry           Opt[string]  `json:"industry"`
	Country            Opt[string]  `json:"country"`
	Summary            Opt[string]  `json:"summary"`
	Employees          Opt[int64]   `json:"employees"`
	RegularMarketPrice Opt[float64] `json:"regular_market_price"`
	MarketCap          Opt[float64] `json:"market_cap"`
	TrailingPE         Opt[float64] `json:"trailing_pe"`
	TrailingEPS        Opt[float64] `json:"trailing_eps"`
	FiftyTwoWeekHigh   Opt[float64] `json:"fifty_two_week_high"`
	FiftyTwoWeekLow    Opt[float64] `json:"fifty_two_week_low"`
	AverageVolume      Opt[float64] `json:"average_volume"`
	DividendRate       Opt[float64] `json:"dividend_rate"`
	DividendYield      Opt[float64] `json:"dividend_yield"`   // fraction, 0.005 = 0.5%
	ExDividendDate     Opt[int64]   `json:"ex_dividend_date"` // unix seconds
	Beta               Opt[float64] `json:"beta"`
}

// DisplayName prefers the long name, then the short name, then the symbol.
func (f *Fundamentals) DisplayName() string {
	if f == nil {
		return ""
	}
	if v, ok := f.LongName.Get(); ok && v != "" {
		return v
	}
	if v, ok := f.ShortName.Get(); ok && v != "" {
		return v
	}
	return f.Symbol
}
