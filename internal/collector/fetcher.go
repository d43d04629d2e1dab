package collector

import (
	"context"
	"errors"
	"fmt"

	"Investaur/internal/model"
)

// ErrProviderUnavailable wraps every network or API failure of a Provider.
// Callers are expected to fall back (stored cost basis, skipped row) rather than abort.
var ErrProviderUnavailable = errors.New("provider unavailable")

// ErrNoData is reported when the provider answered but had nothing for the symbol.
var ErrNoData = errors.New("no data")

// ErrInvalidRequest marks a request rejected before any network call, such as
// an unsupported period.
var ErrInvalidRequest = errors.New("invalid request")

// Provider is the quote source the ledgers and the analysis depend on.
type Provider interface {
	LatestClose(ctx context.Context, symbol string) (model.Quote, error)
	History(ctx context.Context, symbol, period, interval string) (*model.PriceSeries, error)
	Fundamentals(ctx context.Context, symbol string) (*model.Fundamentals, error)
	Name() string
}

// Periods the history call accepts.
var validPeriods = map[string]bool{
	"1d": true, "2d": true, "5d": true, "1mo": true, "3mo": true, "6mo": true,
	"1y": true, "2y": true, "5y": true, "10y": true, "ytd": true, "max": true,
}

// Intervals the history call accepts.
var validIntervals = map[string]bool{
	"1m": true, "5m": true, "15m": true, "30m": true, "1h": true,
	"1d": true, "1wk": true, "1mo": true,
}

// ValidatePeriod checks a period/interval pair before it reaches the network.
func ValidatePeriod(period, interval string) error {
	if !validPeriods[period] {
		return fmt.Errorf("%w: unsupported period %q", ErrInvalidRequest, period)
	}
	if !validIntervals[interval] {
		return fmt.Errorf("%w: unsupported interval %q", ErrInvalidRequest, interval)
	}
	return nil
}

func unavailable(op, symbol string, err error) error {
	return fmt.Errorf("%s %s: %w: %w", op, symbol, ErrProviderUnavailable, err)
}
