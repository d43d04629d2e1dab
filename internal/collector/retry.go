package collector

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"Investaur/internal/model"
)

// RetryProvider retries transient failures of the wrapped Provider with
// bounded exponential backoff. ErrNoData and request validation errors are
// returned immediately.
type RetryProvider struct {
	Inner           Provider
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Log             *zap.Logger
}

// NewRetryProvider wraps inner with maxRetries retries starting at initial.
func NewRetryProvider(inner Provider, maxRetries uint64, initial time.Duration, log *zap.Logger) *RetryProvider {
	if log == nil {
		log = zap.NewNop()
	}
	return &RetryProvider{
		Inner:           inner,
		MaxRetries:      maxRetries,
		InitialInterval: initial,
		MaxInterval:     10 * initial,
		Log:             log,
	}
}

func (r *RetryProvider) Name() string { return r.Inner.Name() }

func (r *RetryProvider) policy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if r.InitialInterval > 0 {
		b.InitialInterval = r.InitialInterval
	}
	if r.MaxInterval > 0 {
		b.MaxInterval = r.MaxInterval
	}
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, r.MaxRetries), ctx)
}

func retryable(err error) bool {
	return errors.Is(err, ErrProviderUnavailable) && !errors.Is(err, ErrNoData)
}

func do[T any](r *RetryProvider, ctx context.Context, op, symbol string, call func() (T, error)) (T, error) {
	attempt := 0
	return backoff.RetryNotifyWithData(func() (T, error) {
		attempt++
		v, err := call()
		if err != nil && !retryable(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, r.policy(ctx), func(err error, wait time.Duration) {
		r.Log.Warn("provider call failed, retrying",
			zap.String("provider", r.Inner.Name()),
			zap.String("op", op),
			zap.String("symbol", symbol),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err))
	})
}

func (r *RetryProvider) LatestClose(ctx context.Context, symbol string) (model.Quote, error) {
	return do(r, ctx, "latest", symbol, func() (model.Quote, error) {
		return r.Inner.LatestClose(ctx, symbol)
	})
}

func (r *RetryProvider) History(ctx context.Context, symbol, period, interval string) (*model.PriceSeries, error) {
	return do(r, ctx, "history", symbol, func() (*model.PriceSeries, error) {
		return r.Inner.History(ctx, symbol, period, interval)
	})
}

func (r *RetryProvider) Fundamentals(ctx context.Context, symbol string) (*model.Fundamentals, error) {
	return do(r, ctx, "fundamentals", symbol, func() (*model.Fundamentals, error) {
		return r.Inner.Fundamentals(ctx, symbol)
	})
}
