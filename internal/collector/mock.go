package collector

import (
	"context"
	"errors"
	"sync"
	"time"

	"Investaur/internal/model"
)

var errMockOutage = errors.New("mock outage")

// MockProvider returns controllable fixed data for development and testing.
// Symbols listed in Fail always answer with ErrProviderUnavailable; Flaky
// fails the first n calls of a symbol.
type MockProvider struct {
	mu     sync.Mutex
	Prices map[string]float64
	Series map[string]*model.PriceSeries
	Funds  map[string]*model.Fundamentals
	Fail   map[string]bool
	Flaky  map[string]int
	End    time.Time // last bar date of generated series
	calls  map[string]int
}

// NewMockProvider creates an empty MockProvider.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Prices: map[string]float64{},
		Series: map[string]*model.PriceSeries{},
		Funds:  map[string]*model.Fundamentals{},
		Fail:   map[string]bool{},
		Flaky:  map[string]int{},
		End:    time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		calls:  map[string]int{},
	}
}

func (m *MockProvider) Name() string { return "mock" }

// Calls returns how many requests were made for symbol.
func (m *MockProvider) Calls(symbol string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[symbol]
}

func (m *MockProvider) hit(symbol string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[symbol]++
	if m.Flaky[symbol] > 0 {
		m.Flaky[symbol]--
		return true
	}
	return m.Fail[symbol]
}

func (m *MockProvider) LatestClose(_ context.Context, symbol string) (model.Quote, error) {
	if m.hit(symbol) {
		return model.Quote{}, unavailable("mock latest", symbol, errMockOutage)
	}
	if p, ok := m.Prices[symbol]; ok {
		return model.Quote{Symbol: symbol, Price: p, Time: m.End}, nil
	}
	if s, ok := m.Series[symbol]; ok {
		if last, ok := s.Last(); ok {
			return model.Quote{Symbol: symbol, Price: last.Close, Time: last.Time}, nil
		}
	}
	return model.Quote{}, unavailable("mock latest", symbol, ErrNoData)
}

func (m *MockProvider) History(_ context.Context, symbol, period, _ string) (*model.PriceSeries, error) {
	if m.hit(symbol) {
		return nil, unavailable("mock history", symbol, errMockOutage)
	}
	if s, ok := m.Series[symbol]; ok {
		return s, nil
	}
	if p, ok := m.Prices[symbol]; ok {
		return &model.PriceSeries{Symbol: symbol, Bars: GenerateBars(p, periodDays(period), m.End)}, nil
	}
	return &model.PriceSeries{Symbol: symbol}, nil
}

func (m *MockProvider) Fundamentals(_ context.Context, symbol string) (*model.Fundamentals, error) {
	if m.hit(symbol) {
		return nil, unavailable("mock fundamentals", symbol, errMockOutage)
	}
	if f, ok := m.Funds[symbol]; ok {
		return f, nil
	}
	return &model.Fundamentals{Symbol: symbol}, nil
}

// GenerateBars builds count daily bars ending at end, drifting gently around basePrice.
func GenerateBars(basePrice float64, count int, end time.Time) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   end.AddDate(0, 0, -(count - 1 - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

func periodDays(period string) int {
	switch period {
	case "1d":
		return 1
	case "2d":
		return 2
	case "5d":
		return 5
	case "1mo":
		return 22
	case "3mo":
		return 63
	case "6mo":
		return 126
	case "1y", "ytd":
		return 252
	case "2y":
		return 504
	default:
		return 1260
	}
}
