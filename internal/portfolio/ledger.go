package portfolio

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"Investaur/internal/collector"
	"Investaur/internal/model"
)

// DateLayout is the format of Holding.PurchaseDate.
const DateLayout = "2006-01-02"

// ErrInvalidInput is returned when a mutation is rejected before touching state.
var ErrInvalidInput = errors.New("invalid input")

// Ledger maps tickers to cost-basis lots. It holds no locks; callers that
// share a Ledger across goroutines must serialize access.
type Ledger struct {
	provider collector.Provider
	log      *zap.Logger
	now      func() time.Time

	holdings map[string]model.Holding
	order    []string
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the clock used for default purchase dates.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithLogger sets the logger for provider fallbacks.
func WithLogger(log *zap.Logger) Option {
	return func(l *Ledger) { l.log = log }
}

// NewLedger creates an empty Ledger valued against p.
func NewLedger(p collector.Provider, opts ...Option) *Ledger {
	l := &Ledger{
		provider: p,
		log:      zap.NewNop(),
		now:      time.Now,
		holdings: map[string]model.Holding{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Normalize trims and upper-cases a ticker.
func Normalize(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// Add upserts the lot for ticker, replacing any existing one. An empty date
// defaults to today.
func (l *Ledger) Add(ticker string, shares, avgPrice float64, date string) (model.Holding, error) {
	t := Normalize(ticker)
	switch {
	case t == "":
		return model.Holding{}, fmt.Errorf("add holding: empty ticker: %w", ErrInvalidInput)
	case !(shares > 0):
		return model.Holding{}, fmt.Errorf("add holding %s: shares %v must be positive: %w", t, shares, ErrInvalidInput)
	case !(avgPrice >= 0):
		return model.Holding{}, fmt.Errorf("add holding %s: average price %v must not be negative: %w", t, avgPrice, ErrInvalidInput)
	}
	if date == "" {
		date = l.now().Format(DateLayout)
	}

	if _, ok := l.holdings[t]; !ok {
		l.order = append(l.order, t)
	}
	h := model.Holding{Ticker: t, Shares: shares, AvgPrice: avgPrice, PurchaseDate: date}
	l.holdings[t] = h
	return h, nil
}

// Remove deletes the lot for ticker. Absent tickers are ignored.
func (l *Ledger) Remove(ticker string) {
	t := Normalize(ticker)
	if _, ok := l.holdings[t]; !ok {
		return
	}
	delete(l.holdings, t)
	for i, o := range l.order {
		if o == t {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
}

// Holdings returns the lots in insertion order.
func (l *Ledger) Holdings() []model.Holding {
	out := make([]model.Holding, 0, len(l.order))
	for _, t := range l.order {
		out = append(out, l.holdings[t])
	}
	return out
}

// Get returns the lot for ticker.
func (l *Ledger) Get(ticker string) (model.Holding, bool) {
	h, ok := l.holdings[Normalize(ticker)]
	return h, ok
}

// Len returns the number of lots.
func (l *Ledger) Len() int { return len(l.holdings) }

// Tickers returns the held tickers in insertion order.
func (l *Ledger) Tickers() []string {
	return append([]string(nil), l.order...)
}

// Row is one valued holding.
type Row struct {
	Ticker   string  `json:"ticker"`
	Shares   float64 `json:"shares"`
	AvgPrice float64 `json:"avg_price"`
	Price    float64 `json:"price"`
	Value    float64 `json:"value"`
	PnL      float64 `json:"pnl"`
	PnLPct   float64 `json:"pnl_pct"`
	Stale    bool    `json:"stale"`
	Error    string  `json:"error,omitempty"`
}

// Snapshot is the mark-to-market view of the ledger.
type Snapshot struct {
	Rows       []Row     `json:"rows"`
	TotalValue float64   `json:"total_value"`
	TotalCost  float64   `json:"total_cost"`
	TotalPnL   float64   `json:"total_pnl"`
	TotalPct   float64   `json:"total_pnl_pct"`
	Time       time.Time `json:"time"`
}

// Stale returns the tickers valued at cost because their quote failed.
func (s Snapshot) Stale() []string {
	var out []string
	for _, r := range s.Rows {
		if r.Stale {
			out = append(out, r.Ticker)
		}
	}
	return out
}

func pct(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den * 100
}

// Snapshot values every lot at its latest close. A failed quote values the
// lot at its average cost and marks the row stale.
func (l *Ledger) Snapshot(ctx context.Context) Snapshot {
	snap := Snapshot{Rows: make([]Row, 0, len(l.order)), Time: l.now()}
	for _, h := range l.Holdings() {
		row := Row{Ticker: h.Ticker, Shares: h.Shares, AvgPrice: h.AvgPrice, Price: h.AvgPrice}
		q, err := l.provider.LatestClose(ctx, h.Ticker)
		if err != nil {
			l.log.Warn("quote unavailable, valuing at cost", zap.String("ticker", h.Ticker), zap.Error(err))
			row.Stale = true
			row.Error = err.Error()
		} else {
			row.Price = q.Price
		}
		cost := h.CostBasis()
		row.Value = row.Price * h.Shares
		row.PnL = row.Value - cost
		row.PnLPct = pct(row.PnL, cost)

		snap.TotalValue += row.Value
		snap.TotalCost += cost
		snap.Rows = append(snap.Rows, row)
	}
	snap.TotalPnL = snap.TotalValue - snap.TotalCost
	snap.TotalPct = pct(snap.TotalPnL, snap.TotalCost)
	return snap
}

// HistoricalValues sums close × shares across lots on the dates every
// contributing lot has data for. A lot with no data, or whose dates share
// nothing with the lots before it, is left out. Returns nil, nil when the
// ledger is empty or nothing could be fetched.
func (l *Ledger) HistoricalValues(ctx context.Context, period string) ([]time.Time, []float64) {
	if len(l.order) == 0 {
		return nil, nil
	}

	var totals map[string]float64
	days := map[string]time.Time{}
	for _, h := range l.Holdings() {
		series, err := l.provider.History(ctx, h.Ticker, period, "1d")
		if err != nil {
			l.log.Warn("history unavailable, skipping holding", zap.String("ticker", h.Ticker), zap.Error(err))
			continue
		}
		if series.Empty() {
			continue
		}

		values := make(map[string]float64, series.Len())
		for _, b := range series.Bars {
			t := b.Time.UTC()
			key := t.Format(DateLayout)
			values[key] = b.Close * h.Shares
			if _, ok := days[key]; !ok {
				days[key] = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			}
		}

		if totals == nil {
			totals = values
			continue
		}
		common := map[string]float64{}
		for key, sum := range totals {
			if v, ok := values[key]; ok {
				common[key] = sum + v
			}
		}
		if len(common) == 0 {
			continue
		}
		totals = common
	}
	if len(totals) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(totals))
	for key := range totals {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	dates := make([]time.Time, len(keys))
	values := make([]float64, len(keys))
	for i, key := range keys {
		dates[i] = days[key]
		values[i] = totals[key]
	}
	return dates, values
}
