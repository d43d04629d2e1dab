package paper

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"Investaur/internal/collector"
	"Investaur/internal/model"
)

// DefaultStartCash is the starting balance of a new account.
const DefaultStartCash = 100_000.0

// dust below which a position counts as closed.
const dust = 1e-9

// FailureKind classifies a rejected trade.
type FailureKind string

const (
	InvalidInput       FailureKind = "InvalidInput"
	InsufficientFunds  FailureKind = "InsufficientFunds"
	NoPosition         FailureKind = "NoPosition"
	InsufficientShares FailureKind = "InsufficientShares"
)

// Result is the outcome of a ledger mutation. Failures leave the account untouched.
type Result struct {
	OK      bool               `json:"ok"`
	Kind    FailureKind        `json:"kind,omitempty"`
	Message string             `json:"message"`
	Trade   *model.TradeRecord `json:"trade,omitempty"`
}

func fail(kind FailureKind, format string, args ...any) Result {
	return Result{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Account is a simulated cash and positions ledger. It holds no locks;
// callers that share an Account across goroutines must serialize access.
type Account struct {
	provider collector.Provider
	log      *zap.Logger
	now      func() time.Time
	newID    func() string

	startCash float64
	cash      float64
	positions map[string]model.Position
	order     []string
	history   []model.TradeRecord
}

// Option configures an Account.
type Option func(*Account)

// WithClock overrides the trade timestamp clock.
func WithClock(now func() time.Time) Option {
	return func(a *Account) { a.now = now }
}

// WithLogger sets the logger for provider fallbacks.
func WithLogger(log *zap.Logger) Option {
	return func(a *Account) { a.log = log }
}

// WithIDs overrides the trade ID generator.
func WithIDs(newID func() string) Option {
	return func(a *Account) { a.newID = newID }
}

// NewAccount opens an account with startCash, valued against p.
func NewAccount(p collector.Provider, startCash float64, opts ...Option) *Account {
	if !(startCash >= 0) {
		startCash = DefaultStartCash
	}
	a := &Account{
		provider:  p,
		log:       zap.NewNop(),
		now:       time.Now,
		newID:     uuid.NewString,
		startCash: startCash,
		cash:      startCash,
		positions: map[string]model.Position{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func normalize(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

func validTrade(ticker string, price, shares float64) (Result, bool) {
	switch {
	case ticker == "":
		return fail(InvalidInput, "Ticker must not be empty."), false
	case !(shares > 0) || math.IsInf(shares, 0):
		return fail(InvalidInput, "Shares must be positive, got %.4g.", shares), false
	case !(price > 0) || math.IsInf(price, 0):
		return fail(InvalidInput, "Price must be positive, got %.4g.", price), false
	}
	return Result{}, true
}

func (a *Account) record(action model.TradeAction, ticker string, shares, price, total float64) *model.TradeRecord {
	rec := model.TradeRecord{
		ID:     a.newID(),
		Action: action,
		Ticker: ticker,
		Shares: shares,
		Price:  price,
		Total:  total,
		Time:   a.now(),
	}
	a.history = append(a.history, rec)
	return &rec
}

// Buy purchases shares of ticker at price. A rebuy of an open position adds
// the shares and replaces the stored average with price.
func (a *Account) Buy(ticker string, price, shares float64) Result {
	t := normalize(ticker)
	if res, ok := validTrade(t, price, shares); !ok {
		return res
	}
	cost := price * shares
	if cost > a.cash {
		return fail(InsufficientFunds, "Insufficient funds. Need %s, have %s.", model.USD(cost), model.USD(a.cash))
	}

	a.cash -= cost
	pos, open := a.positions[t]
	if !open {
		pos = model.Position{Ticker: t}
		a.order = append(a.order, t)
	}
	pos.Shares += shares
	pos.AvgPrice = price
	a.positions[t] = pos

	rec := a.record(model.ActionBuy, t, shares, price, cost)
	return Result{
		OK:      true,
		Message: fmt.Sprintf("Purchased %.4g %s @ $%.2f  (Cost: %s)", shares, t, price, model.USD(cost)),
		Trade:   rec,
	}
}

// Sell sells shares of ticker at price. The position is closed once no shares remain.
func (a *Account) Sell(ticker string, price, shares float64) Result {
	t := normalize(ticker)
	if res, ok := validTrade(t, price, shares); !ok {
		return res
	}
	if res, ok := a.CanSell(t, shares); !ok {
		return res
	}
	pos := a.positions[t]
	if shares > pos.Shares {
		shares = pos.Shares
	}

	proceeds := price * shares
	a.cash += proceeds
	pos.Shares -= shares
	if pos.Shares <= dust {
		a.close(t)
	} else {
		a.positions[t] = pos
	}

	rec := a.record(model.ActionSell, t, shares, price, proceeds)
	return Result{
		OK:      true,
		Message: fmt.Sprintf("Sold %.4g %s @ $%.2f  (Proceeds: %s)", shares, t, price, model.USD(proceeds)),
		Trade:   rec,
	}
}

// CanSell reports whether shares of ticker are held, within dust, without
// needing a price. The failed Result matches what Sell would return.
func (a *Account) CanSell(ticker string, shares float64) (Result, bool) {
	t := normalize(ticker)
	pos, open := a.positions[t]
	if !open {
		return fail(NoPosition, "Not enough shares. Holding 0, trying to sell %.4g.", shares), false
	}
	if shares > pos.Shares+dust {
		return fail(InsufficientShares, "Not enough shares. Holding %.4g, trying to sell %.4g.", pos.Shares, shares), false
	}
	return Result{}, true
}

func (a *Account) close(ticker string) {
	delete(a.positions, ticker)
	for i, o := range a.order {
		if o == ticker {
			a.order = append(a.order[:i], a.order[i+1:]...)
			return
		}
	}
}

// Cash returns the cash balance.
func (a *Account) Cash() float64 { return a.cash }

// StartCash returns the P&L baseline.
func (a *Account) StartCash() float64 { return a.startCash }

// Positions returns the open positions in the order they were opened.
func (a *Account) Positions() []model.Position {
	out := make([]model.Position, 0, len(a.order))
	for _, t := range a.order {
		out = append(out, a.positions[t])
	}
	return out
}

// Position returns the open position in ticker.
func (a *Account) Position(ticker string) (model.Position, bool) {
	p, ok := a.positions[normalize(ticker)]
	return p, ok
}

// History returns a copy of the trade history, oldest first.
func (a *Account) History() []model.TradeRecord {
	return append([]model.TradeRecord(nil), a.history...)
}

// Reset returns the account to its starting cash with no positions or history.
func (a *Account) Reset() {
	a.cash = a.startCash
	a.positions = map[string]model.Position{}
	a.order = nil
	a.history = nil
}

// SetCash overwrites the cash balance. Negative balances are rejected.
func (a *Account) SetCash(v float64) Result {
	if !(v >= 0) || math.IsInf(v, 0) {
		return fail(InvalidInput, "Cash must be a non-negative amount, got %.2f.", v)
	}
	a.cash = v
	return Result{OK: true, Message: fmt.Sprintf("Cash set to %s", model.USD(v))}
}

// Holding is one valued open position.
type Holding struct {
	Ticker   string  `json:"ticker"`
	Shares   float64 `json:"shares"`
	AvgPrice float64 `json:"avg_price"`
	Price    float64 `json:"price"`
	Value    float64 `json:"value"`
	Stale    bool    `json:"stale"`
}

// Valuation is the mark-to-market value of the account.
type Valuation struct {
	Cash      float64   `json:"cash"`
	Positions []Holding `json:"positions"`
	Total     float64   `json:"total"`
	PnL       float64   `json:"pnl"`
	PnLPct    float64   `json:"pnl_pct"`
	Stale     []string  `json:"stale,omitempty"`
	Time      time.Time `json:"time"`
}

// PortfolioValue is cash plus every position at its latest close. A failed
// quote values that position at its average price and lists it in Stale.
func (a *Account) PortfolioValue(ctx context.Context) Valuation {
	v := Valuation{Cash: a.cash, Total: a.cash, Positions: make([]Holding, 0, len(a.order)), Time: a.now()}
	for _, pos := range a.Positions() {
		h := Holding{Ticker: pos.Ticker, Shares: pos.Shares, AvgPrice: pos.AvgPrice, Price: pos.AvgPrice}
		q, err := a.provider.LatestClose(ctx, pos.Ticker)
		if err != nil {
			a.log.Warn("quote unavailable, valuing at cost", zap.String("ticker", pos.Ticker), zap.Error(err))
			h.Stale = true
			v.Stale = append(v.Stale, pos.Ticker)
		} else {
			h.Price = q.Price
		}
		h.Value = h.Price * h.Shares
		v.Total += h.Value
		v.Positions = append(v.Positions, h)
	}
	v.PnL, v.PnLPct = a.PnL(v.Total)
	return v
}

// PnL returns value minus the starting cash, absolute and as a percentage of it.
func (a *Account) PnL(value float64) (float64, float64) {
	pnl := value - a.startCash
	if a.startCash == 0 {
		return pnl, 0
	}
	return pnl, pnl / a.startCash * 100
}
