package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"Investaur/internal/collector"
	"Investaur/internal/model"
	"Investaur/internal/paper"
	"Investaur/internal/portfolio"
	"Investaur/internal/recorder"
	"Investaur/internal/screener"
	"Investaur/internal/watchlist"
)

// State is the shared session: one lock per ledger, held by the HTTP
// handlers, the scheduler jobs and the bot commands alike. Ledger methods
// must only be called through State or with the matching lock held.
type State struct {
	portfolioMu sync.Mutex
	Portfolio   *portfolio.Ledger

	paperMu sync.Mutex
	Paper   *paper.Account

	watchMu    sync.Mutex
	Watchlist  *watchlist.Watchlist
	sentiments map[string]model.Sentiment

	Provider  collector.Provider
	Collector *collector.Collector
	Screener  *screener.Screener
	Recorder  recorder.Recorder
	Log       *zap.Logger
}

// NewState wires a session around p. A nil recorder disables the journal.
func NewState(p collector.Provider, pf *portfolio.Ledger, acct *paper.Account, wl *watchlist.Watchlist, rec recorder.Recorder, log *zap.Logger) *State {
	if log == nil {
		log = zap.NewNop()
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &State{
		Portfolio:  pf,
		Paper:      acct,
		Watchlist:  wl,
		sentiments: map[string]model.Sentiment{},
		Provider:   p,
		Collector:  collector.NewCollector(p, log.Named("collector")),
		Screener:   screener.New(p, log.Named("screener")),
		Recorder:   rec,
		Log:        log,
	}
}

// WithPortfolio runs fn with the holding ledger locked.
func (s *State) WithPortfolio(fn func(l *portfolio.Ledger)) {
	s.portfolioMu.Lock()
	defer s.portfolioMu.Unlock()
	fn(s.Portfolio)
}

// WithPaper runs fn with the paper account locked.
func (s *State) WithPaper(fn func(a *paper.Account)) {
	s.paperMu.Lock()
	defer s.paperMu.Unlock()
	fn(s.Paper)
}

// WithWatchlist runs fn with the watchlist locked.
func (s *State) WithWatchlist(fn func(w *watchlist.Watchlist)) {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	fn(s.Watchlist)
}

// PortfolioSnapshot values the holding ledger.
func (s *State) PortfolioSnapshot(ctx context.Context) portfolio.Snapshot {
	var snap portfolio.Snapshot
	s.WithPortfolio(func(l *portfolio.Ledger) { snap = l.Snapshot(ctx) })
	return snap
}

// PortfolioTickers returns the held tickers.
func (s *State) PortfolioTickers() []string {
	var out []string
	s.WithPortfolio(func(l *portfolio.Ledger) { out = l.Tickers() })
	return out
}

// PaperValuation values the paper account.
func (s *State) PaperValuation(ctx context.Context) paper.Valuation {
	var v paper.Valuation
	s.WithPaper(func(a *paper.Account) { v = a.PortfolioValue(ctx) })
	return v
}

// WatchSymbols returns the watched symbols.
func (s *State) WatchSymbols() []string {
	var out []string
	s.WithWatchlist(func(w *watchlist.Watchlist) { out = w.Symbols() })
	return out
}

func (s *State) watching(symbol string) bool {
	var ok bool
	s.WithWatchlist(func(w *watchlist.Watchlist) { ok = w.Contains(symbol) })
	return ok
}

// Sentiments returns a copy of the last scanned sentiment per watched symbol.
func (s *State) Sentiments() map[string]model.Sentiment {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	out := make(map[string]model.Sentiment, len(s.sentiments))
	for k, v := range s.sentiments {
		out[k] = v
	}
	return out
}

// SetSentiment stores the latest label for symbol and returns the previous one.
func (s *State) SetSentiment(symbol string, sent model.Sentiment) (model.Sentiment, bool) {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	prev, ok := s.sentiments[symbol]
	s.sentiments[symbol] = sent
	return prev, ok
}

// dropSentiment forgets symbol after it leaves the watchlist.
func (s *State) dropSentiment(symbol string) {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	delete(s.sentiments, symbol)
}

// Trade is a paper buy or sell at the latest close.
func (s *State) Trade(ctx context.Context, action model.TradeAction, ticker string, shares float64) (paper.Result, error) {
	ticker = portfolio.Normalize(ticker)
	if ticker == "" {
		return paper.Result{Kind: paper.InvalidInput, Message: "Ticker is required."}, nil
	}
	if action == model.ActionSell && shares > 0 {
		var res paper.Result
		held := true
		s.WithPaper(func(a *paper.Account) { res, held = a.CanSell(ticker, shares) })
		if !held {
			s.Log.Info("paper trade rejected", zap.String("action", string(action)), zap.String("ticker", ticker),
				zap.String("kind", string(res.Kind)), zap.String("message", res.Message))
			return res, nil
		}
	}
	q, err := s.Provider.LatestClose(ctx, ticker)
	if err != nil {
		return paper.Result{}, fmt.Errorf("price %s: %w", ticker, err)
	}

	var res paper.Result
	s.WithPaper(func(a *paper.Account) {
		if action == model.ActionSell {
			res = a.Sell(ticker, q.Price, shares)
		} else {
			res = a.Buy(ticker, q.Price, shares)
		}
	})
	if !res.OK {
		s.Log.Info("paper trade rejected", zap.String("action", string(action)), zap.String("ticker", ticker),
			zap.String("kind", string(res.Kind)), zap.String("message", res.Message))
		return res, nil
	}
	s.Log.Info("paper trade", zap.String("action", string(action)), zap.String("ticker", ticker),
		zap.Float64("shares", shares), zap.Float64("price", q.Price))
	if err := s.Recorder.RecordTrade(recorder.AccountPaper, *res.Trade); err != nil {
		s.Log.Error("record trade", zap.Error(err))
	}
	return res, nil
}

// RecordPaperValuation values the paper account and appends it to the journal.
func (s *State) RecordPaperValuation(ctx context.Context) paper.Valuation {
	v := s.PaperValuation(ctx)
	s.recordValuation(recorder.ValuationEvent{
		Account: recorder.AccountPaper, Time: v.Time, Cash: v.Cash,
		Value: v.Total, PnL: v.PnL, Stale: len(v.Stale),
	})
	return v
}

// RecordPortfolioValuation values the holding ledger and appends it to the journal.
func (s *State) RecordPortfolioValuation(ctx context.Context) portfolio.Snapshot {
	snap := s.PortfolioSnapshot(ctx)
	s.recordValuation(recorder.ValuationEvent{
		Account: recorder.AccountPortfolio, Time: snap.Time,
		Value: snap.TotalValue, PnL: snap.TotalPnL, Stale: len(snap.Stale()),
	})
	return snap
}

func (s *State) recordValuation(evt recorder.ValuationEvent) {
	if evt.Time.IsZero() {
		evt.Time = time.Now()
	}
	if err := s.Recorder.RecordValuation(evt); err != nil {
		s.Log.Error("record valuation", zap.String("account", evt.Account), zap.Error(err))
	}
}
