package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"Investaur/internal/collector"
	"Investaur/internal/model"
	"Investaur/internal/notifier"
	"Investaur/internal/recorder"
	"Investaur/internal/server"
)

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron     *cron.Cron
	State    *server.State
	Notifier notifier.Notifier
	Log      *zap.Logger
	Ctx      context.Context
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct{ s *zap.SugaredLogger }

func (l cronLogger) Info(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }

func (l cronLogger) Error(err error, msg string, kv ...interface{}) {
	l.s.Errorw(msg, append(kv, "error", err)...)
}

// NewScheduler creates a new Scheduler. Overlapping runs of a job are skipped.
func NewScheduler(ctx context.Context, state *server.State, n notifier.Notifier, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	if n == nil {
		n = notifier.Nop{}
	}
	cl := cronLogger{log.Sugar()}
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		State:    state,
		Notifier: n,
		Log:      log,
		Ctx:      ctx,
	}
}

// RegisterAll registers the portfolio, paper and watchlist jobs.
func (s *Scheduler) RegisterAll(portfolioCron, paperCron, watchlistCron string) error {
	if _, err := s.Cron.AddFunc(portfolioCron, s.RefreshPortfolio); err != nil {
		return fmt.Errorf("register portfolio refresh: %w", err)
	}
	if _, err := s.Cron.AddFunc(paperCron, s.RefreshPaper); err != nil {
		return fmt.Errorf("register paper refresh: %w", err)
	}
	if _, err := s.Cron.AddFunc(watchlistCron, func() { s.ScanWatchlist() }); err != nil {
		return fmt.Errorf("register watchlist scan: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Log.Info("scheduler started", zap.Int("jobs", len(s.Cron.Entries())))
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Log.Info("scheduler stopped")
}

// RefreshPortfolio values the holding ledger and journals it.
func (s *Scheduler) RefreshPortfolio() {
	snap := s.State.RecordPortfolioValuation(s.Ctx)
	s.Log.Info("portfolio refreshed",
		zap.Int("holdings", len(snap.Rows)),
		zap.Float64("value", snap.TotalValue),
		zap.Strings("stale", snap.Stale()))
}

// RefreshPaper values the paper account and journals it.
func (s *Scheduler) RefreshPaper() {
	v := s.State.RecordPaperValuation(s.Ctx)
	s.Log.Info("paper account refreshed",
		zap.Float64("value", v.Total),
		zap.Float64("pnl", v.PnL),
		zap.Strings("stale", v.Stale))
}

// Change is a watched symbol whose sentiment label moved between scans.
type Change struct {
	Symbol     string
	From, To   model.Sentiment
	BullishPct float64
}

// ScanWatchlist analyzes every watched symbol, journals the reading and
// notifies on each sentiment change. The first reading of a symbol only
// sets its baseline. Symbols that fail to analyze keep their last label.
func (s *Scheduler) ScanWatchlist() []Change {
	var changes []Change
	for _, sym := range s.State.WatchSymbols() {
		if s.Ctx.Err() != nil {
			break
		}
		a, err := s.State.Collector.Analyze(s.Ctx, sym, collector.DefaultAnalysisPeriod)
		if err != nil {
			s.Log.Warn("watchlist scan failed", zap.String("symbol", sym), zap.Error(err))
			continue
		}
		sig := a.Signals
		last, _ := a.Series.Last()
		if err := s.State.Recorder.RecordSignal(recorder.SignalEvent{
			Symbol: sym, Time: last.Time, Price: a.Report.CurrentPrice,
			BullishPct: sig.BullishPct, Sentiment: sig.Sentiment,
		}); err != nil {
			s.Log.Error("record signal", zap.String("symbol", sym), zap.Error(err))
		}

		prev, seen := s.State.SetSentiment(sym, sig.Sentiment)
		if !seen || prev == sig.Sentiment {
			continue
		}
		c := Change{Symbol: sym, From: prev, To: sig.Sentiment, BullishPct: sig.BullishPct}
		changes = append(changes, c)
		s.Log.Info("sentiment changed", zap.String("symbol", sym),
			zap.String("from", string(prev)), zap.String("to", string(sig.Sentiment)))
		s.trySend(notifier.FormatSentimentChange(c.Symbol, c.From, c.To, c.BullishPct))
	}
	return changes
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.Send(s.Ctx, text); err != nil {
		s.Log.Error("send notification", zap.Error(err))
	}
}
