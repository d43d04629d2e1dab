package server

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"Investaur/internal/collector"
	"Investaur/internal/model"
	"Investaur/internal/notifier"
)

// BotRouter answers Telegram commands from the shared session.
func (s *State) BotRouter() *notifier.Router {
	r := notifier.NewRouter()
	r.Handle("portfolio", "", func(ctx context.Context, _ []string) string {
		return notifier.FormatPortfolio(s.PortfolioSnapshot(ctx))
	})
	r.Handle("paper", "", func(ctx context.Context, _ []string) string {
		return notifier.FormatPaper(s.PaperValuation(ctx))
	})
	r.Handle("signal", "SYMBOL", func(ctx context.Context, args []string) string {
		if len(args) == 0 {
			return "Usage: /signal SYMBOL"
		}
		a, err := s.Collector.Analyze(ctx, args[0], collector.DefaultAnalysisPeriod)
		if err != nil {
			return fmt.Sprintf("❌ %s: %v", args[0], err)
		}
		if s.watching(a.Symbol) {
			s.SetSentiment(a.Symbol, a.Signals.Sentiment)
		}
		return notifier.FormatSignalReport(a)
	})
	r.Handle("watchlist", "", func(context.Context, []string) string {
		return notifier.FormatWatchlist(s.WatchSymbols(), s.Sentiments())
	})
	r.Handle("buy", "SYMBOL SHARES", s.tradeCommand(model.ActionBuy))
	r.Handle("sell", "SYMBOL SHARES", s.tradeCommand(model.ActionSell))
	return r
}

func (s *State) tradeCommand(action model.TradeAction) notifier.Command {
	return func(ctx context.Context, args []string) string {
		if len(args) != 2 {
			return fmt.Sprintf("Usage: /%s SYMBOL SHARES", strings.ToLower(string(action)))
		}
		shares, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return "❌ shares must be a number"
		}
		res, err := s.Trade(ctx, action, args[0], shares)
		if err != nil {
			return fmt.Sprintf("❌ %v", err)
		}
		if !res.OK {
			return "❌ " + res.Message
		}
		return "✅ " + res.Message
	}
}
