package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"Investaur/internal/collector"
	"Investaur/internal/model"
	"Investaur/internal/paper"
	"Investaur/internal/portfolio"
)

func sentimentIcon(s model.Sentiment) string {
	switch s {
	case model.StrongBullish, model.Bullish:
		return "🟢"
	case model.Neutral:
		return "🟡"
	default:
		return "🔴"
	}
}

func check(ok bool) string {
	if ok {
		return "✓"
	}
	return "✗"
}

func optPrice(p *float64) string {
	if p == nil {
		return model.NA
	}
	return fmt.Sprintf("%.2f", *p)
}

// FormatSignalReport formats a symbol analysis into a Telegram message.
func FormatSignalReport(a *collector.Analysis) string {
	var b strings.Builder
	rep, sig := a.Report, a.Signals

	b.WriteString(fmt.Sprintf("📊 <b>%s</b> %s | %s\n\n",
		html.EscapeString(a.Symbol), html.EscapeString(a.Fundamentals.DisplayName()), time.Now().Format("2006-01-02")))

	b.WriteString(fmt.Sprintf("Price: %.2f (%+.2f%% over period)\n", rep.CurrentPrice, a.PeriodChange))
	b.WriteString(fmt.Sprintf("SMA20: %.2f | SMA50: %s | SMA200: %s\n", rep.SMA20, optPrice(rep.SMA50), optPrice(rep.SMA200)))
	b.WriteString(fmt.Sprintf("RSI14: %.1f (%s)\n", rep.RSI14, rep.RSIZone))
	b.WriteString(fmt.Sprintf("MACD: %.3f / signal %.3f\n", rep.MACD.Line, rep.MACD.Signal))
	b.WriteString(fmt.Sprintf("Bollinger: %.2f – %.2f – %.2f\n", rep.BBLower, rep.BBMid, rep.BBUpper))
	b.WriteString(fmt.Sprintf("Vol: %.1f%% | Sharpe: %.2f | MaxDD: %.1f%%\n\n", rep.VolatilityAn, rep.Sharpe, rep.MaxDrawdown))

	b.WriteString("📈 <b>Signals:</b>\n")
	for _, s := range sig.Signals {
		b.WriteString(fmt.Sprintf("  %s %s\n", check(s.Bullish), html.EscapeString(s.Name)))
	}
	b.WriteString("  ─────────────────\n")
	b.WriteString(fmt.Sprintf("%s <b>%s</b> %d/%d bullish (%.0f%%)\n",
		sentimentIcon(sig.Sentiment), sig.Sentiment, sig.BullCount, len(sig.Signals), sig.BullishPct))
	return b.String()
}

// FormatPortfolio formats a holdings snapshot.
func FormatPortfolio(s portfolio.Snapshot) string {
	var b strings.Builder
	b.WriteString("💼 <b>Portfolio</b>\n\n")
	if len(s.Rows) == 0 {
		b.WriteString("No holdings.\n")
		return b.String()
	}
	for _, r := range s.Rows {
		stale := ""
		if r.Stale {
			stale = " ⚠️"
		}
		b.WriteString(fmt.Sprintf("%s %.4g @ %s → %s (%s, %+.2f%%)%s\n",
			r.Ticker, r.Shares, model.USD(r.Price), model.USD(r.Value), model.SignedUSD(r.PnL), r.PnLPct, stale))
	}
	b.WriteString(fmt.Sprintf("\nTotal: %s | P&amp;L: %s (%+.2f%%)\n", model.USD(s.TotalValue), model.SignedUSD(s.TotalPnL), s.TotalPct))
	return b.String()
}

// FormatPaper formats a paper account valuation.
func FormatPaper(v paper.Valuation) string {
	var b strings.Builder
	b.WriteString("🧪 <b>Paper account</b>\n\n")
	b.WriteString(fmt.Sprintf("Cash: %s\n", model.USD(v.Cash)))
	for _, p := range v.Positions {
		stale := ""
		if p.Stale {
			stale = " ⚠️"
		}
		b.WriteString(fmt.Sprintf("%s %.4g @ %s = %s%s\n", p.Ticker, p.Shares, model.USD(p.Price), model.USD(p.Value), stale))
	}
	b.WriteString(fmt.Sprintf("\nTotal: %s | P&amp;L: %s (%+.2f%%)\n", model.USD(v.Total), model.SignedUSD(v.PnL), v.PnLPct))
	return b.String()
}

// FormatWatchlist formats the watched symbols with their latest sentiment.
func FormatWatchlist(symbols []string, sentiments map[string]model.Sentiment) string {
	var b strings.Builder
	b.WriteString("👀 <b>Watchlist</b>\n\n")
	if len(symbols) == 0 {
		b.WriteString("Empty.\n")
		return b.String()
	}
	for _, s := range symbols {
		if sent, ok := sentiments[s]; ok {
			b.WriteString(fmt.Sprintf("%s %s %s\n", sentimentIcon(sent), s, sent))
		} else {
			b.WriteString(fmt.Sprintf("⚪ %s\n", s))
		}
	}
	return b.String()
}

// FormatSentimentChange formats an alert for a watched symbol whose label moved.
func FormatSentimentChange(symbol string, from, to model.Sentiment, pct float64) string {
	return fmt.Sprintf("%s <b>%s</b> sentiment changed: %s → %s (%.0f%% bullish)",
		sentimentIcon(to), html.EscapeString(symbol), from, to, pct)
}
