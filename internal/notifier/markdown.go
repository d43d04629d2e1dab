package notifier

import (
	"fmt"
	"strings"
	"time"

	"Investaur/internal/collector"
	"Investaur/internal/model"
	"Investaur/internal/paper"
	"Investaur/internal/portfolio"
	"Investaur/internal/screener"
)

func signed(v float64, format string) string {
	return fmt.Sprintf("%+"+format, v)
}

// MarkdownAnalysis renders an analysis for the terminal.
func MarkdownAnalysis(a *collector.Analysis) string {
	var b strings.Builder
	rep, sig, f := a.Report, a.Signals, a.Fundamentals

	b.WriteString(fmt.Sprintf("# %s · %s\n\n", a.Symbol, f.DisplayName()))
	b.WriteString(fmt.Sprintf("**%s** %d/%d signals bullish (%.0f%%)\n\n", sig.Sentiment, sig.BullCount, len(sig.Signals), sig.BullishPct))

	mcap := model.NA
	if v, ok := f.MarketCap.Get(); ok {
		mcap = model.BigUSD(v)
	}

	b.WriteString("| Metric | Value |\n|---|---|\n")
	rows := [][2]string{
		{"Price", fmt.Sprintf("%.2f", rep.CurrentPrice)},
		{"Period change", signed(a.PeriodChange, ".2f%%")},
		{"SMA20", fmt.Sprintf("%.2f", rep.SMA20)},
		{"SMA50", optPrice(rep.SMA50)},
		{"SMA200", optPrice(rep.SMA200)},
		{"RSI14", fmt.Sprintf("%.1f %s", rep.RSI14, rep.RSIZone)},
		{"MACD line / signal", fmt.Sprintf("%.3f / %.3f", rep.MACD.Line, rep.MACD.Signal)},
		{"Bollinger", fmt.Sprintf("%.2f / %.2f / %.2f", rep.BBLower, rep.BBMid, rep.BBUpper)},
		{"Volatility (ann.)", fmt.Sprintf("%.1f%%", rep.VolatilityAn)},
		{"Sharpe", fmt.Sprintf("%.2f", rep.Sharpe)},
		{"Momentum 1M / 3M", signed(rep.Momentum1M, ".1f%%") + " / " + signed(rep.Momentum3M, ".1f%%")},
		{"Momentum 6M / 1Y", signed(rep.Momentum6M, ".1f%%") + " / " + signed(rep.Momentum1Y, ".1f%%")},
		{"Max drawdown", fmt.Sprintf("%.1f%%", rep.MaxDrawdown)},
		{"ATR14", optPrice(rep.ATR14)},
		{"52w range", fmt.Sprintf("%.2f – %.2f (%.0f%%)", rep.Low52w, rep.High52w, rep.RangePos52w)},
		{"Market cap", mcap},
		{"P/E", f.TrailingPE.Render("%.1f")},
		{"Beta", f.Beta.Render("%.2f")},
		{"Sector", f.Sector.String()},
	}
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("| %s | %s |\n", r[0], r[1]))
	}

	b.WriteString("\n## Signals\n\n")
	for _, s := range sig.Signals {
		b.WriteString(fmt.Sprintf("- %s %s\n", check(s.Bullish), s.Name))
	}
	return b.String()
}

// MarkdownPortfolio renders a holdings snapshot.
func MarkdownPortfolio(s portfolio.Snapshot) string {
	var b strings.Builder
	b.WriteString("# Portfolio\n\n| Ticker | Shares | Avg | Price | Value | P&L | P&L % |\n|---|---|---|---|---|---|---|\n")
	for _, r := range s.Rows {
		price := model.USD(r.Price)
		if r.Stale {
			price += " (stale)"
		}
		b.WriteString(fmt.Sprintf("| %s | %.4g | %s | %s | %s | %s | %+.2f%% |\n",
			r.Ticker, r.Shares, model.USD(r.AvgPrice), price, model.USD(r.Value), model.SignedUSD(r.PnL), r.PnLPct))
	}
	b.WriteString(fmt.Sprintf("\n**Total** %s · **P&L** %s (%+.2f%%)\n", model.USD(s.TotalValue), model.SignedUSD(s.TotalPnL), s.TotalPct))
	return b.String()
}

// MarkdownPaper renders a paper account valuation.
func MarkdownPaper(v paper.Valuation) string {
	var b strings.Builder
	b.WriteString("# Paper account\n\n| Ticker | Shares | Avg | Price | Value |\n|---|---|---|---|---|\n")
	for _, p := range v.Positions {
		price := model.USD(p.Price)
		if p.Stale {
			price += " (stale)"
		}
		b.WriteString(fmt.Sprintf("| %s | %.4g | %s | %s | %s |\n", p.Ticker, p.Shares, model.USD(p.AvgPrice), price, model.USD(p.Value)))
	}
	b.WriteString(fmt.Sprintf("\nCash %s · **Total** %s · **P&L** %s (%+.2f%%)\n",
		model.USD(v.Cash), model.USD(v.Total), model.SignedUSD(v.PnL), v.PnLPct))
	return b.String()
}

// MarkdownDividends renders a dividend projection.
func MarkdownDividends(r portfolio.DividendReport) string {
	var b strings.Builder
	b.WriteString("# Dividends\n\n| Ticker | Shares | Rate | Annual | Yield | Ex-date | Frequency |\n|---|---|---|---|---|---|---|\n")
	for _, row := range r.Rows {
		annual := model.NA
		if row.AnnualIncome > 0 {
			annual = model.USD(row.AnnualIncome)
		}
		yield := model.NA
		if y, ok := row.Yield.Get(); ok && y != 0 {
			yield = fmt.Sprintf("%.2f%%", y*100)
		}
		b.WriteString(fmt.Sprintf("| %s | %.4g | %s | %s | %s | %s | %s |\n",
			row.Ticker, row.Shares, row.Rate.Render("$%.4f"), annual, yield, row.ExDate, row.Frequency))
	}
	b.WriteString(fmt.Sprintf("\nAnnual %s · Monthly %s · Weekly %s\n",
		model.USD(r.TotalAnnual), model.USD(r.MonthlyAvg), model.USD(r.WeeklyAvg)))
	if len(r.ByMonth) > 0 {
		b.WriteString("\n## Projected by month\n\n")
		for m := time.January; m <= time.December; m++ {
			if v, ok := r.ByMonth[m]; ok {
				b.WriteString(fmt.Sprintf("- %s: %s\n", m.String()[:3], model.USD(v)))
			}
		}
	}
	return b.String()
}

// MarkdownMarkets renders the market overview and sector moves.
func MarkdownMarkets(rows []collector.MarketRow, sectors []collector.SectorMove) string {
	var b strings.Builder
	b.WriteString("# Markets\n\n| Name | Symbol | Price | Change | % | Volume |\n|---|---|---|---|---|---|\n")
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("| %s | %s | %s | %+.2f | %+.2f%% | %s |\n",
			r.Name, r.Symbol, model.USD(r.Price), r.Change, r.ChangePct, model.Volume(r.Volume)))
	}
	if len(sectors) > 0 {
		b.WriteString("\n## Sectors\n\n")
		for _, s := range sectors {
			b.WriteString(fmt.Sprintf("- %s (%s): %+.2f%%\n", s.Name, s.Symbol, s.ChangePct))
		}
	}
	return b.String()
}

// MarkdownScreener renders screener results.
func MarkdownScreener(rows []screener.Row) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("# Screener · %d results\n\n| Ticker | Name | Price | P/E | EPS | Div%% | Beta | Mkt Cap | Sector |\n|---|---|---|---|---|---|---|---|---|\n", len(rows)))
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %.2f%% | %s | %s | %s |\n",
			r.Ticker, r.Name, model.USD(r.Price), r.PE.Render("%.1f"), r.EPS.Render("$%.2f"),
			r.DivPct, r.Beta.Render("%.2f"), model.BigUSD(r.MarketCap), r.Sector))
	}
	return b.String()
}
