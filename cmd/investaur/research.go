package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"Investaur/internal/collector"
	"Investaur/internal/notifier"
	"Investaur/internal/screener"
)

type analyzeCmd struct {
	period string
}

func (*analyzeCmd) Name() string     { return "analyze" }
func (*analyzeCmd) Synopsis() string { return "indicator report and signal summary of symbols" }
func (*analyzeCmd) Usage() string {
	return `investaur analyze [-period 2y] SYMBOL...
`
}

func (c *analyzeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.period, "period", collector.DefaultAnalysisPeriod, "history period (1mo, 6mo, 1y, 2y, 5y, max...)")
}

func (c *analyzeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one symbol is required")
		return subcommands.ExitUsageError
	}
	if err := collector.ValidatePeriod(c.period, "1d"); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	defer a.log.Sync()

	col := collector.NewCollector(a.provider, a.log.Named("collector"))
	status := subcommands.ExitSuccess
	for _, sym := range f.Args() {
		res, err := col.Analyze(ctx, sym, c.period)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", sym, err)
			status = subcommands.ExitFailure
			continue
		}
		printMarkdown(notifier.MarkdownAnalysis(res))
	}
	return status
}

type marketsCmd struct{}

func (*marketsCmd) Name() string           { return "markets" }
func (*marketsCmd) Synopsis() string       { return "market overview and sector moves" }
func (*marketsCmd) Usage() string          { return "investaur markets\n" }
func (*marketsCmd) SetFlags(*flag.FlagSet) {}

func (*marketsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	defer a.log.Sync()
	log := a.log.Named("markets")
	rows := collector.MarketOverview(ctx, a.provider, collector.MarketSymbols, log)
	sectors := collector.SectorMoves(ctx, a.provider, collector.SectorSymbols, log)
	printMarkdown(notifier.MarkdownMarkets(rows, sectors))
	return subcommands.ExitSuccess
}

type screenCmd struct {
	universe string
	sortBy   string
	filters  screener.Filters
}

func (*screenCmd) Name() string     { return "screen" }
func (*screenCmd) Synopsis() string { return "filter a universe by fundamentals" }
func (*screenCmd) Usage() string {
	return `investaur screen [-universe sp100|tech|crypto|portfolio|watchlist] [filters] [-sort column]
`
}

func (c *screenCmd) SetFlags(f *flag.FlagSet) {
	d := screener.Defaults
	f.StringVar(&c.universe, "universe", screener.UniverseSP100, "symbol universe")
	f.StringVar(&c.sortBy, "sort", screener.ColMarketCap, "sort column")
	f.Float64Var(&c.filters.PEMin, "pe-min", d.PEMin, "minimum trailing P/E")
	f.Float64Var(&c.filters.PEMax, "pe-max", d.PEMax, "maximum trailing P/E")
	f.Float64Var(&c.filters.DivMinPct, "div-min", d.DivMinPct, "minimum dividend yield, percent")
	f.Float64Var(&c.filters.BetaMax, "beta-max", d.BetaMax, "maximum beta")
	f.StringVar(&c.filters.CapMin, "cap-min", d.CapMin, "minimum market cap, e.g. 10B")
}

func (c *screenCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	defer a.log.Sync()

	var held []string
	for _, h := range a.cfg.Portfolio.Seed {
		held = append(held, h.Ticker)
	}
	symbols, err := screener.Symbols(c.universe, held, a.cfg.Watchlist)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	rows, err := screener.New(a.provider, a.log.Named("screener")).Run(ctx, symbols, c.filters, c.universe == screener.UniverseCrypto)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := screener.Sort(rows, c.sortBy); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	printMarkdown(notifier.MarkdownScreener(rows))
	return subcommands.ExitSuccess
}
