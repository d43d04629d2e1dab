package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/subcommands"

	"Investaur/internal/model"
	"Investaur/internal/notifier"
	"Investaur/internal/paper"
)

type portfolioCmd struct {
	dividends bool
}

func (*portfolioCmd) Name() string     { return "portfolio" }
func (*portfolioCmd) Synopsis() string { return "value the seeded holdings" }
func (*portfolioCmd) Usage() string {
	return `investaur portfolio [-dividends]

  Values the holdings listed under portfolio.seed in the config.
`
}

func (c *portfolioCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.dividends, "dividends", false, "also project dividend income")
}

func (c *portfolioCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	defer a.log.Sync()
	l, err := a.seededLedger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	printMarkdown(notifier.MarkdownPortfolio(l.Snapshot(ctx)))
	if c.dividends {
		printMarkdown(notifier.MarkdownDividends(l.Dividends(ctx)))
	}
	return subcommands.ExitSuccess
}

type paperCmd struct{}

func (*paperCmd) Name() string     { return "paper" }
func (*paperCmd) Synopsis() string { return "replay paper trades at latest prices" }
func (*paperCmd) Usage() string {
	return `investaur paper buy|sell SYMBOL SHARES [buy|sell SYMBOL SHARES ...]

  Applies the trades in order to a fresh paper account at the latest close
  and prints the resulting valuation.
`
}
func (*paperCmd) SetFlags(*flag.FlagSet) {}

type trade struct {
	action model.TradeAction
	ticker string
	shares float64
}

func parseTrades(args []string) ([]trade, error) {
	if len(args) == 0 || len(args)%3 != 0 {
		return nil, fmt.Errorf("expected triples of action, symbol and shares, got %d arguments", len(args))
	}
	trades := make([]trade, 0, len(args)/3)
	for i := 0; i < len(args); i += 3 {
		action := model.TradeAction(strings.ToUpper(args[i]))
		if action != model.ActionBuy && action != model.ActionSell {
			return nil, fmt.Errorf("unknown action %q", args[i])
		}
		shares, err := strconv.ParseFloat(args[i+2], 64)
		if err != nil {
			return nil, fmt.Errorf("shares %q: %w", args[i+2], err)
		}
		trades = append(trades, trade{action: action, ticker: args[i+1], shares: shares})
	}
	return trades, nil
}

func (*paperCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	trades, err := parseTrades(f.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	defer a.log.Sync()

	acct := paper.NewAccount(a.provider, a.cfg.Paper.StartCash, paper.WithLogger(a.log.Named("paper")))
	status := subcommands.ExitSuccess
	for _, t := range trades {
		q, err := a.provider.LatestClose(ctx, strings.ToUpper(t.ticker))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", t.ticker, err)
			status = subcommands.ExitFailure
			continue
		}
		var res paper.Result
		if t.action == model.ActionSell {
			res = acct.Sell(t.ticker, q.Price, t.shares)
		} else {
			res = acct.Buy(t.ticker, q.Price, t.shares)
		}
		if !res.OK {
			status = subcommands.ExitFailure
		}
		fmt.Println(res.Message)
	}
	printMarkdown(notifier.MarkdownPaper(acct.PortfolioValue(ctx)))
	return status
}
