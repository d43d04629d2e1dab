package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"Investaur/internal/collector"
	"Investaur/internal/config"
	"Investaur/internal/logger"
	"Investaur/internal/portfolio"
)

// app is what every command needs: config, logger and a data provider.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	provider collector.Provider
}

func newApp() (*app, error) {
	cfg, err := config.Load(config.Path())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	var inner collector.Provider
	if cfg.Provider.Name == "mock" {
		inner = demoProvider()
	} else {
		inner = collector.NewYahooProvider(cfg.Provider.Proxy, cfg.Provider.Timeout)
	}
	p := collector.NewRetryProvider(inner, cfg.Provider.Retries, cfg.Provider.RetryDelay, log.Named("provider"))
	log.Info("data source", zap.String("provider", p.Name()))
	return &app{cfg: cfg, log: log, provider: p}, nil
}

// seededLedger builds the holding ledger from portfolio.seed.
func (a *app) seededLedger() (*portfolio.Ledger, error) {
	l := portfolio.NewLedger(a.provider, portfolio.WithLogger(a.log.Named("portfolio")))
	for _, h := range a.cfg.Portfolio.Seed {
		if _, err := l.Add(h.Ticker, h.Shares, h.AvgPrice, h.Date); err != nil {
			return nil, fmt.Errorf("seed portfolio: %w", err)
		}
	}
	return l, nil
}

// demoProvider serves generated prices so the dashboard runs offline.
func demoProvider() *collector.MockProvider {
	m := collector.NewMockProvider()
	for sym, p := range map[string]float64{
		"SPY": 560, "QQQ": 480, "DIA": 420, "IWM": 210, "GLD": 230,
		"AAPL": 225, "MSFT": 430, "NVDA": 120, "TSLA": 250, "AMZN": 185,
		"XLK": 225, "XLE": 92, "XLF": 45, "XLV": 150, "BTC-USD": 65000,
	} {
		m.Prices[sym] = p
	}
	return m
}

func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			fmt.Print(out)
			return
		}
	}
	fmt.Fprintf(os.Stderr, "render markdown: %v\n", err)
	fmt.Print(md)
}
