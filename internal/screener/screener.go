package screener

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"Investaur/internal/collector"
	"Investaur/internal/model"
)

// Universe names.
const (
	UniverseSP100     = "sp100"
	UniverseTech      = "tech"
	UniverseCrypto    = "crypto"
	UniversePortfolio = "portfolio"
	UniverseWatchlist = "watchlist"
)

// SP100 is the large-cap universe.
var SP100 = []string{
	"AAPL", "MSFT", "AMZN", "NVDA", "GOOGL", "META", "TSLA", "UNH", "XOM",
	"JPM", "JNJ", "V", "PG", "HD", "MA", "CVX", "ABBV", "MRK", "PEP", "AVGO",
	"KO", "COST", "WMT", "MCD", "CSCO", "ABT", "DHR", "TMO", "ACN", "NEE",
	"DIS", "NFLX", "ADBE", "CRM", "ORCL", "INTC", "AMD", "IBM", "TXN", "QCOM",
}

// TechGiants is the mega-cap technology universe.
var TechGiants = []string{"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA", "META", "TSLA", "NFLX", "ADBE"}

// Crypto is the crypto universe. P/E and dividend filters do not apply to it.
var Crypto = []string{"BTC-USD", "ETH-USD", "SOL-USD", "DOGE-USD", "XRP-USD", "ADA-USD"}

// Symbols resolves a universe name. portfolio and watchlist come from the caller.
func Symbols(universe string, portfolio, watchlist []string) ([]string, error) {
	switch strings.ToLower(universe) {
	case "", UniverseSP100:
		return append([]string(nil), SP100...), nil
	case UniverseTech:
		return append([]string(nil), TechGiants...), nil
	case UniverseCrypto:
		return append([]string(nil), Crypto...), nil
	case UniversePortfolio:
		return append([]string(nil), portfolio...), nil
	case UniverseWatchlist:
		return append([]string(nil), watchlist...), nil
	}
	return nil, fmt.Errorf("unknown universe %q", universe)
}

// Filters bound the screen. Zero values are replaced by Defaults.
type Filters struct {
	PEMin     float64 `json:"pe_min" yaml:"pe_min"`
	PEMax     float64 `json:"pe_max" yaml:"pe_max"`
	DivMinPct float64 `json:"div_min" yaml:"div_min"`
	BetaMax   float64 `json:"beta_max" yaml:"beta_max"`
	CapMin    string  `json:"cap_min" yaml:"cap_min"`
}

// Defaults are the unconstrained filters.
var Defaults = Filters{PEMin: 0, PEMax: 999, DivMinPct: 0, BetaMax: 10, CapMin: "0"}

func (f Filters) withDefaults() Filters {
	if f.PEMax == 0 {
		f.PEMax = Defaults.PEMax
	}
	if f.BetaMax == 0 {
		f.BetaMax = Defaults.BetaMax
	}
	if f.CapMin == "" {
		f.CapMin = Defaults.CapMin
	}
	return f
}

var nonNumeric = regexp.MustCompile(`[^\d.]`)

// ParseMarketCap reads "1B", "500M", "2T" or a plain number.
func ParseMarketCap(s string) (float64, error) {
	u := strings.ToUpper(strings.TrimSpace(s))
	mult := 1.0
	switch {
	case strings.Contains(u, "T"):
		mult = 1e12
	case strings.Contains(u, "B"):
		mult = 1e9
	case strings.Contains(u, "M"):
		mult = 1e6
	}
	digits := nonNumeric.ReplaceAllString(u, "")
	if digits == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0, fmt.Errorf("parse market cap %q: %w", s, err)
	}
	return v * mult, nil
}

// Row is one symbol that passed the screen.
type Row struct {
	Ticker    string             `json:"ticker"`
	Name      string             `json:"name"`
	Price     float64            `json:"price"`
	PE        model.Opt[float64] `json:"pe"`
	EPS       model.Opt[float64] `json:"eps"`
	DivPct    float64            `json:"div_pct"`
	Beta      model.Opt[float64] `json:"beta"`
	MarketCap float64            `json:"market_cap"`
	Sector    model.Opt[string]  `json:"sector"`
}

// Screener runs fundamentals filters over a symbol universe.
type Screener struct {
	Provider collector.Provider
	Log      *zap.Logger
}

// New creates a Screener.
func New(p collector.Provider, log *zap.Logger) *Screener {
	if log == nil {
		log = zap.NewNop()
	}
	return &Screener{Provider: p, Log: log}
}

// Run screens symbols. crypto disables the P/E and dividend filters. A symbol
// without recent prices, or whose fundamentals fail, is skipped. Missing P/E
// passes; missing beta and market cap count as zero.
func (s *Screener) Run(ctx context.Context, symbols []string, f Filters, crypto bool) ([]Row, error) {
	f = f.withDefaults()
	capMin, err := ParseMarketCap(f.CapMin)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(symbols))
	for _, sym := range symbols {
		if err := ctx.Err(); err != nil {
			return rows, err
		}
		series, err := s.Provider.History(ctx, sym, "5d", "1d")
		if err != nil {
			s.Log.Warn("screener: history unavailable", zap.String("symbol", sym), zap.Error(err))
			continue
		}
		last, ok := series.Last()
		if !ok {
			continue
		}
		info, err := s.Provider.Fundamentals(ctx, sym)
		if err != nil {
			s.Log.Warn("screener: fundamentals unavailable", zap.String("symbol", sym), zap.Error(err))
			continue
		}

		if pe, ok := info.TrailingPE.Get(); ok && !crypto && (pe < f.PEMin || pe > f.PEMax) {
			continue
		}
		divPct := info.DividendYield.Or(0) * 100
		if !crypto && divPct < f.DivMinPct {
			continue
		}
		if info.Beta.Or(0) > f.BetaMax {
			continue
		}
		mcap := info.MarketCap.Or(0)
		if mcap < capMin {
			continue
		}

		name := info.ShortName.Or(info.LongName.Or(sym))
		rows = append(rows, Row{
			Ticker:    sym,
			Name:      truncate(name, 25),
			Price:     last.Close,
			PE:        info.TrailingPE,
			EPS:       info.TrailingEPS,
			DivPct:    divPct,
			Beta:      info.Beta,
			MarketCap: mcap,
			Sector:    info.Sector,
		})
	}
	return rows, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Sortable columns.
const (
	ColTicker    = "ticker"
	ColName      = "name"
	ColPrice     = "price"
	ColPE        = "pe"
	ColEPS       = "eps"
	ColDiv       = "div"
	ColBeta      = "beta"
	ColMarketCap = "market_cap"
	ColSector    = "sector"
)

// Sort orders rows in place by column. Numeric columns sort descending, text
// columns ascending; missing values always sort last.
func Sort(rows []Row, column string) error {
	num := func(get func(Row) model.Opt[float64]) func(i, j int) bool {
		return func(i, j int) bool {
			a, aok := get(rows[i]).Get()
			b, bok := get(rows[j]).Get()
			if aok != bok {
				return aok
			}
			return a > b
		}
	}
	var less func(i, j int) bool
	switch column {
	case ColTicker:
		less = func(i, j int) bool { return rows[i].Ticker < rows[j].Ticker }
	case ColName:
		less = func(i, j int) bool { return rows[i].Name < rows[j].Name }
	case ColPrice:
		less = num(func(r Row) model.Opt[float64] { return model.Some(r.Price) })
	case ColPE:
		less = num(func(r Row) model.Opt[float64] { return r.PE })
	case ColEPS:
		less = num(func(r Row) model.Opt[float64] { return r.EPS })
	case ColDiv:
		less = num(func(r Row) model.Opt[float64] { return model.Some(r.DivPct) })
	case ColBeta:
		less = num(func(r Row) model.Opt[float64] { return r.Beta })
	case ColMarketCap:
		less = num(func(r Row) model.Opt[float64] { return model.Some(r.MarketCap) })
	case ColSector:
		less = func(i, j int) bool {
			a, aok := rows[i].Sector.Get()
			b, bok := rows[j].Sector.Get()
			if aok != bok {
				return aok
			}
			return a < b
		}
	default:
		return fmt.Errorf("unknown sort column %q", column)
	}
	sort.SliceStable(rows, less)
	return nil
}
