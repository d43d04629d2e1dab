package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/PaesslerAG/jsonpath"

	"Investaur/internal/model"
)

const (
	yahooChartURL   = "https://query1.finance.yahoo.com/v8/finance/chart/%s?interval=%s&range=%s"
	yahooSummaryURL = "https://query2.finance.yahoo.com/v10/finance/quoteSummary/%s?modules=price,summaryDetail,assetProfile,defaultKeyStatistics&crumb=%s"
	yahooCookieURL  = "https://fc.yahoo.com"
	yahooCrumbURL   = "https://query1.finance.yahoo.com/v1/test/getcrumb"
	yahooUserAgent  = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

// YahooProvider implements Provider using the Yahoo Finance public API.
type YahooProvider struct {
	Client    *http.Client
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker

	mu    sync.Mutex
	crumb string
}

// NewYahooProvider creates a new Yahoo Finance provider with optional proxy support.
func NewYahooProvider(proxyURL string, timeout time.Duration) *YahooProvider {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	jar, _ := cookiejar.New(nil)
	return &YahooProvider{
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
			Jar:       jar,
		},
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
		},
	}
}

func (p *YahooProvider) Name() string { return "yahoo" }

func (p *YahooProvider) yahooSymbol(symbol string) string {
	if mapped, ok := p.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []interface{} `json:"open"`
					High   []interface{} `json:"high"`
					Low    []interface{} `json:"low"`
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func toFloat(v interface{}) float64 {
	if v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}

func at(vals []interface{}, i int) interface{} {
	if i < len(vals) {
		return vals[i]
	}
	return nil
}

func (p *YahooProvider) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", yahooUserAgent)

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d, body: %.200s", resp.StatusCode, string(body))
	}
	return body, nil
}

// parseChart decodes a chart response. Null bars (holidays, halted sessions) are skipped.
func parseChart(symbol string, body []byte) (*model.PriceSeries, error) {
	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("api error: %s", chart.Chart.Error.Description)
	}

	series := &model.PriceSeries{Symbol: symbol, FetchedAt: time.Now()}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return series, nil
	}
	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return series, nil
	}
	quote := result.Indicators.Quote[0]

	bars := make([]model.OHLCV, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		c := toFloat(at(quote.Close, i))
		if c <= 0 {
			continue
		}
		bars = append(bars, model.OHLCV{
			Time:   time.Unix(ts, 0).UTC(),
			Open:   toFloat(at(quote.Open, i)),
			High:   toFloat(at(quote.High, i)),
			Low:    toFloat(at(quote.Low, i)),
			Close:  c,
			Volume: toFloat(at(quote.Volume, i)),
		})
	}
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })

	// Intraday refreshes can repeat the last timestamp.
	deduped := bars[:0]
	for _, b := range bars {
		if n := len(deduped); n > 0 && !b.Time.After(deduped[n-1].Time) {
			deduped[n-1] = b
			continue
		}
		deduped = append(deduped, b)
	}
	series.Bars = deduped
	return series, nil
}

// History fetches bars for the period (Yahoo range) at the interval.
func (p *YahooProvider) History(ctx context.Context, symbol, period, interval string) (*model.PriceSeries, error) {
	if err := ValidatePeriod(period, interval); err != nil {
		return nil, err
	}
	u := fmt.Sprintf(yahooChartURL, url.PathEscape(p.yahooSymbol(symbol)), interval, period)
	body, err := p.get(ctx, u)
	if err != nil {
		return nil, unavailable("yahoo history", symbol, err)
	}
	series, err := parseChart(symbol, body)
	if err != nil {
		return nil, unavailable("yahoo history", symbol, err)
	}
	return series, nil
}

// LatestClose returns the most recent daily close.
func (p *YahooProvider) LatestClose(ctx context.Context, symbol string) (model.Quote, error) {
	series, err := p.History(ctx, symbol, "5d", "1d")
	if err != nil {
		return model.Quote{}, err
	}
	last, ok := series.Last()
	if !ok {
		return model.Quote{}, unavailable("yahoo latest", symbol, ErrNoData)
	}
	return model.Quote{Symbol: symbol, Price: last.Close, Time: last.Time}, nil
}

// ensureCrumb primes the cookie jar and fetches the anti-CSRF crumb quoteSummary requires.
func (p *YahooProvider) ensureCrumb(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.crumb != "" {
		return p.crumb, nil
	}

	// fc.yahoo.com answers 404 but sets the session cookie.
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, yahooCookieURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", yahooUserAgent)
	if resp, err := p.Client.Do(req); err == nil {
		resp.Body.Close()
	}

	body, err := p.get(ctx, yahooCrumbURL)
	if err != nil {
		return "", fmt.Errorf("crumb: %w", err)
	}
	crumb := strings.TrimSpace(string(body))
	if crumb == "" || strings.Contains(crumb, "<") {
		return "", errors.New("crumb: empty or malformed")
	}
	p.crumb = crumb
	return crumb, nil
}

func (p *YahooProvider) resetCrumb() {
	p.mu.Lock()
	p.crumb = ""
	p.mu.Unlock()
}

// Fundamentals fetches the company profile. Fields the API omits stay absent.
func (p *YahooProvider) Fundamentals(ctx context.Context, symbol string) (*model.Fundamentals, error) {
	crumb, err := p.ensureCrumb(ctx)
	if err != nil {
		return nil, unavailable("yahoo fundamentals", symbol, err)
	}
	u := fmt.Sprintf(yahooSummaryURL, url.PathEscape(p.yahooSymbol(symbol)), url.QueryEscape(crumb))
	body, err := p.get(ctx, u)
	if err != nil {
		if strings.Contains(err.Error(), "status 401") {
			p.resetCrumb()
		}
		return nil, unavailable("yahoo fundamentals", symbol, err)
	}
	f, err := parseSummary(symbol, body)
	if err != nil {
		return nil, unavailable("yahoo fundamentals", symbol, err)
	}
	return f, nil
}

func parseSummary(symbol string, body []byte) (*model.Fundamentals, error) {
	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if desc, ok := lookupString(doc, "$.quoteSummary.error.description").Get(); ok {
		return nil, fmt.Errorf("api error: %s", desc)
	}
	if _, err := jsonpath.Get("$.quoteSummary.result[0]", doc); err != nil {
		return nil, ErrNoData
	}

	const r = "$.quoteSummary.result[0]."
	f := &model.Fundamentals{
		Symbol:             symbol,
		LongName:           lookupString(doc, r+"price.longName"),
		ShortName:          lookupString(doc, r+"price.shortName"),
		Exchange:           lookupString(doc, r+"price.exchangeName"),
		Sector:             lookupString(doc, r+"assetProfile.sector"),
		Industry:           lookupString(doc, r+"assetProfile.industry"),
		Country:            lookupString(doc, r+"assetProfile.country"),
		Summary:            lookupString(doc, r+"assetProfile.longBusinessSummary"),
		RegularMarketPrice: lookupRaw(doc, r+"price.regularMarketPrice"),
		MarketCap:          firstOf(lookupRaw(doc, r+"price.marketCap"), lookupRaw(doc, r+"summaryDetail.marketCap")),
		TrailingPE:         lookupRaw(doc, r+"summaryDetail.trailingPE"),
		TrailingEPS:        lookupRaw(doc, r+"defaultKeyStatistics.trailingEps"),
		FiftyTwoWeekHigh:   lookupRaw(doc, r+"summaryDetail.fiftyTwoWeekHigh"),
		FiftyTwoWeekLow:    lookupRaw(doc, r+"summaryDetail.fiftyTwoWeekLow"),
		AverageVolume:      lookupRaw(doc, r+"summaryDetail.averageVolume"),
		DividendRate:       lookupRaw(doc, r+"summaryDetail.dividendRate"),
		DividendYield:      lookupRaw(doc, r+"summaryDetail.dividendYield"),
		Beta:               lookupRaw(doc, r+"summaryDetail.beta"),
	}
	if v, ok := lookupNumber(doc, r+"assetProfile.fullTimeEmployees").Get(); ok {
		f.Employees = model.Some(int64(v))
	}
	if v, ok := lookupRaw(doc, r+"summaryDetail.exDividendDate").Get(); ok {
		f.ExDividendDate = model.Some(int64(v))
	}
	return f, nil
}

// lookupRaw reads Yahoo's {"raw": n, "fmt": "..."} number wrapper. An empty
// wrapper ({}) is how the API reports a missing value.
func lookupRaw(doc interface{}, path string) model.Opt[float64] {
	return lookupNumber(doc, path+".raw")
}

func lookupNumber(doc interface{}, path string) model.Opt[float64] {
	v, err := jsonpath.Get(path, doc)
	if err != nil {
		return model.Opt[float64]{}
	}
	if n, ok := v.(float64); ok {
		return model.Some(n)
	}
	return model.Opt[float64]{}
}

func lookupString(doc interface{}, path string) model.Opt[string] {
	v, err := jsonpath.Get(path, doc)
	if err != nil {
		return model.Opt[string]{}
	}
	if s, ok := v.(string); ok && s != "" {
		return model.Some(s)
	}
	return model.Opt[string]{}
}

func firstOf(opts ...model.Opt[float64]) model.Opt[float64] {
	for _, o := range opts {
		if o.Valid {
			return o
		}
	}
	return model.Opt[float64]{}
}
