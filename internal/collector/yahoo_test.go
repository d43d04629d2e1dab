package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chartFixture = `{"chart":{"result":[{"timestamp":[1719792000,1719878400,1719964800,1719878400],
"indicators":{"quote":[{"open":[100,101,null,103],"high":[101,102,null,104],"low":[99,100,null,102],
"close":[100.5,101.5,null,103.5],"volume":[1000,2000,null,4000]}]}}],"error":null}}`

const summaryFixture = `{"quoteSummary":{"result":[{
"price":{"longName":"Apple Inc.","shortName":"Apple","exchangeName":"NasdaqGS","regularMarketPrice":{"raw":210.5,"fmt":"210.50"},"marketCap":{"raw":3.2e12,"fmt":"3.2T"}},
"summaryDetail":{"trailingPE":{"raw":32.1,"fmt":"32.10"},"dividendRate":{"raw":1.0,"fmt":"1.00"},"dividendYield":{"raw":0.0048,"fmt":"0.48%"},
"exDividendDate":{"raw":1715299200,"fmt":"2024-05-10"},"beta":{"raw":1.24},"fiftyTwoWeekHigh":{"raw":237.2},"fiftyTwoWeekLow":{"raw":164.1},"averageVolume":{"raw":5.5e7},"forwardPE":{}},
"assetProfile":{"sector":"Technology","industry":"Consumer Electronics","country":"United States","fullTimeEmployees":161000},
"defaultKeyStatistics":{"trailingEps":{}}}],"error":null}}`

// redirect sends every request to the test server, keeping path and query.
type redirect struct{ target *url.URL }

func (r redirect) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	out.URL.Scheme = r.target.Scheme
	out.URL.Host = r.target.Host
	return http.DefaultTransport.RoundTrip(out)
}

func newTestYahoo(t *testing.T, h http.HandlerFunc) *YahooProvider {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	p := NewYahooProvider("", 0)
	p.Client.Transport = redirect{target: u}
	return p
}

func TestParseChart_SkipsNullsAndDuplicates(t *testing.T) {
	series, err := parseChart("AAPL", []byte(chartFixture))
	require.NoError(t, err)
	require.Equal(t, 2, series.Len())
	assert.Equal(t, 100.5, series.Bars[0].Close)
	// The repeated last timestamp replaces the earlier bar.
	assert.Equal(t, 103.5, series.Bars[1].Close)
	assert.NoError(t, series.Validate())
}

func TestParseChart_EmptyIsNotAnError(t *testing.T) {
	series, err := parseChart("XYZ", []byte(`{"chart":{"result":[{"timestamp":[],"indicators":{"quote":[]}}],"error":null}}`))
	require.NoError(t, err)
	assert.True(t, series.Empty())
}

func TestParseChart_APIError(t *testing.T) {
	_, err := parseChart("XYZ", []byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`))
	assert.ErrorContains(t, err, "No data found")
}

func TestParseSummary_OptionalFields(t *testing.T) {
	f, err := parseSummary("AAPL", []byte(summaryFixture))
	require.NoError(t, err)
	assert.Equal(t, "Apple Inc.", f.DisplayName())
	assert.Equal(t, "Technology", f.Sector.Or(""))
	assert.Equal(t, int64(161000), f.Employees.Or(0))
	assert.InDelta(t, 32.1, f.TrailingPE.Or(0), 1e-9)
	assert.InDelta(t, 3.2e12, f.MarketCap.Or(0), 1)
	assert.Equal(t, int64(1715299200), f.ExDividendDate.Or(0))
	assert.False(t, f.TrailingEPS.Valid, "empty raw wrapper must be absent")
	assert.Equal(t, "N/A", f.TrailingEPS.String())
}

func TestYahooHistory(t *testing.T) {
	p := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.URL.Path, "/v8/finance/chart/"))
		assert.Equal(t, "1y", r.URL.Query().Get("range"))
		_, _ = w.Write([]byte(chartFixture))
	})
	series, err := p.History(context.Background(), "AAPL", "1y", "1d")
	require.NoError(t, err)
	assert.Equal(t, 2, series.Len())
}

func TestYahooHistory_MapsSymbol(t *testing.T) {
	p := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/^GSPC", r.URL.Path)
		_, _ = w.Write([]byte(chartFixture))
	})
	_, err := p.History(context.Background(), "SPX500", "5d", "1d")
	require.NoError(t, err)
}

func TestYahooHistory_BadPeriod(t *testing.T) {
	p := NewYahooProvider("", 0)
	_, err := p.History(context.Background(), "AAPL", "7w", "1d")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.False(t, errors.Is(err, ErrProviderUnavailable))
}

func TestYahooHistory_ServerError(t *testing.T) {
	p := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})
	_, err := p.History(context.Background(), "AAPL", "1y", "1d")
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestYahooLatestClose(t *testing.T) {
	p := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(chartFixture))
	})
	q, err := p.LatestClose(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 103.5, q.Price)
}

func TestYahooFundamentals(t *testing.T) {
	p := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/v1/test/getcrumb":
			_, _ = w.Write([]byte("abc123"))
		case strings.HasPrefix(r.URL.Path, "/v10/finance/quoteSummary/"):
			assert.Equal(t, "abc123", r.URL.Query().Get("crumb"))
			_, _ = w.Write([]byte(summaryFixture))
		default:
			http.NotFound(w, r)
		}
	})
	f, err := p.Fundamentals(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "NasdaqGS", f.Exchange.Or(""))
}
