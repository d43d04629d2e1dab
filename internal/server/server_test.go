package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Investaur/internal/collector"
	"Investaur/internal/model"
	"Investaur/internal/paper"
	"Investaur/internal/portfolio"
	"Investaur/internal/recorder"
	"Investaur/internal/watchlist"
)

var fixedNow = time.Date(2025, 3, 14, 15, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*httptest.Server, *State, *collector.MockProvider) {
	t.Helper()
	m := collector.NewMockProvider()
	m.Prices["AAPL"] = 100
	m.Prices["MSFT"] = 400
	rec, err := recorder.NewSQLiteRecorder("", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rec.Close() })

	clock := func() time.Time { return fixedNow }
	st := NewState(m,
		portfolio.NewLedger(m, portfolio.WithClock(clock)),
		paper.NewAccount(m, 10000, paper.WithClock(clock)),
		watchlist.New("AAPL"), rec, nil)
	srv := httptest.NewServer(New(":0", st).Handler())
	t.Cleanup(srv.Close)
	return srv, st, m
}

func do(t *testing.T, method, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	if resp.StatusCode != http.StatusNoContent {
		_ = json.NewDecoder(resp.Body).Decode(&out)
	}
	return resp, out
}

func TestHealth(t *testing.T) {
	srv, _, _ := newTestServer(t)
	resp, body := do(t, http.MethodGet, srv.URL+"/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "mock", body["provider"])
}

func TestPaperBuySell(t *testing.T) {
	srv, st, _ := newTestServer(t)

	resp, body := do(t, http.MethodPost, srv.URL+"/api/paper/buy", tradeRequest{Ticker: "aapl", Shares: 10})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "Purchased 10 AAPL @ $100.00  (Cost: $1,000.00)", body["message"])

	resp, body = do(t, http.MethodPost, srv.URL+"/api/paper/buy", tradeRequest{Ticker: "MSFT", Shares: 100})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, string(paper.InsufficientFunds), body["kind"])
	assert.Equal(t, "Insufficient funds. Need $40,000.00, have $9,000.00.", body["message"])

	resp, body = do(t, http.MethodPost, srv.URL+"/api/paper/sell", tradeRequest{Ticker: "AAPL", Shares: 11})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, string(paper.InsufficientShares), body["kind"])

	resp, body = do(t, http.MethodPost, srv.URL+"/api/paper/sell", tradeRequest{Ticker: "MSFT", Shares: 1})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, string(paper.NoPosition), body["kind"])

	resp, _ = do(t, http.MethodPost, srv.URL+"/api/paper/sell", tradeRequest{Ticker: "AAPL", Shares: 10})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var cash float64
	st.WithPaper(func(a *paper.Account) { cash = a.Cash() })
	assert.InDelta(t, 10000.0, cash, 1e-9)

	trades, err := st.Recorder.Trades(recorder.AccountPaper, 10)
	require.NoError(t, err)
	assert.Len(t, trades, 2, "only successful trades are journaled")
}

func TestPaperBuy_InvalidAndUnavailable(t *testing.T) {
	srv, _, m := newTestServer(t)

	resp, body := do(t, http.MethodPost, srv.URL+"/api/paper/buy", tradeRequest{Ticker: "AAPL", Shares: -1})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, string(paper.InvalidInput), body["kind"])

	m.Fail["TSLA"] = true
	resp, body = do(t, http.MethodPost, srv.URL+"/api/paper/buy", tradeRequest{Ticker: "TSLA", Shares: 1})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "ProviderUnavailable", body["kind"])

	resp, _ = do(t, http.MethodPost, srv.URL+"/api/paper/buy", tradeRequest{Ticker: "NOPE", Shares: 1})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = do(t, http.MethodPost, srv.URL+"/api/paper/sell", tradeRequest{Ticker: "TSLA", Shares: 1})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode, "unheld sell is rejected without a quote")
	assert.Equal(t, string(paper.NoPosition), body["kind"])
	assert.Equal(t, 1, m.Calls("TSLA"), "only the earlier buy reached the provider")

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/paper/buy", bytes.NewBufferString("{"))
	r, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	r.Body.Close()
	assert.Equal(t, http.StatusBadRequest, r.StatusCode)
}

func TestPaperCashResetAndValue(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp, body := do(t, http.MethodPut, srv.URL+"/api/paper/cash", cashRequest{Cash: 5000})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Cash set to $5,000.00", body["message"])

	resp, _ = do(t, http.MethodPut, srv.URL+"/api/paper/cash", cashRequest{Cash: -5})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	do(t, http.MethodPost, srv.URL+"/api/paper/buy", tradeRequest{Ticker: "AAPL", Shares: 1})
	_, body = do(t, http.MethodGet, srv.URL+"/api/paper", nil)
	assert.InDelta(t, 5000.0, body["total"], 1e-9)
	assert.InDelta(t, -5000.0, body["pnl"], 1e-9)

	resp, _ = do(t, http.MethodPost, srv.URL+"/api/paper/reset", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_, body = do(t, http.MethodGet, srv.URL+"/api/paper", nil)
	assert.InDelta(t, 10000.0, body["cash"], 1e-9)
}

func TestPortfolioRoutes(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp, body := do(t, http.MethodPost, srv.URL+"/api/portfolio", addHoldingRequest{Ticker: "aapl", Shares: 10, AvgPrice: 80})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "AAPL", body["ticker"])
	assert.Equal(t, "2025-03-14", body["purchase_date"])

	resp, body = do(t, http.MethodPost, srv.URL+"/api/portfolio", addHoldingRequest{Ticker: "MSFT", Shares: 0, AvgPrice: 1})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, string(paper.InvalidInput), body["kind"])

	_, body = do(t, http.MethodGet, srv.URL+"/api/portfolio", nil)
	assert.InDelta(t, 1000.0, body["total_value"], 1e-9)
	assert.InDelta(t, 200.0, body["total_pnl"], 1e-9)

	resp, body = do(t, http.MethodGet, srv.URL+"/api/portfolio/history?period=1mo", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["dates"], 22)

	resp, _ = do(t, http.MethodGet, srv.URL+"/api/portfolio/history?period=7y", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, http.MethodGet, srv.URL+"/api/portfolio/dividends", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = do(t, http.MethodDelete, srv.URL+"/api/portfolio/aapl", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	_, body = do(t, http.MethodGet, srv.URL+"/api/portfolio", nil)
	assert.Empty(t, body["rows"])
}

func TestWatchlistRoutes(t *testing.T) {
	srv, st, _ := newTestServer(t)

	resp, _ := do(t, http.MethodPost, srv.URL+"/api/watchlist", symbolRequest{Symbol: "msft"})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, body := do(t, http.MethodPost, srv.URL+"/api/watchlist", symbolRequest{Symbol: "MSFT"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []any{"AAPL", "MSFT"}, body["symbols"])

	st.SetSentiment("MSFT", model.Bullish)
	resp, _ = do(t, http.MethodDelete, srv.URL+"/api/watchlist/msft", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.NotContains(t, st.Sentiments(), "MSFT")

	resp, _ = do(t, http.MethodDelete, srv.URL+"/api/watchlist/MSFT", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAnalysisRoutes(t *testing.T) {
	srv, _, m := newTestServer(t)
	m.Funds["AAPL"] = &model.Fundamentals{Symbol: "AAPL", LongName: model.Some("Apple Inc.")}

	resp, body := do(t, http.MethodGet, srv.URL+"/api/analysis/aapl?period=1y", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "AAPL", body["symbol"])
	signals := body["signals"].(map[string]any)
	assert.Len(t, signals["signals"], 9)

	resp, body = do(t, http.MethodGet, srv.URL+"/api/analysis/AAPL?period=5d", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "InsufficientData", body["kind"])

	resp, _ = do(t, http.MethodGet, srv.URL+"/api/analysis/NOPE", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = do(t, http.MethodGet, srv.URL+"/api/analysis/AAPL?period=banana", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "BadRequest", body["kind"])
	assert.Contains(t, body["message"], `unsupported period "banana"`)

	resp, body = do(t, http.MethodGet, srv.URL+"/api/fundamentals/AAPL", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Apple Inc.", body["long_name"])
	assert.Nil(t, body["beta"])
}

func TestMarketsScreenerJournal(t *testing.T) {
	srv, st, m := newTestServer(t)
	m.Prices["SPY"] = 500
	m.Prices["XLE"] = 90
	m.Prices["XLK"] = 200

	resp, body := do(t, http.MethodGet, srv.URL+"/api/markets", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["markets"], 3, "SPY plus the AAPL and MSFT quotes")
	assert.Len(t, body["sectors"], 2)

	m.Funds["AAPL"] = &model.Fundamentals{Symbol: "AAPL", TrailingPE: model.Some(30.0), MarketCap: model.Some(3e12)}
	resp, err := http.Post(srv.URL+"/api/screener", "application/json",
		bytes.NewBufferString(`{"universe":"watchlist","filters":{"cap_min":"1T"},"sort":"market_cap"}`))
	require.NoError(t, err)
	var rows []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rows))
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, rows, 1)
	assert.Equal(t, "AAPL", rows[0]["ticker"])

	resp, _ = do(t, http.MethodPost, srv.URL+"/api/screener", screenerRequest{Universe: "nasdaq"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	st.RecordPaperValuation(context.Background())
	resp, body = do(t, http.MethodGet, srv.URL+"/api/journal/paper?limit=5", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["valuations"], 1)
	resp, _ = do(t, http.MethodGet, srv.URL+"/api/journal/other", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
