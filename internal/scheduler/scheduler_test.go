package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Investaur/internal/collector"
	"Investaur/internal/model"
	"Investaur/internal/paper"
	"Investaur/internal/portfolio"
	"Investaur/internal/recorder"
	"Investaur/internal/server"
	"Investaur/internal/watchlist"
)

type fakeNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (f *fakeNotifier) Send(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, text)
	return nil
}

func downtrend(symbol string, n int, end time.Time) *model.PriceSeries {
	bars := make([]model.OHLCV, n)
	for i := range bars {
		p := 300 - float64(i)*0.6
		bars[i] = model.OHLCV{Time: end.AddDate(0, 0, -(n - 1 - i)), Open: p, High: p * 1.01, Low: p * 0.99, Close: p, Volume: 1e6}
	}
	return &model.PriceSeries{Symbol: symbol, Bars: bars}
}

func setup(t *testing.T, symbols ...string) (*Scheduler, *collector.MockProvider, *server.State, *fakeNotifier) {
	t.Helper()
	m := collector.NewMockProvider()
	rec, err := recorder.NewSQLiteRecorder("", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rec.Close() })

	st := server.NewState(m, portfolio.NewLedger(m), paper.NewAccount(m, paper.DefaultStartCash),
		watchlist.New(symbols...), rec, nil)
	n := &fakeNotifier{}
	return NewScheduler(context.Background(), st, n, nil), m, st, n
}

func TestScanWatchlist_NotifiesOnChange(t *testing.T) {
	s, m, st, n := setup(t, "AAPL", "MSFT")
	m.Prices["AAPL"] = 200
	m.Prices["MSFT"] = 400

	assert.Empty(t, s.ScanWatchlist(), "first scan only sets the baseline")
	assert.Empty(t, n.msgs)
	before := st.Sentiments()
	require.Contains(t, before, "AAPL")
	require.NotEqual(t, model.StrongBearish, before["AAPL"])

	m.Series["AAPL"] = downtrend("AAPL", 300, m.End)
	changes := s.ScanWatchlist()
	require.Len(t, changes, 1)
	assert.Equal(t, "AAPL", changes[0].Symbol)
	assert.Equal(t, before["AAPL"], changes[0].From)
	assert.Equal(t, model.StrongBearish, changes[0].To)
	require.Len(t, n.msgs, 1)
	assert.Contains(t, n.msgs[0], "→ STRONG BEARISH")

	assert.Empty(t, s.ScanWatchlist(), "unchanged label is not re-sent")
	assert.Len(t, n.msgs, 1)
}

func TestScanWatchlist_FailureKeepsLabel(t *testing.T) {
	s, m, st, n := setup(t, "AAPL")
	m.Prices["AAPL"] = 200
	s.ScanWatchlist()
	label := st.Sentiments()["AAPL"]

	m.Fail["AAPL"] = true
	assert.Empty(t, s.ScanWatchlist())
	assert.Equal(t, label, st.Sentiments()["AAPL"])
	assert.Empty(t, n.msgs)
}

func TestRefreshJobsRecordValuations(t *testing.T) {
	s, m, st, _ := setup(t)
	m.Prices["AAPL"] = 110
	m.Fail["TSLA"] = true
	st.WithPaper(func(a *paper.Account) {
		require.True(t, a.Buy("AAPL", 100, 10).OK)
		require.True(t, a.Buy("TSLA", 50, 2).OK)
	})
	st.WithPortfolio(func(l *portfolio.Ledger) {
		_, err := l.Add("AAPL", 5, 90, "2024-01-02")
		require.NoError(t, err)
	})

	s.RefreshPaper()
	s.RefreshPortfolio()

	vals, err := st.Recorder.Valuations(recorder.AccountPaper, 10)
	require.NoError(t, err)
	require.Len(t, vals, 1)
	assert.InDelta(t, paper.DefaultStartCash-1100+1100+100, vals[0].Value, 1e-6)
	assert.Equal(t, 1, vals[0].Stale)

	vals, err = st.Recorder.Valuations(recorder.AccountPortfolio, 10)
	require.NoError(t, err)
	require.Len(t, vals, 1)
	assert.InDelta(t, 550.0, vals[0].Value, 1e-6)
}

func TestRegisterAll(t *testing.T) {
	s, _, _, _ := setup(t)
	require.NoError(t, s.RegisterAll("0 * * * * *", "30 * * * * *", "0 0 22 * * 1-5"))
	assert.Len(t, s.Cron.Entries(), 3)

	s2, _, _, _ := setup(t)
	assert.Error(t, s2.RegisterAll("every other tuesday", "30 * * * * *", "0 0 22 * * 1-5"))
}
