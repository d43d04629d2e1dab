package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Investaur/internal/model"
)

func openMemory(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder("", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestSQLiteRecorder_Valuations(t *testing.T) {
	r := openMemory(t)
	t0 := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, r.RecordValuation(ValuationEvent{
			Account: AccountPaper, Time: t0.Add(time.Duration(i) * time.Minute),
			Cash: 1000, Value: 100000 + float64(i), PnL: float64(i),
		}))
	}
	require.NoError(t, r.RecordValuation(ValuationEvent{Account: AccountPortfolio, Time: t0, Value: 5}))

	got, err := r.Valuations(AccountPaper, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 100002.0, got[0].Value)
	assert.True(t, got[0].Time.Equal(t0.Add(2*time.Minute)))
	assert.Equal(t, 100001.0, got[1].Value)
}

func TestSQLiteRecorder_Trades(t *testing.T) {
	r := openMemory(t)
	rec := model.TradeRecord{ID: "a1", Action: model.ActionBuy, Ticker: "AAPL", Shares: 10, Price: 100, Total: 1000,
		Time: time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)}
	require.NoError(t, r.RecordTrade(AccountPaper, rec))
	assert.Error(t, r.RecordTrade(AccountPaper, rec), "duplicate trade id")

	got, err := r.Trades(AccountPaper, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, rec.Ticker, got[0].Ticker)
	assert.Equal(t, model.ActionBuy, got[0].Action)
	assert.True(t, got[0].Time.Equal(rec.Time))

	none, err := r.Trades(AccountPortfolio, 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSQLiteRecorder_Signal(t *testing.T) {
	r := openMemory(t)
	assert.NoError(t, r.RecordSignal(SignalEvent{Symbol: "SPY", Price: 500, BullishPct: 66.7, Sentiment: model.Bullish}))
}

func TestSQLiteRecorder_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	r, err := NewSQLiteRecorder(path, nil)
	require.NoError(t, err)
	require.NoError(t, r.RecordValuation(ValuationEvent{Account: AccountPaper, Value: 1}))
	require.NoError(t, r.Close())

	r, err = NewSQLiteRecorder(path, nil)
	require.NoError(t, err)
	defer r.Close()
	got, err := r.Valuations(AccountPaper, 10)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	assert.NoError(t, r.RecordTrade(AccountPaper, model.TradeRecord{}))
	got, err := r.Valuations(AccountPaper, 1)
	assert.NoError(t, err)
	assert.Nil(t, got)
}
