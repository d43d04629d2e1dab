package recorder

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"Investaur/internal/model"
)

// MemoryDSN keeps the journal for the lifetime of the process only.
const MemoryDSN = ":memory:"

// SQLiteRecorder journals to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log *zap.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
// An empty path opens an in-memory database.
func NewSQLiteRecorder(dbPath string, log *zap.Logger) (*SQLiteRecorder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if dbPath == "" {
		dbPath = MemoryDSN
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if isMemory(dbPath) {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info("sqlite recorder opened", zap.String("path", dbPath))
	return r, nil
}

func isMemory(dsn string) bool {
	return dsn == MemoryDSN || strings.Contains(dsn, "mode=memory")
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS trades (
			id        TEXT PRIMARY KEY,
			account   TEXT NOT NULL,
			timestamp INTEGER NOT NULL,
			action    TEXT NOT NULL,
			ticker    TEXT NOT NULL,
			shares    REAL,
			price     REAL,
			total     REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_account_ts ON trades(account, timestamp)`,

		`CREATE TABLE IF NOT EXISTS valuations (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			account   TEXT NOT NULL,
			timestamp INTEGER NOT NULL,
			cash      REAL,
			value     REAL,
			pnl       REAL,
			stale     INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_valuations_account_ts ON valuations(account, timestamp)`,

		`CREATE TABLE IF NOT EXISTS signals (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol      TEXT NOT NULL,
			timestamp   INTEGER NOT NULL,
			price       REAL,
			bullish_pct REAL,
			sentiment   TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_symbol_ts ON signals(symbol, timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordTrade(account string, rec model.TradeRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO trades
		(id, account, timestamp, action, ticker, shares, price, total)
		VALUES (?,?,?,?,?,?,?,?)`,
		rec.ID, account, rec.Time.UnixNano(), string(rec.Action), rec.Ticker,
		rec.Shares, rec.Price, rec.Total,
	)
	return err
}

func (r *SQLiteRecorder) RecordValuation(evt ValuationEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if evt.Time.IsZero() {
		evt.Time = time.Now()
	}
	_, err := r.db.Exec(`INSERT INTO valuations
		(account, timestamp, cash, value, pnl, stale)
		VALUES (?,?,?,?,?,?)`,
		evt.Account, evt.Time.UnixNano(), evt.Cash, evt.Value, evt.PnL, evt.Stale,
	)
	return err
}

func (r *SQLiteRecorder) RecordSignal(evt SignalEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if evt.Time.IsZero() {
		evt.Time = time.Now()
	}
	_, err := r.db.Exec(`INSERT INTO signals
		(symbol, timestamp, price, bullish_pct, sentiment)
		VALUES (?,?,?,?,?)`,
		evt.Symbol, evt.Time.UnixNano(), evt.Price, evt.BullishPct, string(evt.Sentiment),
	)
	return err
}

// Valuations returns up to limit snapshots of account, newest first.
func (r *SQLiteRecorder) Valuations(account string, limit int) ([]ValuationEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT account, timestamp, cash, value, pnl, stale
		FROM valuations WHERE account = ? ORDER BY timestamp DESC, id DESC LIMIT ?`, account, limit)
	if err != nil {
		return nil, fmt.Errorf("query valuations: %w", err)
	}
	defer rows.Close()

	var out []ValuationEvent
	for rows.Next() {
		var evt ValuationEvent
		var ts int64
		if err := rows.Scan(&evt.Account, &ts, &evt.Cash, &evt.Value, &evt.PnL, &evt.Stale); err != nil {
			return nil, fmt.Errorf("scan valuation: %w", err)
		}
		evt.Time = time.Unix(0, ts)
		out = append(out, evt)
	}
	return out, rows.Err()
}

// Trades returns up to limit trades of account, newest first.
func (r *SQLiteRecorder) Trades(account string, limit int) ([]model.TradeRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT id, timestamp, action, ticker, shares, price, total
		FROM trades WHERE account = ? ORDER BY timestamp DESC LIMIT ?`, account, limit)
	if err != nil {
		return nil, fmt.Errorf("query trades: %w", err)
	}
	defer rows.Close()

	var out []model.TradeRecord
	for rows.Next() {
		var rec model.TradeRecord
		var ts int64
		var action string
		if err := rows.Scan(&rec.ID, &ts, &action, &rec.Ticker, &rec.Shares, &rec.Price, &rec.Total); err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		rec.Time = time.Unix(0, ts)
		rec.Action = model.TradeAction(action)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info("closing sqlite recorder")
	return r.db.Close()
}
