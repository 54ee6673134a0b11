package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"tezaver/internal/models"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the database at dbPath and ensures
// the schema exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Candles table for historical OHLCV data
	CREATE TABLE IF NOT EXISTS candles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		timeframe TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		open REAL NOT NULL,
		high REAL NOT NULL,
		low REAL NOT NULL,
		close REAL NOT NULL,
		volume REAL NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(symbol, timeframe, timestamp)
	);

	-- Run summaries, one row per completed simulation
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		scenario_id TEXT NOT NULL,
		symbols TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL,
		capital_start REAL NOT NULL,
		capital_end REAL NOT NULL,
		trade_count INTEGER NOT NULL,
		win_rate REAL NOT NULL,
		max_drawdown_pct REAL NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Detector signals observed during a run
	CREATE TABLE IF NOT EXISTS signals (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		symbol TEXT NOT NULL,
		timeframe TEXT NOT NULL,
		signal_type TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		score REAL NOT NULL,
		price REAL NOT NULL,
		rally_low REAL NOT NULL,
		gain_pct REAL NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Execution reports, fills and rejections alike
	CREATE TABLE IF NOT EXISTS executions (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		symbol TEXT NOT NULL,
		action TEXT NOT NULL,
		status TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		filled_price REAL,
		filled_quantity REAL,
		commission REAL,
		pnl REAL,
		pnl_pct REAL,
		exit_reason TEXT,
		error TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Guardrail verdicts on evaluated entries
	CREATE TABLE IF NOT EXISTS guardrail_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		symbol TEXT NOT NULL,
		reason_code TEXT NOT NULL,
		allowed INTEGER NOT NULL,
		timestamp DATETIME NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Equity curve points, one row per trade per run
	CREATE TABLE IF NOT EXISTS equity_points (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		equity REAL NOT NULL,
		UNIQUE(run_id, seq)
	);

	CREATE INDEX IF NOT EXISTS idx_candles_lookup ON candles(symbol, timeframe, timestamp);
	CREATE INDEX IF NOT EXISTS idx_signals_run ON signals(run_id);
	CREATE INDEX IF NOT EXISTS idx_executions_run ON executions(run_id);
	CREATE INDEX IF NOT EXISTS idx_guardrail_run ON guardrail_events(run_id);
	CREATE INDEX IF NOT EXISTS idx_equity_run ON equity_points(run_id, seq);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveCandles upserts a batch of candles inside one transaction.
func (s *SQLiteStore) SaveCandles(ctx context.Context, symbol, timeframe string, candles []models.Candle) error {
	if len(candles) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO candles (symbol, timeframe, timestamp, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol, timeframe, timestamp) DO UPDATE SET
			open = excluded.open, high = excluded.high,
			low = excluded.low, close = excluded.close,
			volume = excluded.volume`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, c := range candles {
		if _, err := stmt.ExecContext(ctx, symbol, timeframe, c.Timestamp.UTC(),
			c.Open, c.High, c.Low, c.Close, c.Volume); err != nil {
			return fmt.Errorf("failed to insert candle: %w", err)
		}
	}
	return tx.Commit()
}

// LoadCandles returns up to limit candles in ascending timestamp
// order. limit <= 0 loads the whole series.
func (s *SQLiteStore) LoadCandles(ctx context.Context, symbol, timeframe string, limit int) ([]models.Candle, error) {
	query := `
		SELECT timestamp, open, high, low, close, volume FROM candles
		WHERE symbol = ? AND timeframe = ?
		ORDER BY timestamp ASC`
	args := []interface{}{symbol, timeframe}
	if limit > 0 {
		// The newest bars matter, so limit from the tail.
		query = `
			SELECT timestamp, open, high, low, close, volume FROM (
				SELECT timestamp, open, high, low, close, volume FROM candles
				WHERE symbol = ? AND timeframe = ?
				ORDER BY timestamp DESC LIMIT ?
			) ORDER BY timestamp ASC`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query candles: %w", err)
	}
	defer rows.Close()

	var candles []models.Candle
	for rows.Next() {
		var c models.Candle
		if err := rows.Scan(&c.Timestamp, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, fmt.Errorf("failed to scan candle: %w", err)
		}
		candles = append(candles, c)
	}
	return candles, rows.Err()
}

// SaveSignal records one detector signal for a run.
func (s *SQLiteStore) SaveSignal(ctx context.Context, runID string, signal models.MarketSignal) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO signals (run_id, symbol, timeframe, signal_type, timestamp, score, price, rally_low, gain_pct)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, signal.Symbol, signal.Timeframe, string(signal.Type), signal.Timestamp.UTC(),
		signal.Score, signal.Price, signal.RallyLow, signal.GainPct)
	if err != nil {
		return fmt.Errorf("failed to save signal: %w", err)
	}
	return nil
}

// SaveExecution records one execution report for a run.
func (s *SQLiteStore) SaveExecution(ctx context.Context, runID string, report models.ExecutionReport) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO executions
			(id, run_id, symbol, action, status, timestamp, filled_price, filled_quantity, commission, pnl, pnl_pct, exit_reason, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.ID, runID, report.Symbol, string(report.Action), string(report.Status),
		report.Timestamp.UTC(), report.FilledPrice, report.FilledQuantity,
		report.Commission, report.PnL, report.PnLPct, string(report.ExitReason), report.Err)
	if err != nil {
		return fmt.Errorf("failed to save execution: %w", err)
	}
	return nil
}

// SaveGuardrailEvent records one guardrail verdict.
func (s *SQLiteStore) SaveGuardrailEvent(ctx context.Context, event GuardrailEvent) error {
	allowed := 0
	if event.Allowed {
		allowed = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO guardrail_events (run_id, symbol, reason_code, allowed, timestamp)
		VALUES (?, ?, ?, ?, ?)`,
		event.RunID, event.Symbol, event.ReasonCode, allowed, event.Timestamp.UTC())
	if err != nil {
		return fmt.Errorf("failed to save guardrail event: %w", err)
	}
	return nil
}

// SaveEquityCurve replaces the stored curve for the run.
func (s *SQLiteStore) SaveEquityCurve(ctx context.Context, runID string, curve []float64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM equity_points WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("failed to clear equity curve: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO equity_points (run_id, seq, equity) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, equity := range curve {
		if _, err := stmt.ExecContext(ctx, runID, i, equity); err != nil {
			return fmt.Errorf("failed to insert equity point: %w", err)
		}
	}
	return tx.Commit()
}

// LoadEquityCurve returns the run's equity curve in sequence order.
func (s *SQLiteStore) LoadEquityCurve(ctx context.Context, runID string) ([]float64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT equity FROM equity_points WHERE run_id = ? ORDER BY seq ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query equity curve: %w", err)
	}
	defer rows.Close()

	var curve []float64
	for rows.Next() {
		var equity float64
		if err := rows.Scan(&equity); err != nil {
			return nil, fmt.Errorf("failed to scan equity point: %w", err)
		}
		curve = append(curve, equity)
	}
	return curve, rows.Err()
}

// SaveRun upserts a run summary.
func (s *SQLiteStore) SaveRun(ctx context.Context, run RunRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs
			(id, scenario_id, symbols, started_at, finished_at, capital_start, capital_end, trade_count, win_rate, max_drawdown_pct)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.ScenarioID, strings.Join(run.Symbols, ","),
		run.StartedAt.UTC(), run.FinishedAt.UTC(),
		run.CapitalStart, run.CapitalEnd, run.TradeCount, run.WinRate, run.MaxDrawdownPct)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// LoadRuns returns the most recent run summaries, newest first.
func (s *SQLiteStore) LoadRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, scenario_id, symbols, started_at, finished_at,
		       capital_start, capital_end, trade_count, win_rate, max_drawdown_pct
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var run RunRecord
		var symbols string
		if err := rows.Scan(&run.ID, &run.ScenarioID, &symbols, &run.StartedAt, &run.FinishedAt,
			&run.CapitalStart, &run.CapitalEnd, &run.TradeCount, &run.WinRate, &run.MaxDrawdownPct); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if symbols != "" {
			run.Symbols = strings.Split(symbols, ",")
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
