package recorder

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"MarketScanner/internal/model"
)

// SQLiteRecorder journals scans to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log zerolog.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets dashboards read while a scan writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS scan_runs (
			run_id           TEXT PRIMARY KEY,
			timestamp        INTEGER NOT NULL,
			duration_ms      INTEGER,
			tickers          TEXT,
			signal_count     INTEGER,
			failure_count    INTEGER,
			market_sentiment TEXT,
			bundle_json      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON scan_runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS signal_rows (
			id       INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id   TEXT NOT NULL,
			category TEXT NOT NULL,
			symbol   TEXT,
			detail   TEXT,
			value    REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signal_run ON signal_rows(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_signal_symbol ON signal_rows(symbol)`,

		`CREATE TABLE IF NOT EXISTS source_failures (
			id     INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			symbol TEXT,
			source TEXT,
			error  TEXT
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

type signalRow struct {
	category string
	symbol   string
	detail   string
	value    float64
}

func flattenSignals(b *model.ScanBundle) []signalRow {
	var rows []signalRow
	for _, m := range b.Momentum {
		rows = append(rows, signalRow{"momentum", m.Symbol, strings.Join(m.Signals, "; "), m.ChangePct})
	}
	for _, t := range b.Technicals {
		var rsi float64
		if t.RSI14 != nil {
			rsi = *t.RSI14
		}
		rows = append(rows, signalRow{"technicals", t.Symbol, strings.Join(t.Signals, "; "), rsi})
	}
	for _, o := range b.Options {
		detail := fmt.Sprintf("%s %s %s %s", o.Expiry.Format("2006-01-02"), o.Strike.String(), o.OptionType, o.SignalType)
		rows = append(rows, signalRow{"options", o.Symbol, detail, o.VolumeOIRatio})
	}
	for _, n := range b.News {
		rows = append(rows, signalRow{"news", n.Symbol, n.Headline, float64(n.Score)})
	}
	for _, p := range b.Premarket {
		rows = append(rows, signalRow{"premarket", p.Symbol, "", p.ChangePct})
	}
	for _, e := range b.Earnings {
		var beat float64
		if e.BeatRate != nil {
			beat = *e.BeatRate
		}
		rows = append(rows, signalRow{"earnings", e.Symbol, e.ReportDate.Format("2006-01-02"), beat})
	}
	for _, m := range b.MacroEvents {
		rows = append(rows, signalRow{"macro", "", m.Event, 0})
	}
	for _, s := range b.SectorEarnings {
		rows = append(rows, signalRow{"sector_earnings", s.Symbol, strings.Join(s.Sectors, ","), 0})
	}
	return rows
}

// RecordScan writes the run header, one row per signal and the source failures in one transaction.
func (r *SQLiteRecorder) RecordScan(ctx context.Context, b *model.ScanBundle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	payload, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("encode bundle: %w", err)
	}
	var sentiment string
	if b.MarketContext != nil {
		sentiment = string(b.MarketContext.Sentiment)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `INSERT INTO scan_runs
		(run_id, timestamp, duration_ms, tickers, signal_count, failure_count, market_sentiment, bundle_json)
		VALUES (?,?,?,?,?,?,?,?)`,
		b.RunID, b.ScanTime.Unix(), b.Duration.Milliseconds(), strings.Join(b.Tickers, ","),
		b.SignalCount(), len(b.Failures), sentiment, string(payload),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, row := range flattenSignals(b) {
		if _, err := tx.ExecContext(ctx, `INSERT INTO signal_rows
			(run_id, category, symbol, detail, value) VALUES (?,?,?,?,?)`,
			b.RunID, row.category, row.symbol, row.detail, row.value,
		); err != nil {
			return fmt.Errorf("insert signal: %w", err)
		}
	}

	for _, f := range b.Failures {
		if _, err := tx.ExecContext(ctx, `INSERT INTO source_failures
			(run_id, symbol, source, error) VALUES (?,?,?,?)`,
			b.RunID, f.Symbol, f.Source, f.Error,
		); err != nil {
			return fmt.Errorf("insert failure: %w", err)
		}
	}

	return tx.Commit()
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
