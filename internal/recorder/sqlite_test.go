package recorder

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketScanner/internal/model"
)

func sampleBundle(runID string) *model.ScanBundle {
	rsi := 75.0
	return &model.ScanBundle{
		RunID:    runID,
		ScanTime: time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC),
		Duration: 2500 * time.Millisecond,
		Tickers:  []string{"A", "B", "C"},
		MarketContext: &model.MarketContext{
			Sentiment: model.RiskOn,
		},
		Momentum:   []model.MomentumResult{{Symbol: "A", ChangePct: 5, Signals: []string{"Price up 5.0%", "Gap up 5.0%"}}},
		Technicals: []model.TechnicalSignal{{Symbol: "B", RSI14: &rsi, Signals: []string{"RSI overbought (75.0)"}}},
		Options: []model.OptionSignal{{
			Symbol: "A", Expiry: time.Date(2026, 10, 23, 0, 0, 0, 0, time.UTC),
			Strike: decimal.NewFromInt(150), OptionType: model.Call, VolumeOIRatio: 2.5, SignalType: model.CallSweep,
		}},
		Failures: []model.SourceFailure{{Symbol: "C", Source: "news", Error: "timeout"}},
	}
}

func TestSQLiteRecorder_RecordScan(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "scans.db"), zerolog.Nop())
	require.NoError(t, err)
	defer r.Close()

	ctx := context.Background()
	require.NoError(t, r.RecordScan(ctx, sampleBundle("run-1")))

	var (
		count     int
		sentiment string
		duration  int64
	)
	require.NoError(t, r.db.QueryRow(`SELECT signal_count, market_sentiment, duration_ms FROM scan_runs WHERE run_id = ?`, "run-1").
		Scan(&count, &sentiment, &duration))
	assert.Equal(t, 3, count)
	assert.Equal(t, "risk_on", sentiment)
	assert.Equal(t, int64(2500), duration)

	var rows int
	require.NoError(t, r.db.QueryRow(`SELECT COUNT(*) FROM signal_rows WHERE run_id = ?`, "run-1").Scan(&rows))
	assert.Equal(t, 3, rows)

	var detail string
	require.NoError(t, r.db.QueryRow(`SELECT detail FROM signal_rows WHERE category = 'options'`).Scan(&detail))
	assert.Equal(t, "2026-10-23 150 call call_sweep", detail)

	var failures int
	require.NoError(t, r.db.QueryRow(`SELECT COUNT(*) FROM source_failures`).Scan(&failures))
	assert.Equal(t, 1, failures)
}

func TestSQLiteRecorder_DuplicateRunIsRejected(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "scans.db"), zerolog.Nop())
	require.NoError(t, err)
	defer r.Close()

	ctx := context.Background()
	require.NoError(t, r.RecordScan(ctx, sampleBundle("dup")))
	assert.Error(t, r.RecordScan(ctx, sampleBundle("dup")))

	var rows int
	require.NoError(t, r.db.QueryRow(`SELECT COUNT(*) FROM signal_rows`).Scan(&rows))
	assert.Equal(t, 3, rows, "the failed run leaves nothing behind")
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	assert.NoError(t, r.RecordScan(context.Background(), sampleBundle("x")))
	assert.NoError(t, r.Close())
}
