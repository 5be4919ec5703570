package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketScanner/internal/config"
	"MarketScanner/internal/model"
)

func TestRatioLabeler(t *testing.T) {
	l := NewRatioLabeler(config.Default().Report)

	tests := []struct {
		name  string
		ratio model.CallPutRatio
		want  model.Sentiment
	}{
		{"bullish", model.CallPutRatio{Ratio: 1.51}, model.SentimentBullish},
		{"at bullish edge", model.CallPutRatio{Ratio: 1.5}, model.SentimentNeutral},
		{"bearish", model.CallPutRatio{Ratio: 0.69}, model.SentimentBearish},
		{"at bearish edge", model.CallPutRatio{Ratio: 0.7}, model.SentimentNeutral},
		{"all calls", model.CallPutRatio{CallVolume: 300, Infinite: true}, model.SentimentBullish},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, l.Label(tt.ratio))
		})
	}

	custom := RatioLabeler{BullishAbove: 3, BearishBelow: 0.2}
	assert.Equal(t, model.SentimentNeutral, custom.Label(model.CallPutRatio{Ratio: 2}))
}

func bundle() *model.ScanBundle {
	rsi := 75.0
	beat := 0.75
	return &model.ScanBundle{
		RunID:    "r1",
		ScanTime: time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC),
		Tickers:  []string{"A", "B", "C"},
		MarketContext: &model.MarketContext{
			SPYPrice: 500, SPYChangePct: 1.01, QQQPrice: 400, QQQChangePct: 1.01,
			VIXLevel: 14, VIXChangePct: -6.67, Sentiment: model.RiskOn,
			SectorPerformance: map[string]float64{"SMH": 1, "IGV": -0.5},
		},
		Premarket:  []model.PremarketMover{{Symbol: "A", Price: 105, ChangePct: 5, OnWatchlist: true}},
		Momentum:   []model.MomentumResult{{Symbol: "A", Price: 105, ChangePct: 5, Signals: []string{"Price up 5.0%", "Gap up 5.0%"}}},
		Technicals: []model.TechnicalSignal{{Symbol: "B", Price: 108, RSI14: &rsi, Signals: []string{"RSI overbought (75.0)"}}},
		Options: []model.OptionSignal{{
			Symbol: "A", Expiry: time.Date(2026, 10, 23, 0, 0, 0, 0, time.UTC), Strike: decimal.NewFromInt(150),
			OptionType: model.Call, Volume: 250, OpenInterest: 100, VolumeOIRatio: 2.5,
			SignalType: model.CallSweep, Strength: model.Strong,
		}},
		CallPutRatios: map[string]model.CallPutRatio{
			"C": {Symbol: "C", CallVolume: 100, PutVolume: 200, Ratio: 0.5},
			"A": {Symbol: "A", CallVolume: 300, Infinite: true},
		},
		Earnings: []model.EarningsResult{{
			Symbol: "B", ReportDate: time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC), ReportTime: "AMC", BeatRate: &beat,
		}},
		SectorEarnings: []model.SectorEarningsEvent{{
			Date: time.Date(2026, 10, 21, 0, 0, 0, 0, time.UTC), Symbol: "NVDA", Sectors: []string{"ai_semiconductors", "ai_software"},
		}},
		Failures: []model.SourceFailure{{Symbol: "C", Source: "news", Error: "timeout"}},
	}
}

func TestDigest_Render(t *testing.T) {
	out := NewDigest(config.Default()).Render(bundle())

	for _, want := range []string{
		"MARKET SCAN | 2026-10-16 10:00 UTC",
		"Tickers: 3 | Signals: 6 | Failures: 1",
		"SPY 500.00 (+1.01%) | QQQ 400.00 (+1.01%) | VIX 14.00 (-6.67%)",
		"Sentiment: risk_on",
		"Sectors: IGV -0.50%, SMH +1.00%",
		"A $105.00 +5.00% (watchlist)",
		"A $105.00 +5.00%: Price up 5.0%; Gap up 5.0%",
		"B $108.00 RSI 75.0: RSI overbought (75.0)",
		"A 2026-10-23 150 call vol 250 / OI 100 (2.50x) call_sweep strong",
		"A inf (bullish) calls 300 / puts 0",
		"C 0.50 (bearish) calls 100 / puts 200",
		"B 2026-10-20 AMC | beat rate 75%",
		"No major macro events in the next 5 days.",
		"2026-10-21 NVDA: ai_semiconductors, ai_software",
		"C news: timeout",
	} {
		assert.Contains(t, out, want)
	}

	assert.Less(t, strings.Index(out, "A inf"), strings.Index(out, "C 0.50"), "highest ratio first")
	assert.Contains(t, out, "NEWS\n  none\n")
}

func TestRatioOrder(t *testing.T) {
	b := &model.ScanBundle{
		Tickers: []string{"A", "B", "C", "D"},
		CallPutRatios: map[string]model.CallPutRatio{
			"A": {Ratio: 0.5},
			"B": {Ratio: 2},
			"C": {CallVolume: 10, Infinite: true},
			"D": {Ratio: 2},
			"Z": {Ratio: 1},
		},
	}
	assert.Equal(t, []string{"C", "B", "D", "Z", "A"}, ratioOrder(b))
}

func TestDigest_EmptyBundle(t *testing.T) {
	out := NewDigest(config.Default()).Render(&model.ScanBundle{ScanTime: time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)})
	assert.Contains(t, out, "MARKET CONTEXT\n  unavailable\n")
	assert.Contains(t, out, "MOMENTUM\n  none\n")
	assert.NotContains(t, out, "SOURCE FAILURES")
}

func TestJSONWriter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	w := NewJSONWriter(dir, zerolog.Nop())

	path, err := w.Write(bundle())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "market-scan-2026-10-16.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "r1", decoded["run_id"])
	assert.Len(t, decoded["momentum"], 1)
	assert.True(t, strings.HasPrefix(string(data), "{\n  \""))

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}
