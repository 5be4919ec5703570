package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketScanner/internal/model"
)

func TestRecordFetch(t *testing.T) {
	r := New()
	r.RecordFetch("finnhub", 120*time.Millisecond, nil)
	r.RecordFetch("finnhub", 80*time.Millisecond, nil)
	r.RecordFetch("tradier", time.Second, errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(r.fetches.WithLabelValues("finnhub", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.fetches.WithLabelValues("tradier", "error")))
	assert.Equal(t, 2, testutil.CollectAndCount(r.fetchLatency))
}

func TestRecordScan(t *testing.T) {
	r := New()
	b := &model.ScanBundle{
		ScanTime: time.Unix(1760600000, 0),
		Duration: 3 * time.Second,
		Momentum: []model.MomentumResult{{Symbol: "A"}},
		News:     []model.NewsSignal{{Symbol: "A"}, {Symbol: "B"}},
		Failures: []model.SourceFailure{{Source: "news"}},
	}
	r.RecordScan(b)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.scans))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.signals.WithLabelValues("momentum")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.signals.WithLabelValues("news")))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.signals.WithLabelValues("options")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.failures))
	assert.Equal(t, 1760600000.0, testutil.ToFloat64(r.lastScan))
}

func TestHandler(t *testing.T) {
	r := New()
	r.RecordFetch("yahoo", time.Millisecond, nil)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `scanner_provider_requests_total{source="yahoo",status="ok"} 1`))
}
