package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vixChart = `{"chart":{"result":[{
	"meta":{"regularMarketPrice":18.4,"chartPreviousClose":16,"regularMarketVolume":0,"regularMarketTime":1760600000},
	"timestamp":[1760400000,1760486400,1760572800],
	"indicators":{"quote":[{
		"open":[15.5,null,16.5],
		"high":[16.2,null,18.9],
		"low":[15.1,null,16.2],
		"close":[16.0,null,18.4],
		"volume":[0,null,0]
	}]}
}],"error":null}}`

func TestYahoo_DailyBarsSkipsNullRows(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		assert.Equal(t, "Mozilla/5.0", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(vixChart))
	}))
	defer srv.Close()

	y := NewYahooFetcher(WithBaseURL(srv.URL), WithRateLimit(1000, 10))
	bars, err := y.FetchDailyBars(context.Background(), "VIX", 300)
	require.NoError(t, err)
	assert.Equal(t, "/v8/finance/chart/^VIX", path)
	require.Len(t, bars, 2)
	assert.Equal(t, 16.0, bars[0].Close)
	assert.Equal(t, 18.4, bars[1].Close)
	assert.True(t, bars[0].Time.Before(bars[1].Time))
}

func TestYahoo_Quote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(vixChart))
	}))
	defer srv.Close()

	y := NewYahooFetcher(WithBaseURL(srv.URL), WithRateLimit(1000, 10))
	q, err := y.FetchQuote(context.Background(), "^VIX")
	require.NoError(t, err)
	assert.Equal(t, 18.4, q.Price)
	assert.Equal(t, 16.0, q.PrevClose)
	assert.Equal(t, 16.5, q.Open)
	assert.InDelta(t, 15.0, q.PercentChange(), 1e-9)
}

func TestYahoo_ChartError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	}))
	defer srv.Close()

	y := NewYahooFetcher(WithBaseURL(srv.URL), WithRateLimit(1000, 10))
	_, err := y.FetchDailyBars(context.Background(), "NOPE", 30)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delisted")
}
