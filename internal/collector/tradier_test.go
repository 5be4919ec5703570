package collector

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketScanner/internal/model"
)

func newTestTradier(t *testing.T, bodies map[string]string) *TradierClient {
	srv, _ := routes(t, bodies)
	return NewTradierClient("tok", WithBaseURL(srv.URL), WithRateLimit(1000, 10))
}

func TestTradier_Expirations(t *testing.T) {
	c := newTestTradier(t, map[string]string{
		"/markets/options/expirations": `{"expirations":{"date":["2026-10-16","bad","2026-10-23"]}}`,
	})
	got, err := c.FetchExpirations(context.Background(), "SPY")
	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 10, 23, 0, 0, 0, 0, time.UTC),
	}, got)
}

func TestTradier_SingleExpiration(t *testing.T) {
	c := newTestTradier(t, map[string]string{
		"/markets/options/expirations": `{"expirations":{"date":"2026-10-16"}}`,
	})
	got, err := c.FetchExpirations(context.Background(), "XYZ")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestTradier_NoExpirations(t *testing.T) {
	c := newTestTradier(t, map[string]string{
		"/markets/options/expirations": `{"expirations":null}`,
	})
	_, err := c.FetchExpirations(context.Background(), "XYZ")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestTradier_Chain(t *testing.T) {
	c := newTestTradier(t, map[string]string{
		"/markets/options/chains": `{"options":{"option":[
			{"strike":150.5,"volume":250,"open_interest":100,"last":2.1,"option_type":"call","greeks":{"mid_iv":0.45}},
			{"strike":150.5,"volume":80,"open_interest":400,"last":null,"option_type":"put","greeks":null},
			{"strike":"oops","volume":1,"open_interest":1,"option_type":"call"},
			{"strike":0,"volume":1,"open_interest":1,"option_type":"call"},
			{"strike":160,"volume":1,"open_interest":1,"option_type":"straddle"}
		]}}`,
	})
	expiry := time.Date(2026, 10, 23, 0, 0, 0, 0, time.UTC)
	chain, err := c.FetchChain(context.Background(), "NVDA", expiry)
	require.NoError(t, err)
	require.Len(t, chain.Calls, 1)
	require.Len(t, chain.Puts, 1)

	call := chain.Calls[0]
	assert.True(t, call.Strike.Equal(decimal.RequireFromString("150.5")))
	assert.Equal(t, int64(250), call.Volume)
	assert.Equal(t, 0.45, call.ImpliedVolatility)
	assert.Equal(t, 2.1, call.LastPrice)
	assert.Equal(t, 0.0, chain.Puts[0].ImpliedVolatility)
	assert.Equal(t, expiry, chain.Expiry)
}

func TestTradier_SingleOptionObject(t *testing.T) {
	c := newTestTradier(t, map[string]string{
		"/markets/options/chains": `{"options":{"option":{"strike":10,"volume":5,"open_interest":5,"option_type":"put"}}}`,
	})
	chain, err := c.FetchChain(context.Background(), "X", time.Now())
	require.NoError(t, err)
	assert.Empty(t, chain.Calls)
	assert.Len(t, chain.Puts, 1)
}

func TestTradier_History(t *testing.T) {
	c := newTestTradier(t, map[string]string{
		"/markets/history": `{"history":{"day":[
			{"date":"2026-10-14","open":10,"high":11,"low":9,"close":10.5,"volume":1000},
			{"date":"2026-10-13","open":9,"high":10,"low":8,"close":9.5,"volume":900},
			{"date":"2026-10-15","open":10.5,"high":12,"low":10,"close":11.5,"volume":1100}
		]}}`,
	})
	bars, err := c.FetchDailyBars(context.Background(), "X", 2)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, []float64{10.5, 11.5}, model.ExtractCloses(bars))
}
