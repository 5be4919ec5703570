package detector

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketScanner/internal/config"
	"MarketScanner/internal/model"
)

func newOptions() *OptionsDetector {
	return NewOptionsDetector(config.Default().Options)
}

func leg(strike string, vol, oi int64) model.OptionLeg {
	return model.OptionLeg{Strike: decimal.RequireFromString(strike), Volume: vol, OpenInterest: oi}
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestScanChain_Classification(t *testing.T) {
	d := newOptions()
	expiry := day("2026-10-23")

	strong := leg("150", 250, 100)
	strong.ImpliedVolatility = 0.4537
	strong.LastPrice = 2.15

	legs := []model.OptionLeg{
		strong,
		leg("155", 150, 100), // 1.5 -> moderate
		leg("160", 99, 50),   // below min volume
		leg("165", 500, 0),   // no open interest
		leg("170", 120, 200), // 0.6 -> not unusual
		leg("0", 500, 100),   // bad strike
	}
	got := d.ScanChain("NVDA", expiry, legs, model.Call)
	require.Len(t, got, 2)

	assert.Equal(t, model.CallSweep, got[0].SignalType)
	assert.Equal(t, model.Strong, got[0].Strength)
	assert.Equal(t, 2.5, got[0].VolumeOIRatio)
	require.NotNil(t, got[0].ImpliedVolatility)
	assert.Equal(t, 45.4, *got[0].ImpliedVolatility)
	require.NotNil(t, got[0].LastPrice)
	assert.Equal(t, 2.15, *got[0].LastPrice)
	assert.True(t, got[0].Strike.Equal(decimal.NewFromInt(150)))

	assert.Equal(t, model.UnusualVolume, got[1].SignalType)
	assert.Equal(t, model.Moderate, got[1].Strength)
	assert.Nil(t, got[1].ImpliedVolatility)
	assert.Nil(t, got[1].LastPrice)
}

func TestScanChain_PutSweepAndRounding(t *testing.T) {
	got := newOptions().ScanChain("SPY", day("2026-10-23"), []model.OptionLeg{leg("500.5", 700, 300)}, model.Put)
	require.Len(t, got, 1)
	assert.Equal(t, model.PutSweep, got[0].SignalType)
	assert.Equal(t, 2.33, got[0].VolumeOIRatio)
}

func TestNearTermExpiries(t *testing.T) {
	d := newOptions()
	now := time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)
	expiries := []time.Time{
		day("2026-10-16"), day("2026-10-23"), day("2026-11-15"),
		day("2026-11-16"), day("2026-11-13"), day("2026-10-30"),
	}
	got := d.NearTermExpiries(expiries, now)
	assert.Equal(t, []time.Time{day("2026-10-16"), day("2026-10-23"), day("2026-11-15"), day("2026-11-13")}, got)

	assert.Equal(t, expiries[:2], d.RatioExpiries(expiries))
	assert.Len(t, d.RatioExpiries(expiries[:1]), 1)
}

func TestCallPutRatio(t *testing.T) {
	chain := func(calls, puts int64) model.OptionChain {
		return model.OptionChain{
			Calls: []model.OptionLeg{leg("10", calls, 1)},
			Puts:  []model.OptionLeg{leg("10", puts, 1)},
		}
	}

	r, ok := CallPutRatio("A", []model.OptionChain{chain(200, 100), chain(100, 100)})
	require.True(t, ok)
	assert.Equal(t, 1.5, r.Ratio)
	assert.False(t, r.Infinite)

	r, ok = CallPutRatio("B", []model.OptionChain{chain(300, 0)})
	require.True(t, ok)
	assert.True(t, r.Infinite)
	assert.True(t, math.IsInf(r.Value(), 1))

	_, ok = CallPutRatio("C", []model.OptionChain{chain(0, 0)})
	assert.False(t, ok)
	_, ok = CallPutRatio("D", nil)
	assert.False(t, ok)
}

func TestRankAndGroupOptions(t *testing.T) {
	sigs := []model.OptionSignal{
		{Symbol: "A", VolumeOIRatio: 1.2},
		{Symbol: "A", VolumeOIRatio: 4.0},
		{Symbol: "B", VolumeOIRatio: 3.0},
		{Symbol: "A", VolumeOIRatio: 2.0},
		{Symbol: "A", VolumeOIRatio: 1.1},
	}
	RankOptions(sigs)
	assert.Equal(t, 4.0, sigs[0].VolumeOIRatio)
	assert.Equal(t, 1.1, sigs[4].VolumeOIRatio)

	grouped := GroupOptions(sigs, 3)
	require.Len(t, grouped["A"], 3)
	assert.Equal(t, []float64{4.0, 2.0, 1.2}, []float64{
		grouped["A"][0].VolumeOIRatio, grouped["A"][1].VolumeOIRatio, grouped["A"][2].VolumeOIRatio,
	})
	assert.Len(t, grouped["B"], 1)
}
