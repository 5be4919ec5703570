package detector

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketScanner/internal/calculator"
	"MarketScanner/internal/config"
	"MarketScanner/internal/model"
)

func newTechnicals() *TechnicalsDetector {
	return NewTechnicalsDetector(config.Default().Technicals)
}

// rsi75Closes yields 12 gains of 1 and 2 losses of 2 over the seed window.
func rsi75Closes() []float64 {
	closes := []float64{100}
	for i := 0; i < 12; i++ {
		closes = append(closes, closes[len(closes)-1]+1)
	}
	closes = append(closes, 110, 108)
	return closes
}

func alternating(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + float64(i%2)
	}
	return out
}

func TestTechnicals_Overbought(t *testing.T) {
	ts, err := newTechnicals().Analyze("B", rsi75Closes(), nil)
	require.NoError(t, err)
	require.NotNil(t, ts.RSI14)
	assert.Equal(t, 75.0, *ts.RSI14)
	assert.Equal(t, []string{"RSI overbought (75.0)"}, ts.Signals)
	assert.Nil(t, ts.MA50, "15 closes cannot carry a 50 MA")
	assert.Nil(t, ts.MA200)
}

func TestTechnicals_Oversold(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 200 - float64(i)
	}
	ts, err := newTechnicals().Analyze("D", closes, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"RSI oversold (0.0)"}, ts.Signals)
}

func TestTechnicals_QuietSeries(t *testing.T) {
	ts, err := newTechnicals().Analyze("C", alternating(60), nil)
	require.NoError(t, err)
	require.NotNil(t, ts.RSI14)
	assert.Empty(t, ts.Signals)
	require.NotNil(t, ts.MA50)
	assert.Equal(t, 100.5, *ts.MA50)
	assert.Nil(t, ts.MA200)
}

func TestTechnicals_MovingAverages(t *testing.T) {
	// Long flat base then a rally: price is above both MAs and the 50 MA has just crossed the 200 MA.
	closes := make([]float64, 0, 205)
	for i := 0; i < 200; i++ {
		closes = append(closes, 100+float64(i%2))
	}
	for i := 0; i < 5; i++ {
		closes = append(closes, 130)
	}
	ts, err := newTechnicals().Analyze("G", closes, nil)
	require.NoError(t, err)
	require.NotNil(t, ts.Above50MA)
	require.NotNil(t, ts.Above200MA)
	assert.True(t, *ts.Above50MA)
	assert.True(t, *ts.Above200MA)
	assert.Contains(t, ts.Signals, "Above 50 & 200 MA (bullish)")
	assert.Contains(t, ts.Signals, "Golden cross forming")
}

func TestTechnicals_ShortInterest(t *testing.T) {
	d := newTechnicals()
	ts, err := d.Analyze("S", alternating(20), &model.ShortInterest{DaysToCover: 4.2, PercentOfFloat: 12.34})
	require.NoError(t, err)
	assert.Equal(t, []string{"High short interest (12.3%)"}, ts.Signals)
	require.NotNil(t, ts.ShortInterestRatio)
	assert.Equal(t, 4.2, *ts.ShortInterestRatio)

	ts, err = d.Analyze("S", alternating(20), &model.ShortInterest{PercentOfFloat: 9.9})
	require.NoError(t, err)
	assert.Empty(t, ts.Signals)
	assert.Nil(t, ts.ShortInterestRatio)
}

func TestTechnicals_Empty(t *testing.T) {
	_, err := newTechnicals().Analyze("Z", nil, nil)
	if !errors.Is(err, calculator.ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
}
