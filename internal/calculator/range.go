package calculator

import (
	"math"

	"MarketScanner/internal/model"
)

// tradingDaysPerYear approximates 52 weeks of daily bars.
const tradingDaysPerYear = 252

// Calculate52WeekRange scans the most recent 252 trading days and returns the high and low.
func Calculate52WeekRange(dailyBars []model.OHLCV) (high, low float64, err error) {
	if len(dailyBars) == 0 {
		return 0, 0, ErrInsufficientData
	}
	n := len(dailyBars)
	start := n - tradingDaysPerYear
	if start < 0 {
		start = 0
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for i := start; i < n; i++ {
		h, l := dailyBars[i].High, dailyBars[i].Low
		// Close-only series carry no intraday range
		if h == 0 && l == 0 {
			h, l = dailyBars[i].Close, dailyBars[i].Close
		}
		if h > high {
			high = h
		}
		if l < low {
			low = l
		}
	}
	return high, low, nil
}

// PercentChange returns (to-from)/from in percent. A zero base yields zero.
func PercentChange(from, to float64) float64 {
	if from == 0 {
		return 0
	}
	return (to - from) * 100 / from
}

// Round rounds v to the given number of decimals.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
