package calculator

import (
	"errors"
	"math"
)

var (
	// ErrInsufficientData means the series is shorter than the lookback.
	ErrInsufficientData = errors.New("not enough data points")
	// ErrInvalidPeriod means a non-positive lookback was requested.
	ErrInvalidPeriod = errors.New("period must be positive")
)

// CalculateRSI computes the Wilder-smoothed RSI of a close series, oldest first.
// Requires at least period+1 closes. The result is rounded to one decimal.
func CalculateRSI(closes []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, ErrInvalidPeriod
	}
	if len(closes) < period+1 {
		return 0, ErrInsufficientData
	}

	// Seed with the simple mean of the first `period` changes
	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change // make positive
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	// Wilder smoothing for remaining closes
	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		return 100.0, nil
	}
	rs := avgGain / avgLoss
	rsi := 100.0 - 100.0/(1.0+rs)
	return math.Round(rsi*10) / 10, nil
}
