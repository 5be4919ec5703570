package calculator

// Crossover is the moving-average cross state of a series.
type Crossover string

const (
	CrossNone   Crossover = "none"
	CrossGolden Crossover = "golden"
	CrossDeath  Crossover = "death"
)

// DefaultCrossoverLag is how many closes back the "prior" averages are taken.
const DefaultCrossoverLag = 5

// CalculateSMA computes the simple moving average of the last `period` prices.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, ErrInvalidPeriod
	}
	if len(prices) < period {
		return 0, ErrInsufficientData
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// DetectCrossover compares the current and prior short/long averages.
// Golden: short moves from <= long to > long. Death: short moves from >= long to < long.
func DetectCrossover(shortNow, longNow, shortPrior, longPrior float64) Crossover {
	switch {
	case shortNow > longNow && shortPrior <= longPrior:
		return CrossGolden
	case shortNow < longNow && shortPrior >= longPrior:
		return CrossDeath
	default:
		return CrossNone
	}
}

// CrossoverFromCloses detects a short/long cross using averages over the full
// series and over the series with its last `lag` closes dropped. The lagged
// window stands in for yesterday's averages; it is a heuristic, a cross that
// formed and reverted inside the lag is not seen.
func CrossoverFromCloses(closes []float64, short, long, lag int) (Crossover, error) {
	if lag <= 0 {
		return CrossNone, ErrInvalidPeriod
	}
	if len(closes) < long+lag {
		return CrossNone, ErrInsufficientData
	}
	shortNow, err := CalculateSMA(closes, short)
	if err != nil {
		return CrossNone, err
	}
	longNow, err := CalculateSMA(closes, long)
	if err != nil {
		return CrossNone, err
	}
	prior := closes[:len(closes)-lag]
	shortPrior, err := CalculateSMA(prior, short)
	if err != nil {
		return CrossNone, err
	}
	longPrior, err := CalculateSMA(prior, long)
	if err != nil {
		return CrossNone, err
	}
	return DetectCrossover(shortNow, longNow, shortPrior, longPrior), nil
}
