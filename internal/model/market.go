package model

import "time"

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PriceSeries holds the daily history of one ticker, oldest bar first.
type PriceSeries struct {
	Symbol    string
	DailyBars []OHLCV
	FetchedAt time.Time
}

// Closes extracts the closing prices in chronological order.
func (p PriceSeries) Closes() []float64 {
	return ExtractCloses(p.DailyBars)
}

// ExtractCloses returns the close of every bar.
func ExtractCloses(bars []OHLCV) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

// Quote is a point-in-time price snapshot for one ticker.
type Quote struct {
	Symbol    string
	Price     float64
	PrevClose float64
	Open      float64
	DayHigh   float64
	DayLow    float64
	// ChangePct is the provider's percent change, zero when not reported.
	ChangePct float64
	Volume    int64
	Timestamp time.Time
}

// PercentChange returns the day change in percent, preferring the provider value.
func (q Quote) PercentChange() float64 {
	if q.ChangePct != 0 {
		return q.ChangePct
	}
	if q.PrevClose == 0 {
		return 0
	}
	return (q.Price - q.PrevClose) * 100 / q.PrevClose
}

// YearRange is the 52-week high/low pair.
type YearRange struct {
	High float64
	Low  float64
}

// ShortInterest is the optional short positioning of a ticker.
type ShortInterest struct {
	DaysToCover    float64
	PercentOfFloat float64
}
