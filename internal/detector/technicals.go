package detector

import (
	"fmt"

	"MarketScanner/internal/calculator"
	"MarketScanner/internal/config"
	"MarketScanner/internal/model"
)

// TechnicalsDetector turns a close series into RSI, moving-average and short-interest flags.
type TechnicalsDetector struct {
	cfg config.TechnicalsConfig
}

func NewTechnicalsDetector(cfg config.TechnicalsConfig) *TechnicalsDetector {
	return &TechnicalsDetector{cfg: cfg}
}

// Analyze builds the indicator snapshot of one ticker from closes (oldest first).
// Indicators the series is too short for are left nil. si may be nil.
func (d *TechnicalsDetector) Analyze(symbol string, closes []float64, si *model.ShortInterest) (model.TechnicalSignal, error) {
	if len(closes) == 0 {
		return model.TechnicalSignal{}, calculator.ErrInsufficientData
	}
	price := closes[len(closes)-1]
	ts := model.TechnicalSignal{
		Symbol:  symbol,
		Price:   calculator.Round(price, 2),
		Signals: []string{},
	}

	if rsi, err := calculator.CalculateRSI(closes, d.cfg.RSIPeriod); err == nil {
		ts.RSI14 = &rsi
		switch {
		case rsi >= d.cfg.RSIOverbought:
			ts.Signals = append(ts.Signals, fmt.Sprintf("RSI overbought (%.1f)", rsi))
		case rsi <= d.cfg.RSIOversold:
			ts.Signals = append(ts.Signals, fmt.Sprintf("RSI oversold (%.1f)", rsi))
		}
	}

	short, errShort := calculator.CalculateSMA(closes, d.cfg.ShortMA)
	if errShort == nil {
		v, above := calculator.Round(short, 2), price > short
		ts.MA50, ts.Above50MA = &v, &above
	}
	long, errLong := calculator.CalculateSMA(closes, d.cfg.LongMA)
	if errLong == nil {
		v, above := calculator.Round(long, 2), price > long
		ts.MA200, ts.Above200MA = &v, &above
	}

	if errShort == nil && errLong == nil {
		switch {
		case *ts.Above50MA && *ts.Above200MA:
			ts.Signals = append(ts.Signals, "Above 50 & 200 MA (bullish)")
		case !*ts.Above50MA && !*ts.Above200MA:
			ts.Signals = append(ts.Signals, "Below 50 & 200 MA (bearish)")
		}
		cross, err := calculator.CrossoverFromCloses(closes, d.cfg.ShortMA, d.cfg.LongMA, d.cfg.CrossoverLag)
		if err == nil {
			switch cross {
			case calculator.CrossGolden:
				ts.Signals = append(ts.Signals, "Golden cross forming")
			case calculator.CrossDeath:
				ts.Signals = append(ts.Signals, "Death cross forming")
			}
		}
	}

	if si != nil {
		ratio, pct := si.DaysToCover, si.PercentOfFloat
		if ratio > 0 {
			ts.ShortInterestRatio = &ratio
		}
		if pct > 0 {
			ts.ShortPercentFloat = &pct
			if pct >= d.cfg.HighShortInterestPct {
				ts.Signals = append(ts.Signals, fmt.Sprintf("High short interest (%.1f%%)", pct))
			}
		}
	}

	return ts, nil
}
