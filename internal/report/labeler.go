package report

import (
	"MarketScanner/internal/config"
	"MarketScanner/internal/model"
)

// RatioLabeler turns a call/put ratio into a directional label.
type RatioLabeler struct {
	BullishAbove float64
	BearishBelow float64
}

func NewRatioLabeler(cfg config.ReportConfig) RatioLabeler {
	return RatioLabeler{BullishAbove: cfg.CallPutBullishAbove, BearishBelow: cfg.CallPutBearishBelow}
}

// Label returns bullish, bearish or neutral. The all-calls sentinel is bullish.
func (l RatioLabeler) Label(r model.CallPutRatio) model.Sentiment {
	v := r.Value()
	switch {
	case v > l.BullishAbove:
		return model.SentimentBullish
	case v < l.BearishBelow:
		return model.SentimentBearish
	default:
		return model.SentimentNeutral
	}
}
