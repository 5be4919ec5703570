package detector

import (
	"MarketScanner/internal/calculator"
	"MarketScanner/internal/config"
	"MarketScanner/internal/model"
)

// MarketDetector grades the index tape and collects sector ETF changes.
type MarketDetector struct {
	cfg config.MarketConfig
}

func NewMarketDetector(cfg config.MarketConfig) *MarketDetector {
	return &MarketDetector{cfg: cfg}
}

// Symbols lists every instrument the context needs, indices first.
func (d *MarketDetector) Symbols() []string {
	out := []string{d.cfg.SPY, d.cfg.QQQ, d.cfg.VIX}
	return append(out, d.cfg.SectorETFs...)
}

// Classify builds the market context. SPY, QQQ and VIX must all be present;
// missing sector ETFs are left out of the performance map.
func (d *MarketDetector) Classify(quotes map[string]model.Quote) (*model.MarketContext, bool) {
	spy, ok1 := quotes[d.cfg.SPY]
	qqq, ok2 := quotes[d.cfg.QQQ]
	vix, ok3 := quotes[d.cfg.VIX]
	if !ok1 || !ok2 || !ok3 {
		return nil, false
	}

	spyChg, qqqChg, vixChg := spy.PercentChange(), qqq.PercentChange(), vix.PercentChange()
	mc := &model.MarketContext{
		SPYPrice:          calculator.Round(spy.Price, 2),
		SPYChangePct:      calculator.Round(spyChg, 2),
		QQQPrice:          calculator.Round(qqq.Price, 2),
		QQQChangePct:      calculator.Round(qqqChg, 2),
		VIXLevel:          calculator.Round(vix.Price, 2),
		VIXChangePct:      calculator.Round(vixChg, 2),
		Sentiment:         d.sentiment(vix.Price, spyChg, qqqChg),
		SectorPerformance: make(map[string]float64),
	}
	for _, etf := range d.cfg.SectorETFs {
		if q, ok := quotes[etf]; ok {
			mc.SectorPerformance[etf] = calculator.Round(q.PercentChange(), 2)
		}
	}
	return mc, true
}

func (d *MarketDetector) sentiment(vix, spyChg, qqqChg float64) model.MarketSentiment {
	switch {
	case vix > d.cfg.VIXRiskOff:
		return model.RiskOff
	case vix < d.cfg.VIXRiskOn && spyChg > 0:
		return model.RiskOn
	case spyChg > d.cfg.BroadMove && qqqChg > d.cfg.BroadMove:
		return model.RiskOn
	case spyChg < -d.cfg.BroadMove && qqqChg < -d.cfg.BroadMove:
		return model.RiskOff
	default:
		return model.Neutral
	}
}
