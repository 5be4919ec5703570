package detector

import (
	"sort"
	"time"

	"MarketScanner/internal/calculator"
	"MarketScanner/internal/config"
	"MarketScanner/internal/model"
)

// OptionsDetector classifies chain legs by volume over open interest.
type OptionsDetector struct {
	cfg config.OptionsConfig
}

func NewOptionsDetector(cfg config.OptionsConfig) *OptionsDetector {
	return &OptionsDetector{cfg: cfg}
}

// NearTermExpiries keeps the first MaxExpiries listed dates that fall within
// MaxExpiryDays of now, compared by calendar date.
func (d *OptionsDetector) NearTermExpiries(expiries []time.Time, now time.Time) []time.Time {
	limit := expiries
	if len(limit) > d.cfg.MaxExpiries {
		limit = limit[:d.cfg.MaxExpiries]
	}
	maxExpiry := dateOf(now).AddDate(0, 0, d.cfg.MaxExpiryDays)
	var out []time.Time
	for _, e := range limit {
		if !dateOf(e).After(maxExpiry) {
			out = append(out, e)
		}
	}
	return out
}

// RatioExpiries returns the first RatioExpiries listed dates.
func (d *OptionsDetector) RatioExpiries(expiries []time.Time) []time.Time {
	if len(expiries) > d.cfg.RatioExpiries {
		return expiries[:d.cfg.RatioExpiries]
	}
	return expiries
}

// ScanChain returns the unusual legs of one side of one expiry.
func (d *OptionsDetector) ScanChain(symbol string, expiry time.Time, legs []model.OptionLeg, typ model.OptionType) []model.OptionSignal {
	var out []model.OptionSignal
	for _, leg := range legs {
		if !leg.Strike.IsPositive() {
			continue
		}
		if leg.Volume < d.cfg.MinVolume || leg.OpenInterest < d.cfg.MinOpenInterest {
			continue
		}
		if leg.OpenInterest <= 0 {
			continue
		}
		ratio := float64(leg.Volume) / float64(leg.OpenInterest)
		if ratio < d.cfg.UnusualRatio {
			continue
		}

		sig := model.OptionSignal{
			Symbol:        symbol,
			Expiry:        expiry,
			Strike:        leg.Strike,
			OptionType:    typ,
			Volume:        leg.Volume,
			OpenInterest:  leg.OpenInterest,
			VolumeOIRatio: calculator.Round(ratio, 2),
			SignalType:    model.UnusualVolume,
			Strength:      model.Moderate,
		}
		if ratio >= d.cfg.HighRatio {
			sig.Strength = model.Strong
			sig.SignalType = model.CallSweep
			if typ == model.Put {
				sig.SignalType = model.PutSweep
			}
		}
		if leg.ImpliedVolatility > 0 {
			iv := calculator.Round(leg.ImpliedVolatility*100, 1)
			sig.ImpliedVolatility = &iv
		}
		if leg.LastPrice > 0 {
			lp := leg.LastPrice
			sig.LastPrice = &lp
		}
		out = append(out, sig)
	}
	return out
}

// ScanChains runs ScanChain over both sides of every chain.
func (d *OptionsDetector) ScanChains(chains []model.OptionChain) []model.OptionSignal {
	var out []model.OptionSignal
	for _, c := range chains {
		out = append(out, d.ScanChain(c.Symbol, c.Expiry, c.Calls, model.Call)...)
		out = append(out, d.ScanChain(c.Symbol, c.Expiry, c.Puts, model.Put)...)
	}
	return out
}

// CallPutRatio sums call and put volume over the given chains. It is not ok
// when both totals are zero.
func CallPutRatio(symbol string, chains []model.OptionChain) (model.CallPutRatio, bool) {
	r := model.CallPutRatio{Symbol: symbol}
	for _, c := range chains {
		for _, l := range c.Calls {
			r.CallVolume += l.Volume
		}
		for _, l := range c.Puts {
			r.PutVolume += l.Volume
		}
	}
	switch {
	case r.PutVolume > 0:
		r.Ratio = calculator.Round(float64(r.CallVolume)/float64(r.PutVolume), 2)
	case r.CallVolume > 0:
		r.Infinite = true
	default:
		return r, false
	}
	return r, true
}

// RankOptions orders signals by volume/OI ratio, most unusual first.
func RankOptions(signals []model.OptionSignal) {
	sort.SliceStable(signals, func(i, j int) bool {
		return signals[i].VolumeOIRatio > signals[j].VolumeOIRatio
	})
}

// GroupOptions keeps the top `perTicker` ranked signals of each symbol.
func GroupOptions(ranked []model.OptionSignal, perTicker int) map[string][]model.OptionSignal {
	out := make(map[string][]model.OptionSignal)
	for _, s := range ranked {
		if len(out[s.Symbol]) < perTicker {
			out[s.Symbol] = append(out[s.Symbol], s)
		}
	}
	return out
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
