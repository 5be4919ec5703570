package detector

import (
	"fmt"
	"math"
	"sort"

	"MarketScanner/internal/calculator"
	"MarketScanner/internal/config"
	"MarketScanner/internal/model"
)

// MomentumDetector flags large moves, gaps, volume spikes and 52-week proximity.
type MomentumDetector struct {
	cfg config.MomentumConfig
}

func NewMomentumDetector(cfg config.MomentumConfig) *MomentumDetector {
	return &MomentumDetector{cfg: cfg}
}

// Detect evaluates one quote. yr may be nil and avgVolume may be zero when unknown.
// The bool is false when no signal fired.
func (d *MomentumDetector) Detect(q model.Quote, yr *model.YearRange, avgVolume int64) (model.MomentumResult, bool) {
	if q.Price <= 0 {
		return model.MomentumResult{}, false
	}
	change := q.PercentChange()
	var signals []string

	if math.Abs(change) > d.cfg.PriceChangeThreshold {
		signals = append(signals, fmt.Sprintf("Price %s %.1f%%", direction(change), math.Abs(change)))
	}

	if q.Volume > 0 && avgVolume > 0 && float64(q.Volume) > d.cfg.VolumeThreshold*float64(avgVolume) {
		signals = append(signals, fmt.Sprintf("Volume %.1fx average", float64(q.Volume)/float64(avgVolume)))
	}

	var high, low *float64
	if yr != nil {
		if yr.High > 0 {
			h := yr.High
			high = &h
			if q.Price > h*(1-d.cfg.NearExtremePct/100) {
				signals = append(signals, fmt.Sprintf("Near 52-week high ($%.2f)", h))
			}
		}
		if yr.Low > 0 {
			l := yr.Low
			low = &l
			if q.Price < l*(1+d.cfg.NearExtremePct/100) {
				signals = append(signals, fmt.Sprintf("Near 52-week low ($%.2f)", l))
			}
		}
	}

	if q.PrevClose > 0 && q.Open > 0 {
		gap := calculator.PercentChange(q.PrevClose, q.Open)
		if math.Abs(gap) > d.cfg.GapThreshold {
			signals = append(signals, fmt.Sprintf("Gap %s %.1f%%", direction(gap), math.Abs(gap)))
		}
	}

	if len(signals) == 0 {
		return model.MomentumResult{}, false
	}
	return model.MomentumResult{
		Symbol:    q.Symbol,
		Price:     q.Price,
		ChangePct: calculator.Round(change, 2),
		Volume:    q.Volume,
		AvgVolume: avgVolume,
		YearHigh:  high,
		YearLow:   low,
		Signals:   signals,
	}, true
}

// RankMomentum orders results by signal count, then absolute change, both descending.
func RankMomentum(results []model.MomentumResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if len(results[i].Signals) != len(results[j].Signals) {
			return len(results[i].Signals) > len(results[j].Signals)
		}
		return math.Abs(results[i].ChangePct) > math.Abs(results[j].ChangePct)
	})
}

// AverageVolume is the mean volume of the `days` bars preceding the last one.
func AverageVolume(bars []model.OHLCV, days int) int64 {
	if days <= 0 || len(bars) < 2 {
		return 0
	}
	end := len(bars) - 1
	start := end - days
	if start < 0 {
		start = 0
	}
	var sum float64
	for _, b := range bars[start:end] {
		sum += b.Volume
	}
	return int64(sum / float64(end-start))
}

func direction(v float64) string {
	if v > 0 {
		return "up"
	}
	return "down"
}
