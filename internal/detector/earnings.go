package detector

import (
	"math"
	"sort"
	"strings"

	"MarketScanner/internal/model"
)

// EarningsDetector attaches a track record to upcoming watchlist reports.
type EarningsDetector struct {
	quarters int
}

func NewEarningsDetector(quarters int) *EarningsDetector {
	if quarters <= 0 {
		quarters = 4
	}
	return &EarningsDetector{quarters: quarters}
}

// Filter keeps calendar rows whose symbol is on the watchlist.
func (d *EarningsDetector) Filter(entries []model.EarningsEntry, wl model.Watchlist) []model.EarningsEntry {
	var out []model.EarningsEntry
	for _, e := range entries {
		if wl.Contains(e.Symbol) {
			out = append(out, e)
		}
	}
	return out
}

// Build combines a calendar row with the most recent reported quarters, newest first.
func (d *EarningsDetector) Build(e model.EarningsEntry, history []model.EarningsSurprise) model.EarningsResult {
	return model.EarningsResult{
		Symbol:          model.NormalizeSymbol(e.Symbol),
		ReportDate:      e.Date,
		ReportTime:      strings.ToUpper(e.Hour),
		EPSEstimate:     e.EPSEstimate,
		RevenueEstimate: e.RevenueEstimate,
		BeatRate:        d.BeatRate(history),
		AvgSurprisePct:  d.AvgSurprise(history),
	}
}

// BeatRate is the share of the last quarters whose actual beat the estimate.
// Quarters missing either value count as not beating.
func (d *EarningsDetector) BeatRate(history []model.EarningsSurprise) *float64 {
	if len(history) == 0 {
		return nil
	}
	recent := d.recent(history)
	beats := 0
	for _, h := range recent {
		if h.Actual != nil && h.Estimate != nil && *h.Actual > *h.Estimate {
			beats++
		}
	}
	rate := float64(beats) / float64(len(recent))
	return &rate
}

// AvgSurprise is the mean percent surprise over quarters with a non-zero estimate.
func (d *EarningsDetector) AvgSurprise(history []model.EarningsSurprise) *float64 {
	var sum float64
	var n int
	for _, h := range d.recent(history) {
		if h.Actual == nil || h.Estimate == nil || *h.Estimate == 0 {
			continue
		}
		sum += (*h.Actual - *h.Estimate) / math.Abs(*h.Estimate) * 100
		n++
	}
	if n == 0 {
		return nil
	}
	avg := sum / float64(n)
	return &avg
}

func (d *EarningsDetector) recent(history []model.EarningsSurprise) []model.EarningsSurprise {
	if len(history) > d.quarters {
		return history[:d.quarters]
	}
	return history
}

// SortEarnings orders results by report date, then symbol.
func SortEarnings(results []model.EarningsResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if !results[i].ReportDate.Equal(results[j].ReportDate) {
			return results[i].ReportDate.Before(results[j].ReportDate)
		}
		return results[i].Symbol < results[j].Symbol
	})
}
