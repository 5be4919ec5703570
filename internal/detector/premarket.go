package detector

import (
	"math"
	"sort"

	"MarketScanner/internal/calculator"
	"MarketScanner/internal/model"
)

// PremarketDetector flags tickers already moving before the session.
type PremarketDetector struct {
	minMove float64
}

func NewPremarketDetector(minMovePct float64) *PremarketDetector {
	return &PremarketDetector{minMove: minMovePct}
}

// Detect reports q when |price vs previous close| is at least the minimum move.
func (d *PremarketDetector) Detect(q model.Quote, onWatchlist bool) (model.PremarketMover, bool) {
	if q.PrevClose <= 0 || q.Price <= 0 {
		return model.PremarketMover{}, false
	}
	change := calculator.PercentChange(q.PrevClose, q.Price)
	if math.Abs(change) < d.minMove {
		return model.PremarketMover{}, false
	}
	return model.PremarketMover{
		Symbol:      q.Symbol,
		Price:       calculator.Round(q.Price, 2),
		ChangePct:   calculator.Round(change, 2),
		Volume:      q.Volume,
		OnWatchlist: onWatchlist,
	}, true
}

// RankPremarket orders movers by absolute change, largest first.
func RankPremarket(movers []model.PremarketMover) {
	sort.SliceStable(movers, func(i, j int) bool {
		return math.Abs(movers[i].ChangePct) > math.Abs(movers[j].ChangePct)
	})
}
