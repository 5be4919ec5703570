package model

import "time"

// SourceFailure records an upstream fetch that was skipped during a scan.
type SourceFailure struct {
	Symbol string `json:"symbol,omitempty"`
	Source string `json:"source"`
	Error  string `json:"error"`
}

// ScanBundle is everything one scan produced. It is built once by the
// aggregator and treated as read-only afterwards.
type ScanBundle struct {
	RunID    string        `json:"run_id"`
	ScanTime time.Time     `json:"scan_time"`
	Duration time.Duration `json:"duration_ns"`

	Watchlist Watchlist `json:"watchlist"`
	Tickers   []string  `json:"tickers"`

	MarketContext *MarketContext    `json:"market_context,omitempty"`
	Premarket     []PremarketMover  `json:"premarket_movers"`
	Momentum      []MomentumResult  `json:"momentum"`
	Technicals    []TechnicalSignal `json:"technicals"`

	Options         []OptionSignal            `json:"options"`
	OptionsByTicker map[string][]OptionSignal `json:"options_by_ticker"`
	CallPutRatios   map[string]CallPutRatio   `json:"call_put_ratios"`

	News           []NewsSignal          `json:"news"`
	Earnings       []EarningsResult      `json:"earnings"`
	MacroEvents    []MacroEvent          `json:"macro_events"`
	SectorEarnings []SectorEarningsEvent `json:"sector_earnings"`

	Failures []SourceFailure `json:"source_failures,omitempty"`
}

// SignalCount is the number of actionable rows across every category.
func (b *ScanBundle) SignalCount() int {
	return len(b.Momentum) + len(b.Technicals) + len(b.Options) + len(b.News) +
		len(b.Premarket) + len(b.Earnings) + len(b.MacroEvents) + len(b.SectorEarnings)
}

// TickersWithSignals lists the tickers that appear in any per-ticker list.
func (b *ScanBundle) TickersWithSignals() map[string]bool {
	out := make(map[string]bool)
	for _, m := range b.Momentum {
		out[m.Symbol] = true
	}
	for _, t := range b.Technicals {
		out[t.Symbol] = true
	}
	for _, o := range b.Options {
		out[o.Symbol] = true
	}
	for _, n := range b.News {
		out[n.Symbol] = true
	}
	return out
}
