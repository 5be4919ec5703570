package report

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"MarketScanner/internal/config"
	"MarketScanner/internal/model"
)

// Digest renders a bundle as plain text sections for a downstream reader.
type Digest struct {
	Labeler   RatioLabeler
	MacroDays int
}

func NewDigest(cfg *config.Config) *Digest {
	return &Digest{Labeler: NewRatioLabeler(cfg.Report), MacroDays: cfg.Macro.DaysAhead}
}

// Render formats every section of the bundle. Empty sections are kept so the
// reader can tell "nothing found" from "not scanned".
func (d *Digest) Render(bundle *model.ScanBundle) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("MARKET SCAN | %s\n", bundle.ScanTime.Format("2006-01-02 15:04 MST")))
	b.WriteString(fmt.Sprintf("Tickers: %d | Signals: %d | Failures: %d\n",
		len(bundle.Tickers), bundle.SignalCount(), len(bundle.Failures)))

	d.marketContext(&b, bundle.MarketContext)
	d.premarket(&b, bundle.Premarket)
	d.momentum(&b, bundle.Momentum)
	d.technicals(&b, bundle.Technicals)
	d.options(&b, bundle)
	d.news(&b, bundle.News)
	d.earnings(&b, bundle.Earnings)
	d.macro(&b, bundle.MacroEvents)
	d.sectorEarnings(&b, bundle.SectorEarnings)
	d.failures(&b, bundle.Failures)

	return b.String()
}

func section(b *strings.Builder, title string) {
	b.WriteString("\n")
	b.WriteString(title)
	b.WriteString("\n")
}

func none(b *strings.Builder) {
	b.WriteString("  none\n")
}

func (d *Digest) marketContext(b *strings.Builder, mc *model.MarketContext) {
	section(b, "MARKET CONTEXT")
	if mc == nil {
		b.WriteString("  unavailable\n")
		return
	}
	b.WriteString(fmt.Sprintf("  SPY %.2f (%+.2f%%) | QQQ %.2f (%+.2f%%) | VIX %.2f (%+.2f%%)\n",
		mc.SPYPrice, mc.SPYChangePct, mc.QQQPrice, mc.QQQChangePct, mc.VIXLevel, mc.VIXChangePct))
	b.WriteString(fmt.Sprintf("  Sentiment: %s\n", mc.Sentiment))

	if len(mc.SectorPerformance) == 0 {
		return
	}
	etfs := make([]string, 0, len(mc.SectorPerformance))
	for etf := range mc.SectorPerformance {
		etfs = append(etfs, etf)
	}
	sort.Strings(etfs)
	parts := make([]string, len(etfs))
	for i, etf := range etfs {
		parts[i] = fmt.Sprintf("%s %+.2f%%", etf, mc.SectorPerformance[etf])
	}
	b.WriteString(fmt.Sprintf("  Sectors: %s\n", strings.Join(parts, ", ")))
}

func (d *Digest) premarket(b *strings.Builder, movers []model.PremarketMover) {
	section(b, "PREMARKET MOVERS")
	if len(movers) == 0 {
		none(b)
		return
	}
	for _, m := range movers {
		tag := ""
		if m.OnWatchlist {
			tag = " (watchlist)"
		}
		b.WriteString(fmt.Sprintf("  %s $%.2f %+.2f%%%s\n", m.Symbol, m.Price, m.ChangePct, tag))
	}
}

func (d *Digest) momentum(b *strings.Builder, results []model.MomentumResult) {
	section(b, "MOMENTUM")
	if len(results) == 0 {
		none(b)
		return
	}
	for _, m := range results {
		b.WriteString(fmt.Sprintf("  %s $%.2f %+.2f%%: %s\n", m.Symbol, m.Price, m.ChangePct, strings.Join(m.Signals, "; ")))
	}
}

func (d *Digest) technicals(b *strings.Builder, signals []model.TechnicalSignal) {
	section(b, "TECHNICALS")
	if len(signals) == 0 {
		none(b)
		return
	}
	for _, t := range signals {
		rsi := "n/a"
		if t.RSI14 != nil {
			rsi = fmt.Sprintf("%.1f", *t.RSI14)
		}
		b.WriteString(fmt.Sprintf("  %s $%.2f RSI %s: %s\n", t.Symbol, t.Price, rsi, strings.Join(t.Signals, "; ")))
	}
}

func (d *Digest) options(b *strings.Builder, bundle *model.ScanBundle) {
	section(b, "OPTIONS FLOW")
	if len(bundle.Options) == 0 {
		none(b)
	}
	for _, o := range bundle.Options {
		b.WriteString(fmt.Sprintf("  %s %s %s %s vol %d / OI %d (%.2fx) %s %s\n",
			o.Symbol, o.Expiry.Format("2006-01-02"), o.Strike.String(), o.OptionType,
			o.Volume, o.OpenInterest, o.VolumeOIRatio, o.SignalType, o.Strength))
	}

	if len(bundle.CallPutRatios) == 0 {
		return
	}
	b.WriteString("  Call/put ratios:\n")
	for _, sym := range ratioOrder(bundle) {
		r := bundle.CallPutRatios[sym]
		ratio := fmt.Sprintf("%.2f", r.Ratio)
		if math.IsInf(r.Value(), 1) {
			ratio = "inf"
		}
		b.WriteString(fmt.Sprintf("    %s %s (%s) calls %d / puts %d\n",
			sym, ratio, d.Labeler.Label(r), r.CallVolume, r.PutVolume))
	}
}

// ratioOrder lists ratio keys by value, highest first, all-calls tickers on
// top. Ties keep watchlist order with strays sorted at the end.
func ratioOrder(bundle *model.ScanBundle) []string {
	var out []string
	seen := make(map[string]bool)
	for _, t := range bundle.Tickers {
		if _, ok := bundle.CallPutRatios[t]; ok {
			out = append(out, t)
			seen[t] = true
		}
	}
	var rest []string
	for sym := range bundle.CallPutRatios {
		if !seen[sym] {
			rest = append(rest, sym)
		}
	}
	sort.Strings(rest)
	out = append(out, rest...)

	sort.SliceStable(out, func(i, j int) bool {
		return bundle.CallPutRatios[out[i]].Value() > bundle.CallPutRatios[out[j]].Value()
	})
	return out
}

func (d *Digest) news(b *strings.Builder, items []model.NewsSignal) {
	section(b, "NEWS")
	if len(items) == 0 {
		none(b)
		return
	}
	for _, n := range items {
		b.WriteString(fmt.Sprintf("  [%+d %s] %s: %s (%s, %s)\n",
			n.Score, n.Sentiment, n.Symbol, n.Headline, n.Source, n.PublishedAt.Format("Jan 02 15:04")))
	}
}

func (d *Digest) earnings(b *strings.Builder, results []model.EarningsResult) {
	section(b, "EARNINGS")
	if len(results) == 0 {
		none(b)
		return
	}
	for _, e := range results {
		line := fmt.Sprintf("  %s %s", e.Symbol, e.ReportDate.Format("2006-01-02"))
		if e.ReportTime != "" {
			line += " " + e.ReportTime
		}
		if e.EPSEstimate != nil {
			line += fmt.Sprintf(" | EPS est %.2f", *e.EPSEstimate)
		}
		if e.BeatRate != nil {
			line += fmt.Sprintf(" | beat rate %.0f%%", *e.BeatRate*100)
		}
		if e.AvgSurprisePct != nil {
			line += fmt.Sprintf(" | avg surprise %+.1f%%", *e.AvgSurprisePct)
		}
		b.WriteString(line + "\n")
	}
}

func (d *Digest) macro(b *strings.Builder, events []model.MacroEvent) {
	section(b, "MACRO LANDMINES")
	if len(events) == 0 {
		b.WriteString(fmt.Sprintf("  No major macro events in the next %d days.\n", d.MacroDays))
		return
	}
	for _, e := range events {
		line := fmt.Sprintf("  %s %s (%s, %s)", e.Date.Format("2006-01-02"), e.Event, e.Country, e.Impact)
		if e.Description != "" {
			line += " - " + e.Description
		}
		b.WriteString(line + "\n")
	}
}

func (d *Digest) sectorEarnings(b *strings.Builder, events []model.SectorEarningsEvent) {
	section(b, "SECTOR-MOVING EARNINGS")
	if len(events) == 0 {
		none(b)
		return
	}
	for _, e := range events {
		b.WriteString(fmt.Sprintf("  %s %s: %s\n", e.Date.Format("2006-01-02"), e.Symbol, strings.Join(e.Sectors, ", ")))
	}
}

func (d *Digest) failures(b *strings.Builder, failures []model.SourceFailure) {
	if len(failures) == 0 {
		return
	}
	section(b, "SOURCE FAILURES")
	for _, f := range failures {
		sym := f.Symbol
		if sym == "" {
			sym = "-"
		}
		b.WriteString(fmt.Sprintf("  %s %s: %s\n", sym, f.Source, f.Error))
	}
}
