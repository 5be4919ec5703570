package detector

import (
	"sort"
	"strings"

	"MarketScanner/internal/config"
	"MarketScanner/internal/model"
)

var familyKeywords = []struct {
	family model.MacroFamily
	terms  []string
}{
	{model.FamilyFed, []string{"fomc", "fed", "interest rate", "powell"}},
	{model.FamilyJobs, []string{"nonfarm", "employment", "jobless", "unemployment"}},
	{model.FamilyInflation, []string{"cpi", "ppi", "inflation", "pce"}},
	{model.FamilyGDP, []string{"gdp"}},
}

var familyNotes = map[model.MacroFamily]string{
	model.FamilyFed:       "Fed event - HIGH volatility expected, all bets risky",
	model.FamilyInflation: "Inflation data - Can reverse market direction",
	model.FamilyJobs:      "Jobs data - Market moving event",
}

// MacroDetector picks market-moving economic releases and sector-moving earnings.
type MacroDetector struct {
	country string
	movers  map[string][]string
}

func NewMacroDetector(cfg config.MacroConfig) *MacroDetector {
	movers := make(map[string][]string, len(cfg.SectorMovers))
	for sym, sectors := range cfg.SectorMovers {
		movers[model.NormalizeSymbol(sym)] = append([]string(nil), sectors...)
	}
	country := cfg.Country
	if country == "" {
		country = "US"
	}
	return &MacroDetector{country: country, movers: movers}
}

// ClassifyEconomicEvent keeps high and medium impact releases of the configured
// country that are high impact or match a keyword family. Fed, inflation and
// jobs releases are promoted to high impact.
func (d *MacroDetector) ClassifyEconomicEvent(e model.EconomicEntry) (model.MacroEvent, bool) {
	if e.Country != d.country {
		return model.MacroEvent{}, false
	}
	impact := model.Impact(strings.ToLower(strings.TrimSpace(e.Impact)))
	if impact != model.ImpactHigh && impact != model.ImpactMedium {
		return model.MacroEvent{}, false
	}

	name := strings.ToLower(e.Event)
	matched := make(map[model.MacroFamily]bool)
	for _, fk := range familyKeywords {
		for _, term := range fk.terms {
			if strings.Contains(name, term) {
				matched[fk.family] = true
				break
			}
		}
	}
	if len(matched) == 0 && impact != model.ImpactHigh {
		return model.MacroEvent{}, false
	}

	ev := model.MacroEvent{
		Date:    e.Time,
		Event:   e.Event,
		Country: e.Country,
		Impact:  impact,
		Family:  model.FamilyOther,
	}
	// precedence: fed, inflation, jobs, gdp
	for _, f := range []model.MacroFamily{model.FamilyFed, model.FamilyInflation, model.FamilyJobs, model.FamilyGDP} {
		if matched[f] {
			ev.Family = f
			ev.Description = familyNotes[f]
			break
		}
	}
	if matched[model.FamilyFed] || matched[model.FamilyInflation] || matched[model.FamilyJobs] {
		ev.Impact = model.ImpactHigh
	}
	return ev, true
}

// ClassifySectorEarnings keeps earnings of symbols in the sector-mover table.
func (d *MacroDetector) ClassifySectorEarnings(e model.EarningsEntry) (model.SectorEarningsEvent, bool) {
	sym := model.NormalizeSymbol(e.Symbol)
	sectors, ok := d.movers[sym]
	if !ok {
		return model.SectorEarningsEvent{}, false
	}
	return model.SectorEarningsEvent{
		Date:    e.Date,
		Symbol:  sym,
		Company: sym,
		Sectors: append([]string(nil), sectors...),
	}, true
}

// SortMacroEvents orders events by date, keeping feed order for ties.
func SortMacroEvents(events []model.MacroEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})
}

// SortSectorEarnings orders events by date, keeping feed order for ties.
func SortSectorEarnings(events []model.SectorEarningsEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})
}
