package model

import "time"

// Impact is the market impact tier of a scheduled event.
type Impact string

const (
	ImpactHigh   Impact = "high"
	ImpactMedium Impact = "medium"
	ImpactLow    Impact = "low"
)

// MacroFamily groups economic releases by the keyword that matched them.
type MacroFamily string

const (
	FamilyFed       MacroFamily = "fed"
	FamilyJobs      MacroFamily = "jobs"
	FamilyInflation MacroFamily = "inflation"
	FamilyGDP       MacroFamily = "gdp"
	FamilyOther     MacroFamily = "other"
)

// EconomicEntry is a raw economic calendar row.
type EconomicEntry struct {
	Time    time.Time
	Country string
	Event   string
	Impact  string
}

// EarningsEntry is a raw earnings calendar row.
type EarningsEntry struct {
	Symbol          string
	Date            time.Time
	Hour            string
	EPSEstimate     *float64
	RevenueEstimate *float64
}

// EarningsSurprise is one reported quarter.
type EarningsSurprise struct {
	Period   time.Time
	Actual   *float64
	Estimate *float64
}

// MacroEvent is a high-impact economic release.
type MacroEvent struct {
	Date        time.Time   `json:"date"`
	Event       string      `json:"event"`
	Country     string      `json:"country"`
	Impact      Impact      `json:"impact"`
	Family      MacroFamily `json:"family"`
	Description string      `json:"description,omitempty"`
}

// SectorEarningsEvent is an earnings report that tends to move whole sectors.
type SectorEarningsEvent struct {
	Date    time.Time `json:"date"`
	Symbol  string    `json:"symbol"`
	Company string    `json:"company"`
	Sectors []string  `json:"sector_impact"`
}

// EarningsResult is an upcoming watchlist report with its track record.
type EarningsResult struct {
	Symbol          string    `json:"symbol"`
	ReportDate      time.Time `json:"report_date"`
	ReportTime      string    `json:"report_time,omitempty"`
	EPSEstimate     *float64  `json:"eps_estimate,omitempty"`
	RevenueEstimate *float64  `json:"revenue_estimate,omitempty"`
	BeatRate        *float64  `json:"beat_rate,omitempty"`
	AvgSurprisePct  *float64  `json:"avg_surprise_pct,omitempty"`
}
