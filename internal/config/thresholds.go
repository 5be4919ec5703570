package config

import "time"

// ScanConfig controls the aggregation run itself.
type ScanConfig struct {
	Workers               int           `yaml:"workers" default:"4" validate:"gte=1,lte=64"`
	HistoryDays           int           `yaml:"history_days" default:"365" validate:"gte=30"`
	HistorySource         string        `yaml:"history_source" default:"yahoo" validate:"oneof=yahoo tradier"`
	CallTimeout           time.Duration `yaml:"call_timeout" default:"10s" validate:"gt=0"`
	EarningsLookaheadDays int           `yaml:"earnings_lookahead_days" default:"7" validate:"gte=1"`
	EarningsQuarters      int           `yaml:"earnings_quarters" default:"4" validate:"gte=1"`
	AvgVolumeDays         int           `yaml:"avg_volume_days" default:"20" validate:"gte=1"`
	AlwaysWatch           []string      `yaml:"always_watch" default:"[\"SPY\",\"QQQ\",\"AAPL\",\"MSFT\",\"GOOGL\",\"AMZN\",\"TSLA\",\"META\"]"`
}

// MomentumConfig holds thresholds for quote-level movement signals.
type MomentumConfig struct {
	PriceChangeThreshold float64 `yaml:"price_change_threshold" default:"3.0" validate:"gt=0"`
	VolumeThreshold      float64 `yaml:"volume_threshold" default:"1.5" validate:"gt=0"`
	GapThreshold         float64 `yaml:"gap_threshold" default:"2.0" validate:"gt=0"`
	NearExtremePct       float64 `yaml:"near_extreme_pct" default:"5.0" validate:"gte=0,lt=100"`
	PremarketMovePct     float64 `yaml:"premarket_move_pct" default:"3.0" validate:"gt=0"`
}

// TechnicalsConfig holds indicator windows and trigger levels.
type TechnicalsConfig struct {
	RSIPeriod            int     `yaml:"rsi_period" default:"14" validate:"gte=2"`
	RSIOverbought        float64 `yaml:"rsi_overbought" default:"70" validate:"gt=0,lte=100"`
	RSIOversold          float64 `yaml:"rsi_oversold" default:"30" validate:"gte=0,ltfield=RSIOverbought"`
	ShortMA              int     `yaml:"short_ma" default:"50" validate:"gte=1"`
	LongMA               int     `yaml:"long_ma" default:"200" validate:"gtfield=ShortMA"`
	CrossoverLag         int     `yaml:"crossover_lag" default:"5" validate:"gte=1"`
	HighShortInterestPct float64 `yaml:"high_short_interest_pct" default:"10" validate:"gt=0"`
}

// OptionsConfig holds unusual-activity thresholds.
type OptionsConfig struct {
	Enabled         bool    `yaml:"enabled" default:"true"`
	MinVolume       int64   `yaml:"min_volume" default:"100" validate:"gte=0"`
	MinOpenInterest int64   `yaml:"min_open_interest" default:"50" validate:"gte=0"`
	UnusualRatio    float64 `yaml:"unusual_ratio" default:"1.0" validate:"gt=0"`
	HighRatio       float64 `yaml:"high_ratio" default:"2.0" validate:"gtefield=UnusualRatio"`
	MaxExpiryDays   int     `yaml:"max_expiry_days" default:"30" validate:"gte=1"`
	MaxExpiries     int     `yaml:"max_expiries" default:"5" validate:"gte=1"`
	RatioExpiries   int     `yaml:"ratio_expiries" default:"2" validate:"gte=1"`
}

// NewsConfig holds the keyword scorer settings.
type NewsConfig struct {
	LookbackHours   int      `yaml:"lookback_hours" default:"24" validate:"gte=1"`
	MaxPerTicker    int      `yaml:"max_per_ticker" default:"5" validate:"gte=1"`
	BullishKeywords []string `yaml:"bullish_keywords"`
	BearishKeywords []string `yaml:"bearish_keywords"`
}

// MacroConfig controls the economic and earnings calendar scan.
type MacroConfig struct {
	DaysAhead    int                 `yaml:"days_ahead" default:"5" validate:"gte=1"`
	Country      string              `yaml:"country" default:"US"`
	SectorMovers map[string][]string `yaml:"sector_movers"`
}

// MarketConfig lists the instruments behind the market context block.
type MarketConfig struct {
	SPY        string   `yaml:"spy" default:"SPY"`
	QQQ        string   `yaml:"qqq" default:"QQQ"`
	VIX        string   `yaml:"vix" default:"^VIX"`
	SectorETFs []string `yaml:"sector_etfs" default:"[\"SMH\",\"IGV\",\"XLE\",\"ITA\",\"ARKQ\"]"`
	VIXRiskOff float64  `yaml:"vix_risk_off" default:"25"`
	VIXRiskOn  float64  `yaml:"vix_risk_on" default:"15"`
	BroadMove  float64  `yaml:"broad_move" default:"0.5"`
}

// LimitsConfig caps each list in the scan bundle.
type LimitsConfig struct {
	News             int `yaml:"news" default:"15" validate:"gte=1"`
	Premarket        int `yaml:"premarket" default:"10" validate:"gte=1"`
	MacroEvents      int `yaml:"macro_events" default:"5" validate:"gte=1"`
	SectorEarnings   int `yaml:"sector_earnings" default:"5" validate:"gte=1"`
	OptionsPerTicker int `yaml:"options_per_ticker" default:"3" validate:"gte=1"`
}

// ReportConfig holds presentation thresholds.
type ReportConfig struct {
	CallPutBullishAbove float64 `yaml:"call_put_bullish_above" default:"1.5" validate:"gt=0"`
	CallPutBearishBelow float64 `yaml:"call_put_bearish_below" default:"0.7" validate:"gt=0,ltfield=CallPutBullishAbove"`
}

// DefaultBullishKeywords are matched case-insensitively against headline and summary.
var DefaultBullishKeywords = []string{
	"acquisition", "acquire", "merger", "deal", "partnership",
	"contract", "awarded", "patent", "fda approval", "breakthrough",
	"upgrade", "outperform", "buy rating", "price target raised",
	"beat", "exceeds", "record revenue", "guidance raised",
	"ai", "artificial intelligence", "data center", "quantum",
	"nuclear", "smr", "uranium", "robot", "autonomous",
}

// DefaultBearishKeywords are matched case-insensitively against headline and summary.
var DefaultBearishKeywords = []string{
	"downgrade", "sell rating", "price target cut", "misses",
	"lawsuit", "investigation", "recall", "warning", "layoffs",
	"guidance cut", "below expectations", "delays", "loss",
	"bankruptcy", "default", "fraud", "sec probe",
}

// DefaultSectorMovers maps large-cap reporters to the sectors their earnings move.
func DefaultSectorMovers() map[string][]string {
	return map[string][]string{
		"NVDA":  {"ai_semiconductors", "ai_infrastructure", "ai_software"},
		"AMD":   {"ai_semiconductors"},
		"MSFT":  {"ai_software", "ai_infrastructure"},
		"GOOGL": {"ai_software", "ai_infrastructure"},
		"AMZN":  {"ai_software", "ai_infrastructure"},
		"META":  {"ai_software"},
		"AAPL":  {"ai_semiconductors"},
		"TSLA":  {"robotics_defense"},
		"LMT":   {"defense_aerospace"},
		"RTX":   {"defense_aerospace"},
		"CCJ":   {"nuclear_energy"},
	}
}
