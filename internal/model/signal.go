package model

import "time"

// Sentiment is the direction of a scored item.
type Sentiment string

const (
	SentimentBullish Sentiment = "bullish"
	SentimentBearish Sentiment = "bearish"
	SentimentNeutral Sentiment = "neutral"
)

// TechnicalSignal is the indicator snapshot of one ticker. Nil pointers mean
// the value could not be computed or fetched.
type TechnicalSignal struct {
	Symbol             string   `json:"symbol"`
	Price              float64  `json:"price"`
	RSI14              *float64 `json:"rsi_14,omitempty"`
	MA50               *float64 `json:"ma_50,omitempty"`
	MA200              *float64 `json:"ma_200,omitempty"`
	Above50MA          *bool    `json:"above_50ma,omitempty"`
	Above200MA         *bool    `json:"above_200ma,omitempty"`
	ShortInterestRatio *float64 `json:"short_interest_ratio,omitempty"`
	ShortPercentFloat  *float64 `json:"short_percent_float,omitempty"`
	Signals            []string `json:"signals"`
}

// MomentumResult flags unusual price action for one ticker.
type MomentumResult struct {
	Symbol    string   `json:"symbol"`
	Price     float64  `json:"price"`
	ChangePct float64  `json:"change_pct"`
	Volume    int64    `json:"volume"`
	AvgVolume int64    `json:"avg_volume"`
	YearHigh  *float64 `json:"year_high,omitempty"`
	YearLow   *float64 `json:"year_low,omitempty"`
	Signals   []string `json:"signals"`
}

// NewsSignal is a keyword-scored article. Only non-zero scores are kept.
type NewsSignal struct {
	Symbol      string    `json:"symbol"`
	Headline    string    `json:"headline"`
	Summary     string    `json:"summary,omitempty"`
	PublishedAt time.Time `json:"published_at"`
	Source      string    `json:"source"`
	URL         string    `json:"url"`
	Score       int       `json:"sentiment_score"`
	Sentiment   Sentiment `json:"sentiment"`
	Keywords    []string  `json:"keywords_matched"`
}

// Article is a raw news item as delivered by a news provider.
type Article struct {
	Headline    string
	Summary     string
	PublishedAt time.Time
	Source      string
	URL         string
}

// PremarketMover is a ticker moving at least the configured percentage.
type PremarketMover struct {
	Symbol      string  `json:"symbol"`
	Price       float64 `json:"price"`
	ChangePct   float64 `json:"change_pct"`
	Volume      int64   `json:"volume"`
	OnWatchlist bool    `json:"on_watchlist"`
}

// MarketSentiment summarizes the index tape.
type MarketSentiment string

const (
	RiskOn  MarketSentiment = "risk_on"
	RiskOff MarketSentiment = "risk_off"
	Neutral MarketSentiment = "neutral"
)

// MarketContext holds the broad market conditions of a scan.
type MarketContext struct {
	SPYPrice          float64            `json:"spy_price"`
	SPYChangePct      float64            `json:"spy_change_pct"`
	QQQPrice          float64            `json:"qqq_price"`
	QQQChangePct      float64            `json:"qqq_change_pct"`
	VIXLevel          float64            `json:"vix_level"`
	VIXChangePct      float64            `json:"vix_change_pct"`
	Sentiment         MarketSentiment    `json:"market_sentiment"`
	SectorPerformance map[string]float64 `json:"sector_performance"`
}
