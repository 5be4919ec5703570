package collector

import (
	"fmt"
	"net/http"
)

// Sources bundles the providers a scan draws from. A nil member disables the
// detectors that depend on it.
type Sources struct {
	Quotes        QuoteSource
	IndexQuotes   QuoteSource
	YearRange     YearRangeSource
	History       HistorySource
	ShortInterest ShortInterestSource
	Options       OptionsSource
	News          NewsSource
	Calendar      CalendarSource
}

// ProviderConfig is the per-provider subset of the application config.
type ProviderConfig struct {
	APIKey    string
	BaseURL   string
	RateLimit float64
	Burst     int
}

// SourcesConfig selects and configures the live providers.
type SourcesConfig struct {
	Finnhub       ProviderConfig
	Tradier       ProviderConfig
	Yahoo         ProviderConfig
	HistorySource string // "yahoo" or "tradier"
}

// NewSources wires Finnhub, Tradier and Yahoo behind the source interfaces.
// Without a Tradier key options are disabled, and history falls back to Yahoo.
func NewSources(cfg SourcesConfig, hc *http.Client, opts ...ClientOption) (*Sources, error) {
	if cfg.Finnhub.APIKey == "" {
		return nil, fmt.Errorf("finnhub api key is required")
	}
	with := func(p ProviderConfig) []ClientOption {
		return append([]ClientOption{
			WithHTTPClient(hc),
			WithBaseURL(p.BaseURL),
			WithRateLimit(p.RateLimit, p.Burst),
		}, opts...)
	}

	finnhub := NewFinnhubClient(cfg.Finnhub.APIKey, with(cfg.Finnhub)...)
	yahoo := NewYahooFetcher(with(cfg.Yahoo)...)

	s := &Sources{
		Quotes:        finnhub,
		IndexQuotes:   yahoo,
		YearRange:     finnhub,
		History:       yahoo,
		ShortInterest: finnhub,
		News:          finnhub,
		Calendar:      finnhub,
	}
	if cfg.Tradier.APIKey != "" {
		tradier := NewTradierClient(cfg.Tradier.APIKey, with(cfg.Tradier)...)
		s.Options = tradier
		if cfg.HistorySource == "tradier" {
			s.History = tradier
		}
	}
	return s, nil
}
