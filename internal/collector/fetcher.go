package collector

import (
	"context"
	"time"

	"MarketScanner/internal/model"
)

// QuoteSource returns the latest quote of a symbol.
type QuoteSource interface {
	FetchQuote(ctx context.Context, symbol string) (model.Quote, error)
}

// YearRangeSource returns the 52-week high and low of a symbol.
type YearRangeSource interface {
	FetchYearRange(ctx context.Context, symbol string) (model.YearRange, error)
}

// HistorySource returns up to `days` daily bars, oldest first.
type HistorySource interface {
	FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error)
}

// ShortInterestSource returns the latest short interest report of a symbol.
type ShortInterestSource interface {
	FetchShortInterest(ctx context.Context, symbol string) (model.ShortInterest, error)
}

// OptionsSource lists expiries and loads chains.
type OptionsSource interface {
	FetchExpirations(ctx context.Context, symbol string) ([]time.Time, error)
	FetchChain(ctx context.Context, symbol string, expiry time.Time) (model.OptionChain, error)
}

// NewsSource returns company news published between from and to.
type NewsSource interface {
	FetchNews(ctx context.Context, symbol string, from, to time.Time) ([]model.Article, error)
}

// CalendarSource serves the economic and earnings calendars.
type CalendarSource interface {
	FetchEconomicCalendar(ctx context.Context, from, to time.Time) ([]model.EconomicEntry, error)
	FetchEarningsCalendar(ctx context.Context, from, to time.Time) ([]model.EarningsEntry, error)
	// FetchEarningsHistory returns reported quarters, newest first.
	FetchEarningsHistory(ctx context.Context, symbol string) ([]model.EarningsSurprise, error)
}

const dateLayout = "2006-01-02"
