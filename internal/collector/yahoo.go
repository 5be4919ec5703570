package collector

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"time"

	"MarketScanner/internal/model"
)

// DefaultYahooURL is the public Yahoo Finance host.
const DefaultYahooURL = "https://query1.finance.yahoo.com"

// YahooFetcher serves daily history and index quotes from the Yahoo chart API.
type YahooFetcher struct {
	api       *apiClient
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
}

// NewYahooFetcher creates a Yahoo Finance fetcher.
func NewYahooFetcher(opts ...ClientOption) *YahooFetcher {
	api := newAPIClient("yahoo", DefaultYahooURL, opts)
	api.userAgent = "Mozilla/5.0"
	return &YahooFetcher{
		api: api,
		SymbolMap: map[string]string{
			"VIX":   "^VIX",
			"SPX":   "^GSPC",
			"SP500": "^GSPC",
		},
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice  float64 `json:"regularMarketPrice"`
				ChartPreviousClose  float64 `json:"chartPreviousClose"`
				PreviousClose       float64 `json:"previousClose"`
				RegularMarketVolume int64   `json:"regularMarketVolume"`
				RegularMarketTime   int64   `json:"regularMarketTime"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []interface{} `json:"open"`
					High   []interface{} `json:"high"`
					Low    []interface{} `json:"low"`
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func toFloat(v interface{}) float64 {
	if v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

func at(vals []interface{}, i int) float64 {
	if i < len(vals) {
		return toFloat(vals[i])
	}
	return 0
}

func (f *YahooFetcher) fetchChart(ctx context.Context, symbol, interval, rng string) (*yahooChart, error) {
	path := "/v8/finance/chart/" + url.PathEscape(f.yahooSymbol(symbol))
	var chart yahooChart
	if err := f.api.getJSON(ctx, path, url.Values{"interval": {interval}, "range": {rng}}, &chart); err != nil {
		return nil, err
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, ErrNoData
	}
	return &chart, nil
}

func chartBars(chart *yahooChart) []model.OHLCV {
	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil
	}
	quote := result.Indicators.Quote[0]
	bars := make([]model.OHLCV, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		o, h, l, c := at(quote.Open, i), at(quote.High, i), at(quote.Low, i), at(quote.Close, i)
		if o == 0 && h == 0 && l == 0 && c == 0 {
			continue // skip null bars (holidays etc.)
		}
		bars = append(bars, model.OHLCV{
			Time:   time.Unix(ts, 0).UTC(),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: at(quote.Volume, i),
		})
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars
}

// FetchDailyBars implements HistorySource.
func (f *YahooFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error) {
	// Yahoo range: max "2y" for daily interval
	rng := "2y"
	if days <= 30 {
		rng = "1mo"
	} else if days <= 90 {
		rng = "3mo"
	} else if days <= 180 {
		rng = "6mo"
	} else if days <= 365 {
		rng = "1y"
	}
	chart, err := f.fetchChart(ctx, symbol, "1d", rng)
	if err != nil {
		return nil, err
	}
	bars := chartBars(chart)
	if len(bars) == 0 {
		return nil, ErrNoData
	}
	// Trim to requested count
	if len(bars) > days {
		bars = bars[len(bars)-days:]
	}
	return bars, nil
}

// FetchQuote implements QuoteSource from the chart metadata. It also covers
// indices such as ^VIX that equity quote endpoints do not serve.
func (f *YahooFetcher) FetchQuote(ctx context.Context, symbol string) (model.Quote, error) {
	chart, err := f.fetchChart(ctx, symbol, "1d", "1d")
	if err != nil {
		return model.Quote{}, err
	}
	meta := chart.Chart.Result[0].Meta
	if meta.RegularMarketPrice == 0 {
		return model.Quote{}, ErrNoData
	}
	q := model.Quote{
		Symbol:    symbol,
		Price:     meta.RegularMarketPrice,
		PrevClose: meta.ChartPreviousClose,
		Volume:    meta.RegularMarketVolume,
	}
	if q.PrevClose == 0 {
		q.PrevClose = meta.PreviousClose
	}
	if meta.RegularMarketTime > 0 {
		q.Timestamp = time.Unix(meta.RegularMarketTime, 0).UTC()
	}
	if bars := chartBars(chart); len(bars) > 0 {
		last := bars[len(bars)-1]
		q.Open, q.DayHigh, q.DayLow = last.Open, last.High, last.Low
	}
	return q, nil
}
