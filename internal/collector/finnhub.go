package collector

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"MarketScanner/internal/model"
)

// DefaultFinnhubURL is the public Finnhub REST endpoint.
const DefaultFinnhubURL = "https://finnhub.io/api/v1"

// FinnhubClient serves quotes, 52-week ranges, news, short interest and calendars.
type FinnhubClient struct {
	api *apiClient
}

// NewFinnhubClient creates a client authenticating with apiKey.
func NewFinnhubClient(apiKey string, opts ...ClientOption) *FinnhubClient {
	api := newAPIClient("finnhub", DefaultFinnhubURL, opts)
	api.authorize = func(req *http.Request) {
		req.Header.Set("X-Finnhub-Token", apiKey)
	}
	return &FinnhubClient{api: api}
}

func (f *FinnhubClient) Name() string { return "finnhub" }

type finnhubQuote struct {
	Current   float64  `json:"c"`
	Change    *float64 `json:"d"`
	ChangePct *float64 `json:"dp"`
	High      float64  `json:"h"`
	Low       float64  `json:"l"`
	Open      float64  `json:"o"`
	PrevClose float64  `json:"pc"`
	Timestamp int64    `json:"t"`
}

// FetchQuote implements QuoteSource. Finnhub answers unknown symbols with an all-zero quote.
func (f *FinnhubClient) FetchQuote(ctx context.Context, symbol string) (model.Quote, error) {
	var q finnhubQuote
	if err := f.api.getJSON(ctx, "/quote", url.Values{"symbol": {symbol}}, &q); err != nil {
		return model.Quote{}, err
	}
	if q.Current == 0 {
		return model.Quote{}, ErrNoData
	}
	out := model.Quote{
		Symbol:    symbol,
		Price:     q.Current,
		PrevClose: q.PrevClose,
		Open:      q.Open,
		DayHigh:   q.High,
		DayLow:    q.Low,
	}
	if q.ChangePct != nil {
		out.ChangePct = *q.ChangePct
	}
	if q.Timestamp > 0 {
		out.Timestamp = time.Unix(q.Timestamp, 0).UTC()
	}
	return out, nil
}

type finnhubMetrics struct {
	Metric struct {
		High *float64 `json:"52WeekHigh"`
		Low  *float64 `json:"52WeekLow"`
	} `json:"metric"`
}

// FetchYearRange implements YearRangeSource.
func (f *FinnhubClient) FetchYearRange(ctx context.Context, symbol string) (model.YearRange, error) {
	var m finnhubMetrics
	params := url.Values{"symbol": {symbol}, "metric": {"all"}}
	if err := f.api.getJSON(ctx, "/stock/metric", params, &m); err != nil {
		return model.YearRange{}, err
	}
	var yr model.YearRange
	if m.Metric.High != nil {
		yr.High = *m.Metric.High
	}
	if m.Metric.Low != nil {
		yr.Low = *m.Metric.Low
	}
	if yr.High == 0 && yr.Low == 0 {
		return model.YearRange{}, ErrNoData
	}
	return yr, nil
}

type finnhubArticle struct {
	Datetime int64  `json:"datetime"`
	Headline string `json:"headline"`
	Summary  string `json:"summary"`
	Source   string `json:"source"`
	URL      string `json:"url"`
}

// FetchNews implements NewsSource. from and to are sent as calendar dates.
func (f *FinnhubClient) FetchNews(ctx context.Context, symbol string, from, to time.Time) ([]model.Article, error) {
	var raw []finnhubArticle
	params := url.Values{
		"symbol": {symbol},
		"from":   {from.Format(dateLayout)},
		"to":     {to.Format(dateLayout)},
	}
	if err := f.api.getJSON(ctx, "/company-news", params, &raw); err != nil {
		return nil, err
	}
	out := make([]model.Article, 0, len(raw))
	for _, a := range raw {
		art := model.Article{
			Headline: a.Headline,
			Summary:  a.Summary,
			Source:   a.Source,
			URL:      a.URL,
		}
		if a.Datetime > 0 {
			art.PublishedAt = time.Unix(a.Datetime, 0).UTC()
		}
		out = append(out, art)
	}
	return out, nil
}

type finnhubShortInterest struct {
	Data []struct {
		Ratio         *float64 `json:"shortInterestRatio"`
		PercentFloat  *float64 `json:"shortInterestPercentFloat"`
		SettlementDay string   `json:"settlementDate"`
	} `json:"data"`
}

// FetchShortInterest implements ShortInterestSource using the most recent report.
func (f *FinnhubClient) FetchShortInterest(ctx context.Context, symbol string) (model.ShortInterest, error) {
	var r finnhubShortInterest
	if err := f.api.getJSON(ctx, "/stock/short-interest", url.Values{"symbol": {symbol}}, &r); err != nil {
		return model.ShortInterest{}, err
	}
	if len(r.Data) == 0 {
		return model.ShortInterest{}, ErrNoData
	}
	var si model.ShortInterest
	if r.Data[0].Ratio != nil {
		si.DaysToCover = *r.Data[0].Ratio
	}
	if r.Data[0].PercentFloat != nil {
		si.PercentOfFloat = *r.Data[0].PercentFloat
	}
	return si, nil
}

type finnhubEconomic struct {
	EconomicCalendar []struct {
		Country string `json:"country"`
		Event   string `json:"event"`
		Impact  string `json:"impact"`
		Time    string `json:"time"`
	} `json:"economicCalendar"`
}

// FetchEconomicCalendar implements CalendarSource. Rows with an unparseable time are skipped.
func (f *FinnhubClient) FetchEconomicCalendar(ctx context.Context, from, to time.Time) ([]model.EconomicEntry, error) {
	var r finnhubEconomic
	params := url.Values{"from": {from.Format(dateLayout)}, "to": {to.Format(dateLayout)}}
	if err := f.api.getJSON(ctx, "/calendar/economic", params, &r); err != nil {
		return nil, err
	}
	out := make([]model.EconomicEntry, 0, len(r.EconomicCalendar))
	for _, e := range r.EconomicCalendar {
		t, err := parseCalendarTime(e.Time)
		if err != nil {
			f.api.log.Debug().Str("event", e.Event).Str("time", e.Time).Msg("skipping economic row with bad time")
			continue
		}
		out = append(out, model.EconomicEntry{Time: t, Country: e.Country, Event: e.Event, Impact: e.Impact})
	}
	return out, nil
}

type finnhubEarnings struct {
	EarningsCalendar []struct {
		Date            string   `json:"date"`
		Symbol          string   `json:"symbol"`
		Hour            string   `json:"hour"`
		EPSEstimate     *float64 `json:"epsEstimate"`
		RevenueEstimate *float64 `json:"revenueEstimate"`
	} `json:"earningsCalendar"`
}

// FetchEarningsCalendar implements CalendarSource.
func (f *FinnhubClient) FetchEarningsCalendar(ctx context.Context, from, to time.Time) ([]model.EarningsEntry, error) {
	var r finnhubEarnings
	params := url.Values{"from": {from.Format(dateLayout)}, "to": {to.Format(dateLayout)}}
	if err := f.api.getJSON(ctx, "/calendar/earnings", params, &r); err != nil {
		return nil, err
	}
	out := make([]model.EarningsEntry, 0, len(r.EarningsCalendar))
	for _, e := range r.EarningsCalendar {
		d, err := time.Parse(dateLayout, e.Date)
		if err != nil || e.Symbol == "" {
			f.api.log.Debug().Str("symbol", e.Symbol).Str("date", e.Date).Msg("skipping malformed earnings row")
			continue
		}
		out = append(out, model.EarningsEntry{
			Symbol:          strings.ToUpper(e.Symbol),
			Date:            d,
			Hour:            e.Hour,
			EPSEstimate:     e.EPSEstimate,
			RevenueEstimate: e.RevenueEstimate,
		})
	}
	return out, nil
}

type finnhubSurprise struct {
	Actual   *float64 `json:"actual"`
	Estimate *float64 `json:"estimate"`
	Period   string   `json:"period"`
}

// FetchEarningsHistory implements CalendarSource.
func (f *FinnhubClient) FetchEarningsHistory(ctx context.Context, symbol string) ([]model.EarningsSurprise, error) {
	var raw []finnhubSurprise
	if err := f.api.getJSON(ctx, "/stock/earnings", url.Values{"symbol": {symbol}}, &raw); err != nil {
		return nil, err
	}
	out := make([]model.EarningsSurprise, 0, len(raw))
	for _, s := range raw {
		es := model.EarningsSurprise{Actual: s.Actual, Estimate: s.Estimate}
		if p, err := time.Parse(dateLayout, s.Period); err == nil {
			es.Period = p
		}
		out = append(out, es)
	}
	return out, nil
}

func parseCalendarTime(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t, nil
	}
	return time.Parse(dateLayout, s)
}
