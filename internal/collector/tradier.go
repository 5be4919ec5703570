package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"MarketScanner/internal/model"
)

// DefaultTradierURL is the production Tradier brokerage API.
const DefaultTradierURL = "https://api.tradier.com/v1"

// TradierClient serves option expirations, chains and daily history.
type TradierClient struct {
	api *apiClient
}

// NewTradierClient creates a client authenticating with a bearer token.
func NewTradierClient(token string, opts ...ClientOption) *TradierClient {
	api := newAPIClient("tradier", DefaultTradierURL, opts)
	api.authorize = func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return &TradierClient{api: api}
}

func (t *TradierClient) Name() string { return "tradier" }

// oneOrMany decodes a field Tradier sends as a single value, an array, or null.
type oneOrMany []json.RawMessage

func (o *oneOrMany) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*o = nil
	case data[0] == '[':
		var many []json.RawMessage
		if err := json.Unmarshal(data, &many); err != nil {
			return err
		}
		*o = many
	default:
		*o = oneOrMany{json.RawMessage(data)}
	}
	return nil
}

type tradierExpirations struct {
	Expirations *struct {
		Date oneOrMany `json:"date"`
	} `json:"expirations"`
}

// FetchExpirations implements OptionsSource. Dates come back in listing order.
func (t *TradierClient) FetchExpirations(ctx context.Context, symbol string) ([]time.Time, error) {
	var r tradierExpirations
	if err := t.api.getJSON(ctx, "/markets/options/expirations", url.Values{"symbol": {symbol}}, &r); err != nil {
		return nil, err
	}
	if r.Expirations == nil || len(r.Expirations.Date) == 0 {
		return nil, ErrNoData
	}
	out := make([]time.Time, 0, len(r.Expirations.Date))
	for _, raw := range r.Expirations.Date {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			continue
		}
		d, err := time.Parse(dateLayout, s)
		if err != nil {
			t.api.log.Debug().Str("symbol", symbol).Str("expiry", s).Msg("skipping bad expiry")
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

type tradierOption struct {
	Strike       json.Number `json:"strike"`
	Volume       int64       `json:"volume"`
	OpenInterest int64       `json:"open_interest"`
	Last         *float64    `json:"last"`
	OptionType   string      `json:"option_type"`
	Greeks       *struct {
		MidIV *float64 `json:"mid_iv"`
	} `json:"greeks"`
}

type tradierChain struct {
	Options *struct {
		Option oneOrMany `json:"option"`
	} `json:"options"`
}

// FetchChain implements OptionsSource. Malformed contracts are skipped individually.
func (t *TradierClient) FetchChain(ctx context.Context, symbol string, expiry time.Time) (model.OptionChain, error) {
	var r tradierChain
	params := url.Values{
		"symbol":     {symbol},
		"expiration": {expiry.Format(dateLayout)},
		"greeks":     {"true"},
	}
	if err := t.api.getJSON(ctx, "/markets/options/chains", params, &r); err != nil {
		return model.OptionChain{}, err
	}
	chain := model.OptionChain{Symbol: symbol, Expiry: expiry}
	if r.Options == nil {
		return chain, nil
	}
	for _, raw := range r.Options.Option {
		leg, typ, err := decodeTradierOption(raw)
		if err != nil {
			t.api.log.Debug().Str("symbol", symbol).Err(err).Msg("skipping malformed option")
			continue
		}
		if typ == model.Put {
			chain.Puts = append(chain.Puts, leg)
		} else {
			chain.Calls = append(chain.Calls, leg)
		}
	}
	return chain, nil
}

func decodeTradierOption(raw json.RawMessage) (model.OptionLeg, model.OptionType, error) {
	var o tradierOption
	if err := json.Unmarshal(raw, &o); err != nil {
		return model.OptionLeg{}, "", err
	}
	strike, err := decimal.NewFromString(o.Strike.String())
	if err != nil {
		return model.OptionLeg{}, "", fmt.Errorf("strike %q: %w", o.Strike, err)
	}
	if !strike.IsPositive() {
		return model.OptionLeg{}, "", fmt.Errorf("non-positive strike %s", strike)
	}
	if o.Volume < 0 || o.OpenInterest < 0 {
		return model.OptionLeg{}, "", fmt.Errorf("negative volume or open interest")
	}

	var typ model.OptionType
	switch o.OptionType {
	case "call":
		typ = model.Call
	case "put":
		typ = model.Put
	default:
		return model.OptionLeg{}, "", fmt.Errorf("unknown option type %q", o.OptionType)
	}

	leg := model.OptionLeg{Strike: strike, Volume: o.Volume, OpenInterest: o.OpenInterest}
	if o.Last != nil {
		leg.LastPrice = *o.Last
	}
	if o.Greeks != nil && o.Greeks.MidIV != nil {
		leg.ImpliedVolatility = *o.Greeks.MidIV
	}
	return leg, typ, nil
}

type tradierHistory struct {
	History *struct {
		Day oneOrMany `json:"day"`
	} `json:"history"`
}

type tradierDay struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// FetchDailyBars implements HistorySource.
func (t *TradierClient) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error) {
	end := time.Now().UTC()
	// calendar days for the requested trading days, plus slack for holidays
	start := end.AddDate(0, 0, -(days*7/5 + 10))
	params := url.Values{
		"symbol":   {symbol},
		"interval": {"daily"},
		"start":    {start.Format(dateLayout)},
		"end":      {end.Format(dateLayout)},
	}
	var r tradierHistory
	if err := t.api.getJSON(ctx, "/markets/history", params, &r); err != nil {
		return nil, err
	}
	if r.History == nil || len(r.History.Day) == 0 {
		return nil, ErrNoData
	}
	bars := make([]model.OHLCV, 0, len(r.History.Day))
	for _, raw := range r.History.Day {
		var d tradierDay
		if err := json.Unmarshal(raw, &d); err != nil {
			continue
		}
		ts, err := time.Parse(dateLayout, d.Date)
		if err != nil || d.Close <= 0 {
			continue
		}
		bars = append(bars, model.OHLCV{Time: ts, Open: d.Open, High: d.High, Low: d.Low, Close: d.Close, Volume: d.Volume})
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	if len(bars) > days {
		bars = bars[len(bars)-days:]
	}
	return bars, nil
}
