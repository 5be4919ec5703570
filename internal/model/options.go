package model

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// OptionType is the side of an option chain.
type OptionType string

const (
	Call OptionType = "call"
	Put  OptionType = "put"
)

// OptionSignalType classifies unusual activity.
type OptionSignalType string

const (
	CallSweep     OptionSignalType = "call_sweep"
	PutSweep      OptionSignalType = "put_sweep"
	UnusualVolume OptionSignalType = "unusual_volume"
)

// SignalStrength grades an option signal.
type SignalStrength string

const (
	Strong   SignalStrength = "strong"
	Moderate SignalStrength = "moderate"
)

// OptionLeg is one contract row of a chain.
type OptionLeg struct {
	Strike       decimal.Decimal
	Volume       int64
	OpenInterest int64
	// ImpliedVolatility is a fraction (0.45 == 45%), zero when unknown.
	ImpliedVolatility float64
	LastPrice         float64
}

// OptionChain holds both sides of one expiry.
type OptionChain struct {
	Symbol string
	Expiry time.Time
	Calls  []OptionLeg
	Puts   []OptionLeg
}

// OptionSignal is an option leg whose volume/OI ratio crossed the unusual threshold.
type OptionSignal struct {
	Symbol            string           `json:"symbol"`
	Expiry            time.Time        `json:"expiry"`
	Strike            decimal.Decimal  `json:"strike"`
	OptionType        OptionType       `json:"option_type"`
	Volume            int64            `json:"volume"`
	OpenInterest      int64            `json:"open_interest"`
	VolumeOIRatio     float64          `json:"volume_oi_ratio"`
	ImpliedVolatility *float64         `json:"implied_volatility,omitempty"`
	LastPrice         *float64         `json:"last_price,omitempty"`
	SignalType        OptionSignalType `json:"signal_type"`
	Strength          SignalStrength   `json:"signal_strength"`
}

// CallPutRatio is the call volume over put volume of the nearest expiries.
// Infinite marks the all-calls case, where Ratio is left at zero.
type CallPutRatio struct {
	Symbol     string  `json:"symbol"`
	CallVolume int64   `json:"call_volume"`
	PutVolume  int64   `json:"put_volume"`
	Ratio      float64 `json:"ratio"`
	Infinite   bool    `json:"infinite,omitempty"`
}

// Value returns the ratio, +Inf for the all-calls sentinel.
func (r CallPutRatio) Value() float64 {
	if r.Infinite {
		return math.Inf(1)
	}
	return r.Ratio
}
