package model

import "time"

// Indicators carries the derived indicator set for one instrument.
// A nil field means the indicator could not be computed for the
// current window; consumers must treat that as data unavailable.
type Indicators struct {
	Oscillator      *float64 `json:"oscillator,omitempty"`       // momentum oscillator, 0-100
	VolatilityRange *float64 `json:"volatility_range,omitempty"` // average true range
	ShortMA         *float64 `json:"short_ma,omitempty"`
	LongMA          *float64 `json:"long_ma,omitempty"`
	FastTrend       *float64 `json:"fast_trend,omitempty"` // fast trend-following average
	SlowTrend       *float64 `json:"slow_trend,omitempty"`
	Divergence      *float64 `json:"divergence,omitempty"` // momentum divergence histogram
	BandWidth       *float64 `json:"band_width,omitempty"`
}

// MarketSnapshot is one instrument's price plus derived indicators at
// a point in time.
type MarketSnapshot struct {
	Symbol     string     `json:"symbol"`
	Price      float64    `json:"price"`
	Indicators Indicators `json:"indicators"`
	At         time.Time  `json:"at"`
}

// Candle is a single OHLCV bar used to build indicator windows.
type Candle struct {
	Symbol    string    `json:"symbol"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
	Timestamp time.Time `json:"timestamp"`
}
