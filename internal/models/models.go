// Package models provides domain models for the simulation engine.
package models

import (
	"time"
)

// Candle represents OHLCV data for a time period.
type Candle struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64

	// Optional indicator fields computed upstream by the feature
	// pipeline (rsi, macd, macd_signal, atr, ema_20, volume_rel, ...).
	// Nil when the data provider supplies raw bars only.
	Indicators map[string]float64
}

// Indicator returns a named indicator value and whether it is present.
func (c Candle) Indicator(name string) (float64, bool) {
	if c.Indicators == nil {
		return 0, false
	}
	v, ok := c.Indicators[name]
	return v, ok
}

// MarketData bundles the inputs the engine needs for one tick: the bar
// window ending at "now" and, in backtest mode, the outcome snapshot
// for any decision made on this bar.
type MarketData struct {
	Window  []Candle
	Outcome *OutcomeSnapshot
}

// LastBar returns the most recent bar of the window.
func (d *MarketData) LastBar() (Candle, bool) {
	if d == nil || len(d.Window) == 0 {
		return Candle{}, false
	}
	return d.Window[len(d.Window)-1], true
}

// OutcomeSnapshot carries the precomputed forward-looking labels used
// by the backtest executor to resolve a trade deterministically.
// FutureMaxGainPct is non-negative, FutureMinDrawdownPct non-positive;
// both are fractions over the decision's holding horizon.
type OutcomeSnapshot struct {
	FutureMaxGainPct     float64
	FutureMinDrawdownPct float64
	FutureBarsToPeak     int
}

// Timeframe identifiers as used by the data providers.
const (
	Timeframe15m = "15m"
	Timeframe1h  = "1h"
	Timeframe4h  = "4h"
	Timeframe1d  = "1d"
)
