package models

import "time"

// SignalType classifies a market signal.
type SignalType string

const (
	// SignalRallyStart marks the first bar of a qualifying breakout
	// from a rolling local minimum.
	SignalRallyStart SignalType = "RALLY_START"
	// SignalMonitor is a synthetic signal injected while a position is
	// open so the strategist can evaluate exits on bars without a
	// fresh detector signal.
	SignalMonitor SignalType = "MONITOR"
)

// IsEntry reports whether the signal type may open a new position.
func (t SignalType) IsEntry() bool {
	return t == SignalRallyStart
}

// MarketSignal is the detector's output: a read-only observation for a
// single bar. A new signal is created per tick; signals are never
// mutated or reused.
type MarketSignal struct {
	Symbol    string
	Timeframe string
	Type      SignalType
	Timestamp time.Time

	// Score is the detector's confidence in [0, 100].
	Score float64

	// Price is the close of the bar the signal fired on. RallyLow is
	// the reference minimum of the lookback window and GainPct the
	// fractional gain from it.
	Price    float64
	RallyLow float64
	GainPct  float64
}
