// Package rally provides breakout signal detection over bar windows.
package rally

import (
	"math"

	"tezaver/internal/models"
)

// Detector scans a bar window for the start of a rally: a close that
// has just crossed the configured gain threshold measured from the
// rolling minimum low of the window.
//
// Analyze is a pure function of its inputs; the detector holds no
// per-tick state, so the same window always yields the same signals.
type Detector struct {
	threshold float64
	lookback  int
}

// Config holds detector parameters.
type Config struct {
	// RallyThreshold is the fractional gain from the window minimum
	// required to qualify as a breakout (0.02 = 2%).
	RallyThreshold float64
	// LookbackWindow is the number of bars the rolling minimum spans.
	LookbackWindow int
}

// NewDetector creates a rally detector with the given parameters.
// Non-positive values fall back to the reference defaults.
func NewDetector(cfg Config) *Detector {
	threshold := cfg.RallyThreshold
	if threshold <= 0 {
		threshold = 0.02
	}
	lookback := cfg.LookbackWindow
	if lookback < 2 {
		lookback = 50
	}
	return &Detector{threshold: threshold, lookback: lookback}
}

// Threshold returns the configured breakout threshold.
func (d *Detector) Threshold() float64 { return d.threshold }

// Lookback returns the configured lookback window length.
func (d *Detector) Lookback() int { return d.lookback }

// Analyze inspects the window ending at the current tick and returns
// at most one RALLY_START signal. A signal fires only on the first bar
// whose gain from the window's minimum low reaches the threshold; while
// the gain stays above threshold on later bars the run is considered
// already signaled and nothing is emitted.
//
// Windows shorter than the lookback return no signals and no error.
func (d *Detector) Analyze(symbol, timeframe string, window []models.Candle) []models.MarketSignal {
	if len(window) < d.lookback {
		return nil
	}

	bars := window[len(window)-d.lookback:]
	current := bars[len(bars)-1]

	minLow := math.Inf(1)
	for _, b := range bars {
		if b.Low < minLow {
			minLow = b.Low
		}
	}
	if minLow <= 0 || math.IsInf(minLow, 1) {
		return nil
	}

	gain := (current.Close - minLow) / minLow
	if gain < d.threshold {
		return nil
	}

	// Edge detection: the previous close is compared against the same
	// reference minimum, so the signal fires exactly once per
	// contiguous run above the threshold.
	prev := bars[len(bars)-2]
	prevGain := (prev.Close - minLow) / minLow
	if prevGain >= d.threshold {
		return nil
	}

	return []models.MarketSignal{{
		Symbol:    symbol,
		Timeframe: timeframe,
		Type:      models.SignalRallyStart,
		Timestamp: current.Timestamp,
		Score:     score(gain, d.threshold),
		Price:     current.Close,
		RallyLow:  minLow,
		GainPct:   gain,
	}}
}

// score maps gain relative to threshold onto [0, 100]: exactly at
// threshold scores 50, twice the threshold or more scores 100.
func score(gain, threshold float64) float64 {
	s := (gain / threshold) * 50.0
	if s > 100 {
		return 100
	}
	return s
}
