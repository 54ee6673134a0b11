// Package feed provides replay data feeds for simulation runs.
package feed

import (
	"tezaver/internal/errors"
	"tezaver/internal/models"
)

// ReplayFeed walks a preloaded bar series one bar at a time, exposing
// at each step the trailing window a live engine would have seen. When
// outcome snapshots are supplied they are aligned by bar index so a
// backtest executor can resolve trades on the bar they were decided.
type ReplayFeed struct {
	symbol    string
	timeframe string
	bars      []models.Candle
	outcomes  []models.OutcomeSnapshot
	cursor    int
}

// NewReplayFeed creates a feed over the bar series. outcomes may be
// nil; when present it must align 1:1 with bars.
func NewReplayFeed(symbol, timeframe string, bars []models.Candle, outcomes []models.OutcomeSnapshot) (*ReplayFeed, error) {
	if len(bars) == 0 {
		return nil, &errors.FeedError{Symbol: symbol, Timeframe: timeframe, Reason: "no bars", Err: errors.ErrNoData}
	}
	if outcomes != nil && len(outcomes) != len(bars) {
		return nil, &errors.FeedError{Symbol: symbol, Timeframe: timeframe, Reason: "outcomes do not align with bars"}
	}
	return &ReplayFeed{symbol: symbol, timeframe: timeframe, bars: bars, outcomes: outcomes}, nil
}

// Symbol returns the feed's symbol.
func (f *ReplayFeed) Symbol() string { return f.symbol }

// Timeframe returns the feed's timeframe.
func (f *ReplayFeed) Timeframe() string { return f.timeframe }

// Total returns the number of bars in the series.
func (f *ReplayFeed) Total() int { return len(f.bars) }

// Remaining returns the number of bars not yet consumed, including the
// current one.
func (f *ReplayFeed) Remaining() int { return len(f.bars) - f.cursor }

// HasNext reports whether a bar remains to be served.
func (f *ReplayFeed) HasNext() bool { return f.cursor < len(f.bars) }

// Reset rewinds the feed to the first bar.
func (f *ReplayFeed) Reset() { f.cursor = 0 }

// WindowAt returns the market data for the current bar without
// consuming it: the trailing window of at most size bars ending at the
// cursor, plus the current bar's outcome snapshot when the feed has
// them. Returns nil when the feed is exhausted or size is not
// positive.
func (f *ReplayFeed) WindowAt(size int) *models.MarketData {
	if !f.HasNext() || size <= 0 {
		return nil
	}
	start := f.cursor + 1 - size
	if start < 0 {
		start = 0
	}
	data := &models.MarketData{Window: f.bars[start : f.cursor+1]}
	if f.outcomes != nil {
		outcome := f.outcomes[f.cursor]
		data.Outcome = &outcome
	}
	return data
}

// Advance moves to the next bar and reports whether one remains.
func (f *ReplayFeed) Advance() bool {
	if f.HasNext() {
		f.cursor++
	}
	return f.HasNext()
}

// Next serves the current bar's market data and consumes it. Returns
// nil once the series is exhausted.
func (f *ReplayFeed) Next(size int) *models.MarketData {
	data := f.WindowAt(size)
	if data != nil {
		f.cursor++
	}
	return data
}
