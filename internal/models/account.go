package models

import "time"

// Position represents a single held position. The ledger holds at most
// one open position per symbol; there is no pyramiding.
type Position struct {
	Symbol   string
	Quantity float64
	AvgPrice float64
	EntryAt  time.Time
}

// Value returns the mark-to-market value of the position at the given
// price, falling back to cost basis when no mark is available.
func (p Position) Value(mark float64) float64 {
	if mark <= 0 {
		mark = p.AvgPrice
	}
	return p.Quantity * mark
}

// AccountState is an immutable per-tick snapshot of the shared ledger.
// It is produced by the executor and read by strategists and the
// guardrail; mutations happen only inside the executor.
type AccountState struct {
	Equity        float64
	AvailableCash float64
	Positions     map[string]Position
	TradeCount    int
}

// PositionFor returns the open position for a symbol, if any.
func (a AccountState) PositionFor(symbol string) (Position, bool) {
	pos, ok := a.Positions[symbol]
	return pos, ok
}

// OpenPositions returns the number of currently open positions.
func (a AccountState) OpenPositions() int {
	return len(a.Positions)
}
