package broker

import (
	"tezaver/internal/models"
)

// Account is the single shared ledger behind an executor. It owns
// cash, open positions and the equity history; all mutation happens
// through executor fills, and reads hand out immutable snapshots.
//
// The engine is single-threaded by construction, so the ledger relies
// on call ordering rather than locking.
type Account struct {
	initialCapital float64
	cash           float64
	positions      map[string]models.Position
	marks          map[string]float64
	tradeCount     int
	equityHistory  []float64
	tradeHistory   []models.ExecutionReport
}

// NewAccount creates a ledger with the given starting capital. The
// equity history begins with the starting capital itself.
func NewAccount(initialCapital float64) *Account {
	return &Account{
		initialCapital: initialCapital,
		cash:           initialCapital,
		positions:      make(map[string]models.Position),
		marks:          make(map[string]float64),
		equityHistory:  []float64{initialCapital},
	}
}

// Snapshot returns the account state at current marks.
func (a *Account) Snapshot() models.AccountState {
	positions := make(map[string]models.Position, len(a.positions))
	equity := a.cash
	for sym, pos := range a.positions {
		positions[sym] = pos
		equity += pos.Value(a.marks[sym])
	}
	return models.AccountState{
		Equity:        equity,
		AvailableCash: a.cash,
		Positions:     positions,
		TradeCount:    a.tradeCount,
	}
}

// SetMark records the evaluation price for a symbol.
func (a *Account) SetMark(symbol string, price float64) {
	if price > 0 {
		a.marks[symbol] = price
	}
}

// Cash returns the available cash balance.
func (a *Account) Cash() float64 { return a.cash }

// InitialCapital returns the starting capital.
func (a *Account) InitialCapital() float64 { return a.initialCapital }

// Position returns the open position for a symbol, if any.
func (a *Account) Position(symbol string) (models.Position, bool) {
	pos, ok := a.positions[symbol]
	return pos, ok
}

// EquityHistory returns a copy of the equity curve: the starting
// capital followed by one entry per executed trade.
func (a *Account) EquityHistory() []float64 {
	history := make([]float64, len(a.equityHistory))
	copy(history, a.equityHistory)
	return history
}

// TradeHistory returns a copy of the executed trade reports.
func (a *Account) TradeHistory() []models.ExecutionReport {
	history := make([]models.ExecutionReport, len(a.tradeHistory))
	copy(history, a.tradeHistory)
	return history
}

// TradeCount returns the number of executed trades.
func (a *Account) TradeCount() int { return a.tradeCount }

// openPosition debits cash and books the position. The caller has
// already validated funds.
func (a *Account) openPosition(pos models.Position, cost float64) {
	a.cash -= cost
	a.positions[pos.Symbol] = pos
	a.marks[pos.Symbol] = pos.AvgPrice
}

// closePosition credits cash and reduces the position by the sold
// quantity, removing it only once fully sold.
func (a *Account) closePosition(symbol string, quantity, proceeds float64) {
	a.cash += proceeds
	pos, ok := a.positions[symbol]
	if !ok {
		return
	}
	pos.Quantity -= quantity
	if pos.Quantity <= 1e-9 {
		delete(a.positions, symbol)
		return
	}
	a.positions[symbol] = pos
}

// applyPnL settles a resolved trade directly against cash. Used by
// the outcome executor, where a position opens and resolves within
// one execution.
func (a *Account) applyPnL(pnl float64) {
	a.cash += pnl
}

// recordTrade appends the report to the trade history and the
// post-trade equity to the equity curve. Exactly one equity entry is
// appended per executed trade.
func (a *Account) recordTrade(report models.ExecutionReport) {
	a.tradeCount++
	a.tradeHistory = append(a.tradeHistory, report)
	a.equityHistory = append(a.equityHistory, a.Snapshot().Equity)
}

// MaxDrawdownPct computes the maximum peak-to-trough decline of an
// equity curve as a non-positive fraction. A curve that only makes new
// highs yields 0.
func MaxDrawdownPct(equityCurve []float64) float64 {
	if len(equityCurve) == 0 {
		return 0
	}
	peak := equityCurve[0]
	maxDD := 0.0
	for _, eq := range equityCurve {
		if eq > peak {
			peak = eq
		}
		if peak <= 0 {
			continue
		}
		dd := eq/peak - 1
		if dd < maxDD {
			maxDD = dd
		}
	}
	return maxDD
}
