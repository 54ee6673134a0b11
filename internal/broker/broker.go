// Package broker provides the execution simulators and the shared
// account ledger they mutate.
package broker

import (
	"tezaver/internal/models"
)

// Executor applies trade decisions against the shared ledger.
//
// Execute consumes a decision at most once and always returns exactly
// one report; inconsistent decisions (insufficient cash, missing
// position) yield a rejected report, never an error. The outcome
// snapshot is used by the backtest executor and ignored by the
// live-style one.
type Executor interface {
	Execute(decision models.TradeDecision, outcome *models.OutcomeSnapshot) models.ExecutionReport
	// Balance returns the ledger snapshot for the current tick.
	Balance() models.AccountState
	// MarkPrice records the evaluation price for a symbol so equity
	// reflects mark-to-market at this tick's prices.
	MarkPrice(symbol string, price float64)
}
