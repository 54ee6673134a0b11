package models

import "time"

// ExecStatus is the terminal status of a submitted decision.
type ExecStatus string

const (
	ExecFilled   ExecStatus = "FILLED"
	ExecRejected ExecStatus = "REJECTED"
	ExecSkipped  ExecStatus = "SKIPPED"
)

// ExecutionReport is the executor's record of one submitted decision.
// Exactly one report is produced per decision; reports flow outward to
// logging, persistence and the fleet's observability slots, never back
// into the engine.
type ExecutionReport struct {
	ID        string
	Symbol    string
	Action    TradeAction
	Status    ExecStatus
	Success   bool
	Timestamp time.Time

	FilledPrice    float64
	FilledQuantity float64
	Commission     float64

	// PnL fields are populated on closes and on outcome-resolved
	// trades. PnLPct is a fraction of the committed notional.
	PnL        float64
	PnLPct     float64
	ExitReason ExitReason

	// Err holds the rejection reason for unsuccessful executions.
	Err string

	// Meta echoes the numeric inputs the fill was resolved from
	// (future gain/drawdown, tp/sl levels) for downstream reporting.
	Meta map[string]float64
}
