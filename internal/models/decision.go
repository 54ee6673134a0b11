package models

// TradeAction is the side of a trade decision.
type TradeAction string

const (
	ActionBuy  TradeAction = "BUY"
	ActionSell TradeAction = "SELL"
)

// ExitReason records how a simulated trade was closed.
type ExitReason string

const (
	ExitTakeProfit       ExitReason = "take_profit"
	ExitStopLoss         ExitReason = "stop_loss"
	ExitStopLossPriority ExitReason = "stop_loss_priority"
	ExitHorizon          ExitReason = "horizon"
	ExitSignal           ExitReason = "signal_exit"
)

// TradeDecision is the strategist's output: a sized command consumed
// at most once by the executor. Zero StopLoss/TakeProfit means the
// level is not set.
type TradeDecision struct {
	Action   TradeAction
	Symbol   string
	Quantity float64

	// Price is the reference price the decision was sized at.
	Price float64

	// Absolute protective levels for entries.
	StopLoss   float64
	TakeProfit float64

	// Fractional levels used by the outcome executor, and the notional
	// committed to the trade.
	StopLossPct   float64
	TakeProfitPct float64
	Size          float64

	// Exit carries the strategist's exit classification on SELL
	// decisions; empty for entries.
	Exit ExitReason

	Reason string
}

// IsEntry reports whether the decision opens a new long position.
func (d TradeDecision) IsEntry() bool {
	return d.Action == ActionBuy
}
