package broker

import (
	"time"

	"github.com/rs/zerolog"

	"tezaver/internal/models"
)

// OutcomeExecutor is the backtest execution simulator. Instead of
// holding a position across ticks it resolves each entry immediately
// from the bar-outcome snapshot: the forward-looking max gain and min
// drawdown over the decision's horizon decide whether the trade ended
// at its stop, its target, or the horizon.
//
// When both levels were touched inside the horizon the bar data cannot
// tell which came first, so the stop wins (conservative tie-break).
type OutcomeExecutor struct {
	account *Account
	logger  zerolog.Logger
	clock   func() time.Time
}

// NewOutcomeExecutor creates an outcome executor over the given
// ledger. The ledger may be shared with a fleet's reporting layer.
func NewOutcomeExecutor(account *Account, logger zerolog.Logger) *OutcomeExecutor {
	return &OutcomeExecutor{account: account, logger: logger, clock: time.Now}
}

// Account exposes the underlying ledger for reporting.
func (e *OutcomeExecutor) Account() *Account { return e.account }

// Balance implements Executor.
func (e *OutcomeExecutor) Balance() models.AccountState {
	return e.account.Snapshot()
}

// MarkPrice implements Executor. The outcome executor carries no open
// positions, so marks only matter for snapshot uniformity.
func (e *OutcomeExecutor) MarkPrice(symbol string, price float64) {
	e.account.SetMark(symbol, price)
}

// SetClock overrides the report timestamp source.
func (e *OutcomeExecutor) SetClock(clock func() time.Time) {
	if clock != nil {
		e.clock = clock
	}
}

// Execute implements Executor. Only entries are simulated; anything
// else is rejected since positions never persist across ticks here.
func (e *OutcomeExecutor) Execute(decision models.TradeDecision, outcome *models.OutcomeSnapshot) models.ExecutionReport {
	if !decision.IsEntry() {
		return models.ExecutionReport{
			ID:        newReportID(),
			Symbol:    decision.Symbol,
			Action:    decision.Action,
			Status:    models.ExecRejected,
			Timestamp: e.clock(),
			Err:       "only entries are simulated in outcome mode",
		}
	}

	var futureGain, futureDD float64
	if outcome != nil {
		futureGain = outcome.FutureMaxGainPct
		futureDD = outcome.FutureMinDrawdownPct
	}

	pnlPct, exitReason := resolveOutcome(futureGain, futureDD, decision.TakeProfitPct, decision.StopLossPct)

	size := decision.Size
	if size <= 0 {
		size = e.account.Snapshot().Equity
	}
	pnl := size * pnlPct

	e.account.applyPnL(pnl)

	report := models.ExecutionReport{
		ID:             newReportID(),
		Symbol:         decision.Symbol,
		Action:         decision.Action,
		Status:         models.ExecFilled,
		Success:        true,
		Timestamp:      e.clock(),
		FilledPrice:    decision.Price,
		FilledQuantity: decision.Quantity,
		PnL:            pnl,
		PnLPct:         pnlPct,
		ExitReason:     exitReason,
		Meta: map[string]float64{
			"future_max_gain_pct":     futureGain,
			"future_min_drawdown_pct": futureDD,
			"tp_pct":                  decision.TakeProfitPct,
			"sl_pct":                  decision.StopLossPct,
			"position_size":           size,
		},
	}
	e.account.recordTrade(report)

	e.logger.Debug().
		Str("symbol", decision.Symbol).
		Str("exit_reason", string(exitReason)).
		Float64("pnl_pct", pnlPct).
		Msg("Outcome trade resolved")
	return report
}

// resolveOutcome maps the forward-looking labels onto a realized PnL
// fraction and exit reason.
func resolveOutcome(futureGain, futureDD, tpPct, slPct float64) (float64, models.ExitReason) {
	stopHit := slPct > 0 && futureDD <= -slPct
	tpHit := tpPct > 0 && futureGain >= tpPct

	switch {
	case stopHit && tpHit:
		// Order of touches is unknowable from bar labels: assume the
		// stop fired first.
		return -slPct, models.ExitStopLossPriority
	case stopHit:
		return -slPct, models.ExitStopLoss
	case tpHit:
		// Gain beyond the target is never credited.
		return tpPct, models.ExitTakeProfit
	default:
		// Neither level was touched: the position rode to the horizon
		// and realized the raw gain, uncapped.
		return futureGain, models.ExitHorizon
	}
}
