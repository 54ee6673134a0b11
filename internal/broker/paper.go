package broker

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tezaver/internal/models"
)

// PaperExecutor is the live-style execution simulator: it fills
// decisions at their reference price against the shared ledger,
// booking positions on BUY and realizing PnL on SELL.
type PaperExecutor struct {
	account        *Account
	commissionRate float64
	logger         zerolog.Logger
	clock          func() time.Time
}

// PaperConfig holds configuration for the paper executor.
type PaperConfig struct {
	InitialCapital float64
	// CommissionRate is the fee charged per fill as a fraction of
	// notional (0.001 = 10 bps, the spot default).
	CommissionRate float64
	Logger         zerolog.Logger
}

// NewPaperExecutor creates a paper executor over a fresh ledger.
func NewPaperExecutor(cfg PaperConfig) *PaperExecutor {
	capital := cfg.InitialCapital
	if capital <= 0 {
		capital = 10000
	}
	return &PaperExecutor{
		account:        NewAccount(capital),
		commissionRate: cfg.CommissionRate,
		logger:         cfg.Logger,
		clock:          time.Now,
	}
}

// Account exposes the underlying ledger for reporting.
func (p *PaperExecutor) Account() *Account { return p.account }

// Balance implements Executor.
func (p *PaperExecutor) Balance() models.AccountState {
	return p.account.Snapshot()
}

// MarkPrice implements Executor.
func (p *PaperExecutor) MarkPrice(symbol string, price float64) {
	p.account.SetMark(symbol, price)
}

// SetClock overrides the report timestamp source. Used by replay runs
// to stamp reports with virtual time.
func (p *PaperExecutor) SetClock(clock func() time.Time) {
	if clock != nil {
		p.clock = clock
	}
}

// Execute implements Executor. The ledger is mutated only after the
// decision has been fully validated.
func (p *PaperExecutor) Execute(decision models.TradeDecision, _ *models.OutcomeSnapshot) models.ExecutionReport {
	switch decision.Action {
	case models.ActionBuy:
		return p.executeBuy(decision)
	case models.ActionSell:
		return p.executeSell(decision)
	default:
		return p.reject(decision, fmt.Sprintf("unknown action %q", decision.Action))
	}
}

func (p *PaperExecutor) executeBuy(decision models.TradeDecision) models.ExecutionReport {
	if decision.Price <= 0 || decision.Quantity <= 0 {
		return p.reject(decision, "missing price or quantity")
	}
	if _, held := p.account.Position(decision.Symbol); held {
		return p.reject(decision, "position already open")
	}

	cost := decision.Quantity * decision.Price
	fee := cost * p.commissionRate
	if p.account.Cash() < cost+fee {
		return p.reject(decision, fmt.Sprintf("insufficient funds: need %.2f, have %.2f", cost+fee, p.account.Cash()))
	}

	p.account.openPosition(models.Position{
		Symbol:   decision.Symbol,
		Quantity: decision.Quantity,
		AvgPrice: decision.Price,
		EntryAt:  p.clock(),
	}, cost+fee)

	report := p.fill(decision, decision.Price, decision.Quantity, fee)
	p.account.recordTrade(report)
	p.logger.Debug().
		Str("symbol", decision.Symbol).
		Float64("quantity", decision.Quantity).
		Float64("price", decision.Price).
		Msg("Paper buy filled")
	return report
}

func (p *PaperExecutor) executeSell(decision models.TradeDecision) models.ExecutionReport {
	if decision.Price <= 0 || decision.Quantity <= 0 {
		return p.reject(decision, "missing price or quantity")
	}
	pos, held := p.account.Position(decision.Symbol)
	if !held || pos.Quantity < decision.Quantity {
		return p.reject(decision, "insufficient position")
	}

	revenue := decision.Quantity * decision.Price
	fee := revenue * p.commissionRate
	p.account.closePosition(decision.Symbol, decision.Quantity, revenue-fee)

	report := p.fill(decision, decision.Price, decision.Quantity, fee)
	report.PnL = (decision.Price-pos.AvgPrice)*decision.Quantity - fee
	report.PnLPct = (decision.Price - pos.AvgPrice) / pos.AvgPrice
	report.ExitReason = decision.Exit
	if report.ExitReason == "" {
		report.ExitReason = models.ExitSignal
	}

	p.account.recordTrade(report)
	p.logger.Debug().
		Str("symbol", decision.Symbol).
		Float64("pnl", report.PnL).
		Str("exit_reason", string(report.ExitReason)).
		Msg("Paper sell filled")
	return report
}

func (p *PaperExecutor) fill(decision models.TradeDecision, price, qty, fee float64) models.ExecutionReport {
	return models.ExecutionReport{
		ID:             newReportID(),
		Symbol:         decision.Symbol,
		Action:         decision.Action,
		Status:         models.ExecFilled,
		Success:        true,
		Timestamp:      p.clock(),
		FilledPrice:    price,
		FilledQuantity: qty,
		Commission:     fee,
	}
}

func (p *PaperExecutor) reject(decision models.TradeDecision, reason string) models.ExecutionReport {
	p.logger.Debug().
		Str("symbol", decision.Symbol).
		Str("action", string(decision.Action)).
		Str("reason", reason).
		Msg("Paper execution rejected")
	return models.ExecutionReport{
		ID:        newReportID(),
		Symbol:    decision.Symbol,
		Action:    decision.Action,
		Status:    models.ExecRejected,
		Timestamp: p.clock(),
		Err:       reason,
	}
}

func newReportID() string {
	return "sim_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
