// Package strategy provides risk strategists that turn signals into
// sized trade decisions.
package strategy

import (
	"fmt"

	"tezaver/internal/models"
)

// Strategist evaluates one signal against an account snapshot and
// returns a decision, or nil when nothing should happen this tick.
type Strategist interface {
	Name() string
	Evaluate(signal models.MarketSignal, account models.AccountState) *models.TradeDecision
}

// RallyConfig holds the rally strategist's risk parameters.
type RallyConfig struct {
	// RiskPerTradePct is the fraction of available cash committed to
	// one entry (0.10 = 10%).
	RiskPerTradePct float64
	// StopLossPct and TakeProfitPct are fractional protective levels
	// relative to the entry price.
	StopLossPct   float64
	TakeProfitPct float64
	// MinConfidence is the minimum signal score for entries.
	MinConfidence float64
	// MinNotional is the smallest order value worth placing. Sizing
	// that falls below it escalates to all available cash; cash below
	// it means no trade.
	MinNotional float64
}

// DefaultRallyConfig returns the reference risk parameters.
func DefaultRallyConfig() RallyConfig {
	return RallyConfig{
		RiskPerTradePct: 0.10,
		StopLossPct:     0.05,
		TakeProfitPct:   0.15,
		MinConfidence:   50,
		MinNotional:     10,
	}
}

// RallyStrategist is the reference risk strategist. Holding a position
// it evaluates exits only (take profit, then stop loss); flat it sizes
// a new entry from qualifying rally signals.
type RallyStrategist struct {
	cfg RallyConfig
}

// NewRallyStrategist creates a rally strategist.
func NewRallyStrategist(cfg RallyConfig) *RallyStrategist {
	if cfg.RiskPerTradePct <= 0 {
		cfg.RiskPerTradePct = 0.10
	}
	if cfg.MinNotional <= 0 {
		cfg.MinNotional = 10
	}
	return &RallyStrategist{cfg: cfg}
}

// Name implements Strategist.
func (s *RallyStrategist) Name() string { return "RallyStrategist" }

// Evaluate implements Strategist.
func (s *RallyStrategist) Evaluate(signal models.MarketSignal, account models.AccountState) *models.TradeDecision {
	price := signal.Price
	if price <= 0 {
		// Cannot size or value a trade without a reference price.
		return nil
	}

	if pos, ok := account.PositionFor(signal.Symbol); ok && pos.Quantity > 0 {
		return s.evaluateExit(signal, pos, price)
	}
	return s.evaluateEntry(signal, account, price)
}

func (s *RallyStrategist) evaluateExit(signal models.MarketSignal, pos models.Position, price float64) *models.TradeDecision {
	pnlPct := (price - pos.AvgPrice) / pos.AvgPrice

	switch {
	case pnlPct >= s.cfg.TakeProfitPct:
		return &models.TradeDecision{
			Action:   models.ActionSell,
			Symbol:   signal.Symbol,
			Quantity: pos.Quantity,
			Price:    price,
			Exit:     models.ExitTakeProfit,
			Reason:   fmt.Sprintf("Take Profit Triggered (+%.1f%%)", pnlPct*100),
		}
	case pnlPct <= -s.cfg.StopLossPct:
		return &models.TradeDecision{
			Action:   models.ActionSell,
			Symbol:   signal.Symbol,
			Quantity: pos.Quantity,
			Price:    price,
			Exit:     models.ExitStopLoss,
			Reason:   fmt.Sprintf("Stop Loss Triggered (%.1f%%)", pnlPct*100),
		}
	}
	return nil // hold
}

func (s *RallyStrategist) evaluateEntry(signal models.MarketSignal, account models.AccountState, price float64) *models.TradeDecision {
	if !signal.Type.IsEntry() {
		return nil
	}
	if signal.Score < s.cfg.MinConfidence {
		return nil
	}

	cash := account.AvailableCash
	if cash < s.cfg.MinNotional {
		return nil
	}

	notional := cash * s.cfg.RiskPerTradePct
	if notional < s.cfg.MinNotional {
		notional = cash
	}

	return &models.TradeDecision{
		Action:        models.ActionBuy,
		Symbol:        signal.Symbol,
		Quantity:      notional / price,
		Price:         price,
		StopLoss:      price * (1 - s.cfg.StopLossPct),
		TakeProfit:    price * (1 + s.cfg.TakeProfitPct),
		StopLossPct:   s.cfg.StopLossPct,
		TakeProfitPct: s.cfg.TakeProfitPct,
		Size:          notional,
		Reason:        fmt.Sprintf("Rally Start (Score: %.2f)", signal.Score),
	}
}
