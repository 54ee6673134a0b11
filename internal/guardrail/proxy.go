package guardrail

import (
	"tezaver/internal/models"
	"tezaver/internal/strategy"
)

// DecisionCallback observes guardrail decisions as they are made. It
// is a side channel for diagnostics and must never influence whether a
// decision is allowed.
type DecisionCallback func(symbol string, decision Decision)

// StrategistProxy wraps a strategist and enforces guardrail policy on
// its entry decisions. Exits pass through untouched; blocked entries
// are silently discarded (the proxy returns nil, never an error).
type StrategistProxy struct {
	inner      strategy.Strategist
	controller *Controller
	onDecision DecisionCallback
}

// NewStrategistProxy wraps a strategist with the controller's policy.
// The callback may be nil.
func NewStrategistProxy(inner strategy.Strategist, controller *Controller, onDecision DecisionCallback) *StrategistProxy {
	return &StrategistProxy{inner: inner, controller: controller, onDecision: onDecision}
}

// Name implements strategy.Strategist.
func (p *StrategistProxy) Name() string { return p.inner.Name() }

// Evaluate implements strategy.Strategist.
func (p *StrategistProxy) Evaluate(signal models.MarketSignal, account models.AccountState) *models.TradeDecision {
	decision := p.inner.Evaluate(signal, account)
	if decision == nil || !decision.IsEntry() {
		return decision
	}

	g := p.controller.CheckOpenNewLong(decision.Symbol, account)
	if p.onDecision != nil {
		p.onDecision(decision.Symbol, g)
	}
	if !g.Allow {
		return nil
	}
	return decision
}
