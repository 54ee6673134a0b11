package strategy

import "tezaver/internal/models"

// CompositeStrategist asks an ordered list of sub-strategists for a
// decision and returns the first non-nil one.
//
// The ordering is priority, not consensus: earlier strategists win
// outright and later ones are never consulted for that tick. Merging
// or voting across sub-decisions is deliberately unsupported.
type CompositeStrategist struct {
	strategists []Strategist
}

// NewCompositeStrategist creates a composite over the given
// strategists in priority order.
func NewCompositeStrategist(strategists ...Strategist) *CompositeStrategist {
	return &CompositeStrategist{strategists: strategists}
}

// Add appends a strategist at the lowest priority.
func (c *CompositeStrategist) Add(s Strategist) {
	c.strategists = append(c.strategists, s)
}

// Name implements Strategist.
func (c *CompositeStrategist) Name() string { return "CompositeStrategist" }

// Evaluate implements Strategist. The winning decision's reason is
// annotated with the sub-strategist's name for traceability.
func (c *CompositeStrategist) Evaluate(signal models.MarketSignal, account models.AccountState) *models.TradeDecision {
	for _, s := range c.strategists {
		decision := s.Evaluate(signal, account)
		if decision != nil {
			decision.Reason = "[" + s.Name() + "] " + decision.Reason
			return decision
		}
	}
	return nil
}
