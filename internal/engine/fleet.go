package engine

import (
	"time"

	"github.com/rs/zerolog"

	"tezaver/internal/broker"
	"tezaver/internal/errors"
	"tezaver/internal/guardrail"
	"tezaver/internal/models"
	"tezaver/internal/rally"
	"tezaver/internal/strategy"
)

// DataProvider supplies the next tick's market data for a symbol. A
// nil return (or an empty window) means the symbol has nothing new
// this round.
type DataProvider func(symbol string) *models.MarketData

// SlotStats counts what passed through a slot's pipeline.
type SlotStats struct {
	Ticks      int
	Signals    int
	Decisions  int
	Executions int
	Blocks     int
	Errors     int
}

// SymbolSlot is one symbol's seat in the fleet: its engine plus the
// latest observations from each pipeline stage. Disabled slots are
// skipped by the scheduler but keep their state.
type SymbolSlot struct {
	Symbol  string
	Engine  *Engine
	Enabled bool

	LastTickAt    time.Time
	LastSignal    *models.MarketSignal
	LastDecision  *models.TradeDecision
	LastGuardrail *guardrail.Decision
	LastExecution *models.ExecutionReport
	Stats         SlotStats
}

// FleetConfig assembles a fleet. All slots share one executor, so the
// symbols trade against a single ledger. NewDetector and NewStrategist
// may be nil; the defaults build a rally detector and strategist with
// reference parameters.
type FleetConfig struct {
	Symbols   []string
	Timeframe string

	Executor   broker.Executor
	Controller *guardrail.Controller
	Logger     zerolog.Logger

	// Clock is the time source for slot observations. Replay runs
	// supply virtual time here; nil means wall-clock.
	Clock func() time.Time

	NewDetector   func(symbol string) Detector
	NewStrategist func(symbol string) strategy.Strategist
}

// Fleet schedules a set of symbol slots round-robin over a shared
// ledger. One call to TickNext services at most one slot, so no symbol
// can starve the others.
type Fleet struct {
	slots    []*SymbolSlot
	bySymbol map[string]*SymbolSlot
	cursor   int
	executor broker.Executor
	logger   zerolog.Logger
	clock    func() time.Time
}

// NewFleet builds a slot per symbol. When a guardrail controller is
// configured each strategist is wrapped in a proxy that records its
// verdicts on the slot.
func NewFleet(cfg FleetConfig) (*Fleet, error) {
	if len(cfg.Symbols) == 0 {
		return nil, errors.New("fleet: at least one symbol is required")
	}
	if cfg.Executor == nil {
		return nil, errors.New("fleet: executor is required")
	}

	newDetector := cfg.NewDetector
	if newDetector == nil {
		newDetector = defaultDetector
	}
	newStrategist := cfg.NewStrategist
	if newStrategist == nil {
		newStrategist = defaultStrategist
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	f := &Fleet{
		slots:    make([]*SymbolSlot, 0, len(cfg.Symbols)),
		bySymbol: make(map[string]*SymbolSlot, len(cfg.Symbols)),
		executor: cfg.Executor,
		logger:   cfg.Logger,
		clock:    clock,
	}

	for _, symbol := range cfg.Symbols {
		if _, dup := f.bySymbol[symbol]; dup {
			return nil, errors.New("fleet: duplicate symbol " + symbol)
		}
		slot := &SymbolSlot{Symbol: symbol, Enabled: true}

		strategist := newStrategist(symbol)
		if cfg.Controller != nil {
			strategist = guardrail.NewStrategistProxy(strategist, cfg.Controller, func(_ string, d guardrail.Decision) {
				slot.LastGuardrail = &d
				if !d.Allow {
					slot.Stats.Blocks++
				}
			})
		}

		eng, err := New(Config{
			Symbol:     symbol,
			Timeframe:  cfg.Timeframe,
			Detector:   newDetector(symbol),
			Strategist: strategist,
			Executor:   cfg.Executor,
			Logger:     cfg.Logger,
		})
		if err != nil {
			return nil, err
		}
		slot.Engine = eng
		f.slots = append(f.slots, slot)
		f.bySymbol[symbol] = slot
	}
	return f, nil
}

func defaultDetector(string) Detector {
	return rally.NewDetector(rally.Config{})
}

func defaultStrategist(string) strategy.Strategist {
	return strategy.NewRallyStrategist(strategy.DefaultRallyConfig())
}

// Slots returns the slots in scheduling order.
func (f *Fleet) Slots() []*SymbolSlot { return f.slots }

// Slot returns the slot for a symbol.
func (f *Fleet) Slot(symbol string) (*SymbolSlot, bool) {
	s, ok := f.bySymbol[symbol]
	return s, ok
}

// SetEnabled toggles a symbol's participation in scheduling and
// reports whether the symbol exists.
func (f *Fleet) SetEnabled(symbol string, enabled bool) bool {
	s, ok := f.bySymbol[symbol]
	if ok {
		s.Enabled = enabled
	}
	return ok
}

// Balance returns the shared ledger's state.
func (f *Fleet) Balance() models.AccountState {
	return f.executor.Balance()
}

// TickNext services the next enabled slot in round-robin order and
// reports whether a tick ran. The scan is bounded to one lap: with
// every slot disabled it returns false instead of spinning. A slot
// whose provider has no data this round is charged its turn anyway so
// a stalled feed cannot capture the rotation. Tick errors are logged
// and counted on the slot; they never stop the fleet.
func (f *Fleet) TickNext(provider DataProvider) bool {
	n := len(f.slots)
	for scanned := 0; scanned < n; scanned++ {
		idx := (f.cursor + scanned) % n
		slot := f.slots[idx]
		if !slot.Enabled {
			continue
		}
		f.cursor = (idx + 1) % n

		data := provider(slot.Symbol)
		if data == nil || len(data.Window) == 0 {
			return false
		}
		f.tickSlot(slot, *data)
		return true
	}
	return false
}

func (f *Fleet) tickSlot(slot *SymbolSlot, data models.MarketData) {
	slot.Stats.Ticks++
	slot.LastTickAt = f.clock()

	result, err := slot.Engine.Tick(data)
	if err != nil {
		slot.Stats.Errors++
		f.logger.Warn().Err(err).Str("symbol", slot.Symbol).Msg("Tick failed")
		return
	}

	if result.Signal != nil {
		slot.LastSignal = result.Signal
		slot.Stats.Signals++
	}
	if result.Decision != nil {
		slot.LastDecision = result.Decision
		slot.Stats.Decisions++
	}
	if result.Report != nil {
		slot.LastExecution = result.Report
		if result.Report.Success {
			slot.Stats.Executions++
		}
	}
}
