package engine

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"tezaver/internal/broker"
	"tezaver/internal/guardrail"
	"tezaver/internal/models"
	"tezaver/internal/strategy"
)

func quietProvider(symbol string) *models.MarketData {
	data := tickData(100)
	return &data
}

func newTestFleet(t *testing.T, symbols []string, detectors map[string]*scriptedDetector) *Fleet {
	t.Helper()
	f, err := NewFleet(FleetConfig{
		Symbols:  symbols,
		Executor: broker.NewPaperExecutor(broker.PaperConfig{InitialCapital: 10000, Logger: zerolog.Nop()}),
		Logger:   zerolog.Nop(),
		NewDetector: func(symbol string) Detector {
			if d, ok := detectors[symbol]; ok {
				return d
			}
			return &scriptedDetector{}
		},
	})
	if err != nil {
		t.Fatalf("NewFleet: %v", err)
	}
	return f
}

func TestFleetRejectsEmptyAndDuplicateSymbols(t *testing.T) {
	if _, err := NewFleet(FleetConfig{Executor: broker.NewPaperExecutor(broker.PaperConfig{Logger: zerolog.Nop()})}); err == nil {
		t.Error("expected error for empty symbol list")
	}
	if _, err := NewFleet(FleetConfig{
		Symbols:  []string{"BTCUSDT", "BTCUSDT"},
		Executor: broker.NewPaperExecutor(broker.PaperConfig{Logger: zerolog.Nop()}),
	}); err == nil {
		t.Error("expected error for duplicate symbol")
	}
}

func TestFleetRoundRobin(t *testing.T) {
	f := newTestFleet(t, []string{"AAA", "BBB", "CCC"}, nil)

	var order []string
	provider := func(symbol string) *models.MarketData {
		order = append(order, symbol)
		data := tickData(100)
		return &data
	}

	for i := 0; i < 6; i++ {
		if !f.TickNext(provider) {
			t.Fatalf("TickNext returned false on round %d", i)
		}
	}

	want := []string{"AAA", "BBB", "CCC", "AAA", "BBB", "CCC"}
	for i, sym := range want {
		if order[i] != sym {
			t.Fatalf("rotation order %v, want %v", order, want)
		}
	}
}

func TestFleetSkipsDisabledSlots(t *testing.T) {
	f := newTestFleet(t, []string{"AAA", "BBB", "CCC"}, nil)
	if !f.SetEnabled("BBB", false) {
		t.Fatal("SetEnabled returned false for a known symbol")
	}

	var order []string
	provider := func(symbol string) *models.MarketData {
		order = append(order, symbol)
		data := tickData(100)
		return &data
	}
	for i := 0; i < 4; i++ {
		f.TickNext(provider)
	}

	want := []string{"AAA", "CCC", "AAA", "CCC"}
	for i, sym := range want {
		if order[i] != sym {
			t.Fatalf("rotation order %v, want %v", order, want)
		}
	}
}

func TestFleetAllDisabled(t *testing.T) {
	f := newTestFleet(t, []string{"AAA", "BBB"}, nil)
	f.SetEnabled("AAA", false)
	f.SetEnabled("BBB", false)

	called := false
	if f.TickNext(func(string) *models.MarketData { called = true; return nil }) {
		t.Error("TickNext must return false with every slot disabled")
	}
	if called {
		t.Error("provider must not be consulted when no slot is enabled")
	}
}

func TestFleetEmptyDataChargesTurn(t *testing.T) {
	f := newTestFleet(t, []string{"AAA", "BBB"}, nil)

	var asked []string
	provider := func(symbol string) *models.MarketData {
		asked = append(asked, symbol)
		if symbol == "AAA" {
			return nil
		}
		data := tickData(100)
		return &data
	}

	if f.TickNext(provider) {
		t.Error("TickNext must report false when the slot had no data")
	}
	if !f.TickNext(provider) {
		t.Error("next call must move on to the other slot")
	}
	if len(asked) != 2 || asked[0] != "AAA" || asked[1] != "BBB" {
		t.Errorf("provider calls %v, want [AAA BBB]", asked)
	}
}

func TestFleetStampsSlotsWithConfiguredClock(t *testing.T) {
	replayTime := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	f, err := NewFleet(FleetConfig{
		Symbols:  []string{"AAA"},
		Executor: broker.NewPaperExecutor(broker.PaperConfig{InitialCapital: 10000, Logger: zerolog.Nop()}),
		Logger:   zerolog.Nop(),
		Clock:    func() time.Time { return replayTime },
		NewDetector: func(string) Detector {
			return &scriptedDetector{}
		},
	})
	if err != nil {
		t.Fatalf("NewFleet: %v", err)
	}

	if !f.TickNext(quietProvider) {
		t.Fatal("TickNext returned false")
	}
	slot, _ := f.Slot("AAA")
	if !slot.LastTickAt.Equal(replayTime) {
		t.Errorf("LastTickAt must follow the configured clock, got %v", slot.LastTickAt)
	}
}

func TestFleetTickErrorLoggedAndCounted(t *testing.T) {
	f := newTestFleet(t, []string{"AAA"}, nil)

	bad := models.MarketData{Window: []models.Candle{{Close: -1}}}
	if !f.TickNext(func(string) *models.MarketData { return &bad }) {
		t.Fatal("a failing tick still counts as a serviced turn")
	}

	slot, _ := f.Slot("AAA")
	if slot.Stats.Errors != 1 || slot.Stats.Ticks != 1 {
		t.Errorf("expected 1 tick and 1 error, got %+v", slot.Stats)
	}
}

func TestFleetRecordsSlotObservations(t *testing.T) {
	detectors := map[string]*scriptedDetector{
		"AAA": {queue: [][]models.MarketSignal{{entrySignalAt("AAA", 100, 80)}}},
	}
	f := newTestFleet(t, []string{"AAA"}, detectors)

	f.TickNext(quietProvider)

	slot, _ := f.Slot("AAA")
	if slot.LastSignal == nil || slot.LastDecision == nil || slot.LastExecution == nil {
		t.Fatalf("slot observations not recorded: %+v", slot)
	}
	if slot.Stats.Signals != 1 || slot.Stats.Decisions != 1 || slot.Stats.Executions != 1 {
		t.Errorf("unexpected stats %+v", slot.Stats)
	}
	if slot.LastTickAt.IsZero() {
		t.Error("LastTickAt not stamped")
	}
}

func TestFleetGuardrailBlockRecordedOnSlot(t *testing.T) {
	// No profile files exist for the symbol, so its affinity score
	// defaults to 0 and every entry is blocked on the affinity floor.
	controller := guardrail.NewController(guardrail.Config{DataDir: t.TempDir()}, []string{"AAA"}, zerolog.Nop())

	executor := broker.NewPaperExecutor(broker.PaperConfig{InitialCapital: 10000, Logger: zerolog.Nop()})
	f, err := NewFleet(FleetConfig{
		Symbols:    []string{"AAA"},
		Executor:   executor,
		Controller: controller,
		Logger:     zerolog.Nop(),
		NewDetector: func(string) Detector {
			return &scriptedDetector{queue: [][]models.MarketSignal{{entrySignalAt("AAA", 100, 80)}}}
		},
		NewStrategist: func(string) strategy.Strategist {
			return strategy.NewRallyStrategist(strategy.DefaultRallyConfig())
		},
	})
	if err != nil {
		t.Fatalf("NewFleet: %v", err)
	}

	f.TickNext(quietProvider)

	slot, _ := f.Slot("AAA")
	if slot.LastGuardrail == nil || slot.LastGuardrail.Allow {
		t.Fatalf("expected a recorded block, got %+v", slot.LastGuardrail)
	}
	if slot.LastGuardrail.ReasonCode != guardrail.ReasonBlockLowScore {
		t.Errorf("reason = %s, want %s", slot.LastGuardrail.ReasonCode, guardrail.ReasonBlockLowScore)
	}
	if slot.Stats.Blocks != 1 {
		t.Errorf("expected 1 block, got %d", slot.Stats.Blocks)
	}
	// A silent block produces no execution.
	if slot.LastExecution != nil {
		t.Errorf("blocked entry must not execute: %+v", slot.LastExecution)
	}
	if len(executor.Balance().Positions) != 0 {
		t.Error("ledger must stay flat after a block")
	}
}
