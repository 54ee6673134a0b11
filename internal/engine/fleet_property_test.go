package engine

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/rs/zerolog"

	"tezaver/internal/broker"
	"tezaver/internal/models"
)

// Properties of the round-robin scheduler: enabled slots are serviced
// fairly (tick counts never diverge by more than one) and a fleet with
// every slot disabled terminates instead of spinning.

func buildFleet(n int) *Fleet {
	symbols := make([]string, n)
	for i := range symbols {
		symbols[i] = fmt.Sprintf("SYM%02d", i)
	}
	f, err := NewFleet(FleetConfig{
		Symbols:     symbols,
		Executor:    broker.NewPaperExecutor(broker.PaperConfig{InitialCapital: 10000, Logger: zerolog.Nop()}),
		Logger:      zerolog.Nop(),
		NewDetector: func(string) Detector { return &scriptedDetector{} },
	})
	if err != nil {
		panic(err)
	}
	return f
}

func TestFleetSchedulingProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("enabled slots are serviced within one tick of each other", prop.ForAll(
		func(n, rounds int, disabledMask int) bool {
			f := buildFleet(n)
			enabled := 0
			for i, slot := range f.Slots() {
				if disabledMask&(1<<i) != 0 {
					f.SetEnabled(slot.Symbol, false)
				} else {
					enabled++
				}
			}
			if enabled == 0 {
				return !f.TickNext(func(string) *models.MarketData { return nil })
			}

			counts := make(map[string]int)
			provider := func(symbol string) *models.MarketData {
				counts[symbol]++
				data := tickData(100)
				return &data
			}
			for i := 0; i < rounds; i++ {
				if !f.TickNext(provider) {
					return false
				}
			}

			min, max := rounds, 0
			for _, slot := range f.Slots() {
				if !slot.Enabled {
					if counts[slot.Symbol] != 0 {
						return false
					}
					continue
				}
				c := counts[slot.Symbol]
				if c < min {
					min = c
				}
				if c > max {
					max = c
				}
			}
			return max-min <= 1
		},
		gen.IntRange(1, 8),
		gen.IntRange(1, 40),
		gen.IntRange(0, 255),
	))

	properties.Property("every TickNext call scans at most one full lap", prop.ForAll(
		func(n int) bool {
			f := buildFleet(n)
			calls := 0
			// A provider that never has data: each TickNext consults
			// exactly one slot and returns false.
			provider := func(string) *models.MarketData {
				calls++
				return nil
			}
			for i := 0; i < n*2; i++ {
				if f.TickNext(provider) {
					return false
				}
			}
			return calls == n*2
		},
		gen.IntRange(1, 8),
	))

	properties.TestingRun(t)
}
