package broker

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"tezaver/internal/models"
)

func TestOutcomeResolutionProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("stop always wins when both levels are touched", prop.ForAll(
		func(tp, sl, gainOver, ddOver float64) bool {
			gain := tp + gainOver
			dd := -(sl + ddOver)
			pnlPct, exit := resolveOutcome(gain, dd, tp, sl)
			return exit == models.ExitStopLossPriority && pnlPct == -sl
		},
		gen.Float64Range(0.01, 0.50),
		gen.Float64Range(0.01, 0.50),
		gen.Float64Range(0, 1.0),
		gen.Float64Range(0, 0.5),
	))

	properties.Property("realized gain never exceeds the take-profit target", prop.ForAll(
		func(tp, gainOver, dd float64) bool {
			gain := tp + gainOver
			pnlPct, _ := resolveOutcome(gain, dd, tp, 0.90)
			return pnlPct <= tp
		},
		gen.Float64Range(0.01, 0.50),
		gen.Float64Range(0, 2.0),
		gen.Float64Range(-0.89, 0),
	))

	properties.Property("realized loss never exceeds the stop distance", prop.ForAll(
		func(sl, ddOver, gain float64) bool {
			dd := -(sl + ddOver)
			pnlPct, _ := resolveOutcome(gain, dd, 0, sl)
			return pnlPct >= -sl
		},
		gen.Float64Range(0.01, 0.50),
		gen.Float64Range(0, 0.5),
		gen.Float64Range(-0.005, 0.005),
	))

	properties.TestingRun(t)
}

func TestMaxDrawdownProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	curveGen := gen.SliceOfN(20, gen.Float64Range(10, 1000))

	properties.Property("drawdown is never positive", prop.ForAll(
		func(curve []float64) bool {
			return MaxDrawdownPct(curve) <= 0
		},
		curveGen,
	))

	properties.Property("non-decreasing curves have zero drawdown", prop.ForAll(
		func(steps []float64) bool {
			curve := make([]float64, len(steps))
			eq := 100.0
			for i, s := range steps {
				eq += s
				curve[i] = eq
			}
			return MaxDrawdownPct(curve) == 0
		},
		gen.SliceOfN(20, gen.Float64Range(0, 50)),
	))

	properties.Property("drawdown is bounded by the worst trough over the global peak", prop.ForAll(
		func(curve []float64) bool {
			peak := curve[0]
			trough := curve[0]
			for _, eq := range curve {
				if eq > peak {
					peak = eq
				}
				if eq < trough {
					trough = eq
				}
			}
			bound := trough/peak - 1
			return MaxDrawdownPct(curve) >= bound-1e-12
		},
		gen.SliceOfN(20, gen.Float64Range(10, 1000)),
	))

	properties.TestingRun(t)
}

func TestMaxDrawdownWorkedExample(t *testing.T) {
	got := MaxDrawdownPct([]float64{100, 110, 105, 108})
	want := 105.0/110.0 - 1
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("MaxDrawdownPct = %f, want %f", got, want)
	}
}
