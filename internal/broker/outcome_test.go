package broker

import (
	"math"
	"testing"

	"github.com/rs/zerolog"

	"tezaver/internal/models"
)

func newTestOutcome(capital float64) *OutcomeExecutor {
	return NewOutcomeExecutor(NewAccount(capital), zerolog.Nop())
}

func outcomeEntry(size, tpPct, slPct float64) models.TradeDecision {
	return models.TradeDecision{
		Action:        models.ActionBuy,
		Symbol:        "BTCUSDT",
		Quantity:      1,
		Price:         100,
		Size:          size,
		TakeProfitPct: tpPct,
		StopLossPct:   slPct,
	}
}

func snapshot(gain, dd float64) *models.OutcomeSnapshot {
	return &models.OutcomeSnapshot{FutureMaxGainPct: gain, FutureMinDrawdownPct: dd}
}

func TestResolveOutcome(t *testing.T) {
	cases := []struct {
		name       string
		gain, dd   float64
		tp, sl     float64
		wantPnlPct float64
		wantExit   models.ExitReason
	}{
		{"stop only", 0.05, -0.08, 0.15, 0.05, -0.05, models.ExitStopLoss},
		{"tp only", 0.20, -0.02, 0.15, 0.05, 0.15, models.ExitTakeProfit},
		{"both hit stop wins", 0.20, -0.08, 0.15, 0.05, -0.05, models.ExitStopLossPriority},
		{"neither rides to horizon", 0.08, -0.02, 0.15, 0.05, 0.08, models.ExitHorizon},
		{"horizon loss", -0.03, -0.03, 0.15, 0.05, -0.03, models.ExitHorizon},
		{"dd exactly at stop", 0.01, -0.05, 0.15, 0.05, -0.05, models.ExitStopLoss},
		{"gain exactly at tp", 0.15, -0.01, 0.15, 0.05, 0.15, models.ExitTakeProfit},
		{"no stop configured", 0.01, -0.50, 0.15, 0, 0.01, models.ExitHorizon},
		{"no tp configured", 0.50, -0.01, 0, 0.05, 0.50, models.ExitHorizon},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pnlPct, exit := resolveOutcome(tc.gain, tc.dd, tc.tp, tc.sl)
			if math.Abs(pnlPct-tc.wantPnlPct) > 1e-12 {
				t.Errorf("pnlPct = %f, want %f", pnlPct, tc.wantPnlPct)
			}
			if exit != tc.wantExit {
				t.Errorf("exit = %s, want %s", exit, tc.wantExit)
			}
		})
	}
}

func TestOutcomeExecuteBooksPnL(t *testing.T) {
	e := newTestOutcome(10000)

	report := e.Execute(outcomeEntry(1000, 0.15, 0.05), snapshot(0.20, -0.02))
	if !report.Success {
		t.Fatalf("expected fill, got %+v", report)
	}
	if math.Abs(report.PnL-150) > 1e-9 {
		t.Errorf("expected pnl 150, got %f", report.PnL)
	}
	if math.Abs(e.Balance().Equity-10150) > 1e-9 {
		t.Errorf("expected equity 10150, got %f", e.Balance().Equity)
	}
	if report.Meta["position_size"] != 1000 {
		t.Errorf("meta position_size = %f, want 1000", report.Meta["position_size"])
	}
}

func TestOutcomeSizeFallsBackToEquity(t *testing.T) {
	e := newTestOutcome(10000)

	report := e.Execute(outcomeEntry(0, 0, 0.05), snapshot(0.01, -0.10))
	if math.Abs(report.PnL-(-500)) > 1e-9 {
		t.Errorf("expected pnl -500 on full equity, got %f", report.PnL)
	}
}

func TestOutcomeRejectsNonEntry(t *testing.T) {
	e := newTestOutcome(10000)

	report := e.Execute(models.TradeDecision{Action: models.ActionSell, Symbol: "BTCUSDT"}, nil)
	if report.Success || report.Status != models.ExecRejected {
		t.Fatalf("expected rejection, got %+v", report)
	}
}

func TestOutcomeNilSnapshotIsFlatHorizon(t *testing.T) {
	e := newTestOutcome(10000)

	report := e.Execute(outcomeEntry(1000, 0.15, 0.05), nil)
	if report.ExitReason != models.ExitHorizon || report.PnL != 0 {
		t.Errorf("nil snapshot must resolve flat at horizon, got %+v", report)
	}
}
