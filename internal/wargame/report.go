package wargame

import (
	"time"

	"tezaver/internal/broker"
	"tezaver/internal/models"
)

// Report is the outcome of one completed run.
type Report struct {
	RunID      string
	ScenarioID string
	ProfileID  string
	Symbols    []string
	StartedAt  time.Time
	FinishedAt time.Time

	CapitalStart   float64
	CapitalEnd     float64
	ReturnPct      float64
	TradeCount     int
	WinRate        float64
	MaxDrawdownPct float64

	EquityCurve []float64
	Trades      []models.ExecutionReport
}

// buildReport summarizes the account after a run. Win rate is computed
// over realized trades only: fills that carry an exit reason.
func buildReport(runID string, scenario Scenario, account *broker.Account, startedAt, finishedAt time.Time) Report {
	trades := account.TradeHistory()
	equity := account.EquityHistory()

	realized, wins := 0, 0
	for _, trade := range trades {
		if trade.ExitReason == "" {
			continue
		}
		realized++
		if trade.PnL > 0 {
			wins++
		}
	}
	winRate := 0.0
	if realized > 0 {
		winRate = float64(wins) / float64(realized)
	}

	capitalEnd := account.Snapshot().Equity
	returnPct := 0.0
	if scenario.InitialCapital > 0 {
		returnPct = capitalEnd/scenario.InitialCapital - 1
	}

	return Report{
		RunID:          runID,
		ScenarioID:     scenario.ID,
		ProfileID:      scenario.ProfileID,
		Symbols:        scenario.Symbols,
		StartedAt:      startedAt,
		FinishedAt:     finishedAt,
		CapitalStart:   scenario.InitialCapital,
		CapitalEnd:     capitalEnd,
		ReturnPct:      returnPct,
		TradeCount:     len(trades),
		WinRate:        winRate,
		MaxDrawdownPct: broker.MaxDrawdownPct(equity),
		EquityCurve:    equity,
		Trades:         trades,
	}
}
