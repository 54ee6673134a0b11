package wargame

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tezaver/internal/broker"
	"tezaver/internal/engine"
	"tezaver/internal/errors"
	"tezaver/internal/feed"
	"tezaver/internal/guardrail"
	"tezaver/internal/logging"
	"tezaver/internal/models"
	"tezaver/internal/notify"
	"tezaver/internal/rally"
	"tezaver/internal/store"
	"tezaver/internal/strategy"
)

// RunnerConfig assembles a runner. Store and Notifier are optional
// observers; the run itself never depends on them.
type RunnerConfig struct {
	Scenario Scenario
	Feeds    map[string]*feed.ReplayFeed
	Store    store.Store
	Notifier notify.Notifier
	Logger   zerolog.Logger
}

// Runner drives a fleet over replay feeds until every feed is
// exhausted, then reports.
type Runner struct {
	scenario Scenario
	feeds    map[string]*feed.ReplayFeed
	fleet    *engine.Fleet
	account  *broker.Account
	executor broker.Executor
	store    store.Store
	notifier notify.Notifier
	logger   zerolog.Logger

	// virtualNow tracks the timestamp of the bar currently being
	// replayed, so fills are stamped in scenario time.
	virtualNow time.Time
}

type clockSettable interface {
	SetClock(func() time.Time)
}

// NewRunner validates the scenario and wires executor, guardrail and
// fleet for it.
func NewRunner(cfg RunnerConfig) (*Runner, error) {
	scenario := cfg.Scenario
	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	for _, symbol := range scenario.Symbols {
		if _, ok := cfg.Feeds[symbol]; !ok {
			return nil, errors.Wrap(errors.ErrNoData, "no feed for symbol "+symbol)
		}
	}
	if scenario.WindowSize <= 0 {
		scenario.WindowSize = 60
	}

	notifier := cfg.Notifier
	if notifier == nil {
		notifier = notify.NewNoOpNotifier()
	}

	r := &Runner{
		scenario: scenario,
		feeds:    cfg.Feeds,
		store:    cfg.Store,
		notifier: notifier,
		logger:   logging.WithScenario(cfg.Logger, scenario.ID),
	}

	switch scenario.Mode {
	case ModeOutcome:
		r.account = broker.NewAccount(scenario.InitialCapital)
		r.executor = broker.NewOutcomeExecutor(r.account, r.logger)
	default:
		paper := broker.NewPaperExecutor(broker.PaperConfig{
			InitialCapital: scenario.InitialCapital,
			CommissionRate: scenario.CommissionRate,
			Logger:         r.logger,
		})
		r.account = paper.Account()
		r.executor = paper
	}
	if settable, ok := r.executor.(clockSettable); ok {
		settable.SetClock(r.now)
	}

	var controller *guardrail.Controller
	if scenario.GuardrailDataDir != "" {
		controller = guardrail.NewController(guardrail.Config{
			MaxOpenPositions: scenario.MaxOpenPositions,
			MinAffinityScore: scenario.MinAffinityScore,
			DataDir:          scenario.GuardrailDataDir,
		}, scenario.Symbols, r.logger)
	}

	fleet, err := engine.NewFleet(engine.FleetConfig{
		Symbols:    scenario.Symbols,
		Timeframe:  scenario.Timeframe,
		Executor:   r.executor,
		Controller: controller,
		Logger:     r.logger,
		Clock:      r.now,
		NewDetector: func(string) engine.Detector {
			return rally.NewDetector(scenario.Detector)
		},
		NewStrategist: func(string) strategy.Strategist {
			return strategy.NewRallyStrategist(scenario.Risk)
		},
	})
	if err != nil {
		return nil, err
	}
	r.fleet = fleet
	return r, nil
}

func (r *Runner) now() time.Time {
	if r.virtualNow.IsZero() {
		return time.Now()
	}
	return r.virtualNow
}

// Fleet exposes the underlying fleet, mainly for inspection in tests
// and the CLI's post-run slot summary.
func (r *Runner) Fleet() *engine.Fleet { return r.fleet }

// Run replays every feed to exhaustion and returns the report. A
// canceled context stops the replay at the current bar; whatever ran
// is still reported alongside the context error.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	runID := "run_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	startedAt := time.Now()

	provider := func(symbol string) *models.MarketData {
		f, ok := r.feeds[symbol]
		if !ok || !f.HasNext() {
			return nil
		}
		data := f.Next(r.scenario.WindowSize)
		if last, ok := data.LastBar(); ok {
			r.virtualNow = last.Timestamp
		}
		return data
	}

	prevStats := make(map[string]engine.SlotStats, len(r.fleet.Slots()))
	var runErr error

	for r.remaining() > 0 {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		r.fleet.TickNext(provider)
		r.observeTick(ctx, runID, prevStats)
	}

	report := buildReport(runID, r.scenario, r.account, startedAt, time.Now())
	r.notifier.RunCompleted(report.ScenarioID, report.CapitalStart, report.CapitalEnd, report.TradeCount)
	r.logger.Info().
		Str("run_id", runID).
		Float64("capital_end", report.CapitalEnd).
		Int("trades", report.TradeCount).
		Float64("max_drawdown_pct", report.MaxDrawdownPct).
		Msg("Wargame run finished")

	r.persist(ctx, report)
	return report, runErr
}

func (r *Runner) remaining() int {
	total := 0
	for _, symbol := range r.scenario.Symbols {
		total += r.feeds[symbol].Remaining()
	}
	return total
}

// observeTick diffs slot stats against the previous tick and forwards
// new signals, trades and guardrail verdicts to the store and
// notifier.
func (r *Runner) observeTick(ctx context.Context, runID string, prevStats map[string]engine.SlotStats) {
	for _, slot := range r.fleet.Slots() {
		prev := prevStats[slot.Symbol]
		if slot.Stats == prev {
			continue
		}

		if slot.Stats.Signals > prev.Signals && slot.LastSignal != nil && r.store != nil {
			if err := r.store.SaveSignal(ctx, runID, *slot.LastSignal); err != nil {
				r.logger.Warn().Err(err).Msg("Failed to persist signal")
			}
		}
		if slot.Stats.Blocks > prev.Blocks && slot.LastGuardrail != nil {
			logging.LogGuardrailBlock(r.logger, slot.Symbol, slot.LastGuardrail.ReasonCode)
			r.notifier.TradeBlocked(slot.Symbol, *slot.LastGuardrail)
			if r.store != nil {
				event := store.GuardrailEvent{
					RunID:      runID,
					Symbol:     slot.Symbol,
					ReasonCode: slot.LastGuardrail.ReasonCode,
					Allowed:    slot.LastGuardrail.Allow,
					Timestamp:  r.now(),
				}
				if err := r.store.SaveGuardrailEvent(ctx, event); err != nil {
					r.logger.Warn().Err(err).Msg("Failed to persist guardrail event")
				}
			}
		}
		if slot.Stats.Executions > prev.Executions && slot.LastExecution != nil {
			exec := slot.LastExecution
			logging.LogExecution(r.logger, exec.Symbol, string(exec.Action), string(exec.Status),
				exec.FilledQuantity, exec.FilledPrice)
			r.notifier.TradeFilled(*exec)
		}
		prevStats[slot.Symbol] = slot.Stats
	}
}

// persist writes the run summary and its artifacts. Failures are
// logged, never fatal: the report already exists in memory.
func (r *Runner) persist(ctx context.Context, report Report) {
	if r.store == nil {
		return
	}

	record := store.RunRecord{
		ID:             report.RunID,
		ScenarioID:     report.ScenarioID,
		Symbols:        report.Symbols,
		StartedAt:      report.StartedAt,
		FinishedAt:     report.FinishedAt,
		CapitalStart:   report.CapitalStart,
		CapitalEnd:     report.CapitalEnd,
		TradeCount:     report.TradeCount,
		WinRate:        report.WinRate,
		MaxDrawdownPct: report.MaxDrawdownPct,
	}
	if err := r.store.SaveRun(ctx, record); err != nil {
		r.logger.Warn().Err(err).Msg("Failed to persist run")
	}
	if err := r.store.SaveEquityCurve(ctx, report.RunID, report.EquityCurve); err != nil {
		r.logger.Warn().Err(err).Msg("Failed to persist equity curve")
	}
	for _, trade := range report.Trades {
		if err := r.store.SaveExecution(ctx, report.RunID, trade); err != nil {
			r.logger.Warn().Err(err).Msg("Failed to persist execution")
		}
	}
}
