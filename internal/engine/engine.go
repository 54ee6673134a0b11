// Package engine wires detector, strategist and executor into the
// per-symbol tick pipeline and schedules fleets of symbols over a
// shared ledger.
package engine

import (
	"github.com/rs/zerolog"

	"tezaver/internal/broker"
	"tezaver/internal/errors"
	"tezaver/internal/logging"
	"tezaver/internal/models"
	"tezaver/internal/strategy"
)

// Detector produces market signals from a bar window.
type Detector interface {
	Analyze(symbol, timeframe string, window []models.Candle) []models.MarketSignal
}

// TickResult captures everything one tick produced. Pointer fields are
// nil at the stage the pipeline stopped: no signal, signal but no
// decision, or decision but nothing executed.
type TickResult struct {
	Signal   *models.MarketSignal
	Decision *models.TradeDecision
	Report   *models.ExecutionReport
	Account  models.AccountState
}

// Engine runs the tick pipeline for one symbol and timeframe.
type Engine struct {
	symbol     string
	timeframe  string
	detector   Detector
	strategist strategy.Strategist
	executor   broker.Executor
	logger     zerolog.Logger
}

// Config assembles an engine. Detector, Strategist and Executor are
// required; the fleet layer fills them in when it builds its slots.
type Config struct {
	Symbol     string
	Timeframe  string
	Detector   Detector
	Strategist strategy.Strategist
	Executor   broker.Executor
	Logger     zerolog.Logger
}

// New creates an engine for one symbol.
func New(cfg Config) (*Engine, error) {
	if cfg.Symbol == "" {
		return nil, errors.New("engine: symbol is required")
	}
	if cfg.Detector == nil || cfg.Strategist == nil || cfg.Executor == nil {
		return nil, errors.New("engine: detector, strategist and executor are required")
	}
	timeframe := cfg.Timeframe
	if timeframe == "" {
		timeframe = models.Timeframe1h
	}
	return &Engine{
		symbol:     cfg.Symbol,
		timeframe:  timeframe,
		detector:   cfg.Detector,
		strategist: cfg.Strategist,
		executor:   cfg.Executor,
		logger:     logging.WithSymbol(cfg.Logger, cfg.Symbol),
	}, nil
}

// Symbol returns the engine's symbol.
func (e *Engine) Symbol() string { return e.symbol }

// Timeframe returns the engine's timeframe.
func (e *Engine) Timeframe() string { return e.timeframe }

// Tick advances the pipeline by one bar: mark the ledger at the close,
// detect, decide, execute. The account snapshot in the result is taken
// after any execution, so its equity reflects this tick's prices.
func (e *Engine) Tick(data models.MarketData) (TickResult, error) {
	bar, ok := data.LastBar()
	if !ok {
		return TickResult{Account: e.executor.Balance()},
			errors.NewTickError(e.symbol, "detect", errors.ErrNoData)
	}
	if err := validateBar(bar); err != nil {
		return TickResult{Account: e.executor.Balance()},
			errors.NewTickError(e.symbol, "detect", err)
	}

	// Equity must be read at this tick's prices even when nothing
	// trades, so the mark goes in before anything else.
	e.executor.MarkPrice(e.symbol, bar.Close)
	account := e.executor.Balance()

	signal := e.selectSignal(data.Window, bar, account)
	result := TickResult{Signal: signal, Account: account}
	if signal == nil {
		return result, nil
	}

	decision := e.strategist.Evaluate(*signal, account)
	result.Decision = decision
	if decision == nil {
		result.Account = e.executor.Balance()
		return result, nil
	}

	report := e.executor.Execute(*decision, data.Outcome)
	result.Report = &report
	result.Account = e.executor.Balance()

	e.logger.Debug().
		Str("signal", string(signal.Type)).
		Str("action", string(decision.Action)).
		Str("status", string(report.Status)).
		Float64("equity", result.Account.Equity).
		Msg("Tick executed")
	return result, nil
}

// selectSignal returns the detector's signal for this bar, or a
// synthetic MONITOR signal when a position is open and the detector
// stayed quiet. Exits must be evaluated on every bar, not only on bars
// that happen to break out.
func (e *Engine) selectSignal(window []models.Candle, bar models.Candle, account models.AccountState) *models.MarketSignal {
	signals := e.detector.Analyze(e.symbol, e.timeframe, window)
	if len(signals) > 0 {
		return &signals[0]
	}

	if pos, held := account.PositionFor(e.symbol); held && pos.Quantity > 0 {
		return &models.MarketSignal{
			Symbol:    e.symbol,
			Timeframe: e.timeframe,
			Type:      models.SignalMonitor,
			Timestamp: bar.Timestamp,
			Price:     bar.Close,
		}
	}
	return nil
}

func validateBar(bar models.Candle) error {
	if bar.Close <= 0 || bar.Low <= 0 || bar.High < bar.Low {
		return errors.ErrMalformedBar
	}
	return nil
}
