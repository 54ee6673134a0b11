// Package store provides data persistence implementations.
package store

import (
	"context"
	"time"

	"tezaver/internal/models"
)

// RunRecord summarizes one completed simulation run.
type RunRecord struct {
	ID             string
	ScenarioID     string
	Symbols        []string
	StartedAt      time.Time
	FinishedAt     time.Time
	CapitalStart   float64
	CapitalEnd     float64
	TradeCount     int
	WinRate        float64
	MaxDrawdownPct float64
}

// GuardrailEvent is one recorded guardrail verdict during a run.
type GuardrailEvent struct {
	RunID      string
	Symbol     string
	ReasonCode string
	Allowed    bool
	Timestamp  time.Time
}

// Store persists candles and simulation artifacts.
type Store interface {
	// Candle data.
	SaveCandles(ctx context.Context, symbol, timeframe string, candles []models.Candle) error
	LoadCandles(ctx context.Context, symbol, timeframe string, limit int) ([]models.Candle, error)

	// Per-run artifacts.
	SaveSignal(ctx context.Context, runID string, signal models.MarketSignal) error
	SaveExecution(ctx context.Context, runID string, report models.ExecutionReport) error
	SaveGuardrailEvent(ctx context.Context, event GuardrailEvent) error
	SaveEquityCurve(ctx context.Context, runID string, curve []float64) error
	LoadEquityCurve(ctx context.Context, runID string) ([]float64, error)

	// Run summaries.
	SaveRun(ctx context.Context, run RunRecord) error
	LoadRuns(ctx context.Context, limit int) ([]RunRecord, error)

	Close() error
}
