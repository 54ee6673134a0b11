// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrMalformedBar       = errors.New("malformed bar data")
	ErrNoData             = errors.New("no data available")
	ErrScenarioIncomplete = errors.New("scenario incomplete")
)

// TickError represents a failure while processing a single tick. It
// isolates the failing symbol so a fleet run can log and continue.
type TickError struct {
	Symbol string
	Stage  string // "detect", "decide", "execute"
	Err    error
}

func (e *TickError) Error() string {
	return fmt.Sprintf("tick error [%s] at %s: %v", e.Symbol, e.Stage, e.Err)
}

func (e *TickError) Unwrap() error {
	return e.Err
}

// NewTickError creates a new TickError.
func NewTickError(symbol, stage string, err error) *TickError {
	return &TickError{Symbol: symbol, Stage: stage, Err: err}
}

// FeedError represents an error from a replay data feed.
type FeedError struct {
	Symbol    string
	Timeframe string
	Reason    string
	Err       error
}

func (e *FeedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("feed error [%s %s]: %s: %v", e.Symbol, e.Timeframe, e.Reason, e.Err)
	}
	return fmt.Sprintf("feed error [%s %s]: %s", e.Symbol, e.Timeframe, e.Reason)
}

func (e *FeedError) Unwrap() error {
	return e.Err
}

// Is reports whether target matches err or any error it wraps.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// New creates a new error with the given message.
func New(message string) error {
	return errors.New(message)
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
