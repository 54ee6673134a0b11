// Package notify renders simulation events for the terminal.
package notify

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"tezaver/internal/guardrail"
	"tezaver/internal/models"
)

// Notifier receives simulation events as they happen.
type Notifier interface {
	TradeFilled(report models.ExecutionReport)
	TradeBlocked(symbol string, decision guardrail.Decision)
	RunCompleted(scenarioID string, capitalStart, capitalEnd float64, trades int)
	Error(context string, err error)
}

// TerminalNotifier prints events with color to a writer.
type TerminalNotifier struct {
	out io.Writer

	green  *color.Color
	red    *color.Color
	yellow *color.Color
	cyan   *color.Color
}

// NewTerminalNotifier creates a notifier writing to out. A nil out
// defaults to stdout.
func NewTerminalNotifier(out io.Writer) *TerminalNotifier {
	if out == nil {
		out = os.Stdout
	}
	return &TerminalNotifier{
		out:    out,
		green:  color.New(color.FgGreen),
		red:    color.New(color.FgRed),
		yellow: color.New(color.FgYellow),
		cyan:   color.New(color.FgCyan, color.Bold),
	}
}

// TradeFilled implements Notifier.
func (n *TerminalNotifier) TradeFilled(report models.ExecutionReport) {
	c := n.green
	if report.PnL < 0 {
		c = n.red
	}

	label := string(report.Action)
	line := fmt.Sprintf("%-4s %-10s qty %.6f @ %.4f", label, report.Symbol, report.FilledQuantity, report.FilledPrice)
	if report.Action == models.ActionSell || report.ExitReason != "" {
		line += fmt.Sprintf("  pnl %+.2f (%+.2f%%)", report.PnL, report.PnLPct*100)
	}
	if report.ExitReason != "" {
		line += fmt.Sprintf("  [%s]", report.ExitReason)
	}
	c.Fprintln(n.out, line)
}

// TradeBlocked implements Notifier.
func (n *TerminalNotifier) TradeBlocked(symbol string, decision guardrail.Decision) {
	n.yellow.Fprintf(n.out, "VETO %-10s %s\n", symbol, decision.ReasonCode)
}

// RunCompleted implements Notifier.
func (n *TerminalNotifier) RunCompleted(scenarioID string, capitalStart, capitalEnd float64, trades int) {
	returnPct := 0.0
	if capitalStart > 0 {
		returnPct = (capitalEnd/capitalStart - 1) * 100
	}
	n.cyan.Fprintf(n.out, "Run %s finished: %.2f -> %.2f (%+.2f%%), %d trades\n",
		scenarioID, capitalStart, capitalEnd, returnPct, trades)
}

// Error implements Notifier.
func (n *TerminalNotifier) Error(context string, err error) {
	n.red.Fprintf(n.out, "ERROR %s: %v\n", context, err)
}

// NoOpNotifier discards all events.
type NoOpNotifier struct{}

// NewNoOpNotifier creates a notifier that does nothing.
func NewNoOpNotifier() *NoOpNotifier { return &NoOpNotifier{} }

// TradeFilled does nothing.
func (n *NoOpNotifier) TradeFilled(models.ExecutionReport) {}

// TradeBlocked does nothing.
func (n *NoOpNotifier) TradeBlocked(string, guardrail.Decision) {}

// RunCompleted does nothing.
func (n *NoOpNotifier) RunCompleted(string, float64, float64, int) {}

// Error does nothing.
func (n *NoOpNotifier) Error(string, error) {}

var (
	_ Notifier = (*TerminalNotifier)(nil)
	_ Notifier = (*NoOpNotifier)(nil)
)
