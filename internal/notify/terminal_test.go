package notify

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"tezaver/internal/guardrail"
	"tezaver/internal/models"
)

func captured(t *testing.T) (*TerminalNotifier, *bytes.Buffer) {
	t.Helper()
	old := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = old })

	var buf bytes.Buffer
	return NewTerminalNotifier(&buf), &buf
}

func TestTradeFilledBuyLine(t *testing.T) {
	n, buf := captured(t)

	n.TradeFilled(models.ExecutionReport{
		Action: models.ActionBuy, Symbol: "BTCUSDT",
		FilledQuantity: 0.5, FilledPrice: 40000,
	})

	out := buf.String()
	if !strings.Contains(out, "BUY") || !strings.Contains(out, "BTCUSDT") {
		t.Errorf("unexpected output %q", out)
	}
	if strings.Contains(out, "pnl") {
		t.Errorf("entries must not print pnl: %q", out)
	}
}

func TestTradeFilledSellShowsPnLAndExit(t *testing.T) {
	n, buf := captured(t)

	n.TradeFilled(models.ExecutionReport{
		Action: models.ActionSell, Symbol: "BTCUSDT",
		FilledQuantity: 0.5, FilledPrice: 44000,
		PnL: 2000, PnLPct: 0.10, ExitReason: models.ExitTakeProfit,
	})

	out := buf.String()
	if !strings.Contains(out, "+2000.00") || !strings.Contains(out, "+10.00%") {
		t.Errorf("pnl not rendered: %q", out)
	}
	if !strings.Contains(out, string(models.ExitTakeProfit)) {
		t.Errorf("exit reason not rendered: %q", out)
	}
}

func TestTradeBlocked(t *testing.T) {
	n, buf := captured(t)

	n.TradeBlocked("ETHUSDT", guardrail.Decision{ReasonCode: guardrail.ReasonBlockRadarCold})

	out := buf.String()
	if !strings.Contains(out, "VETO") || !strings.Contains(out, guardrail.ReasonBlockRadarCold) {
		t.Errorf("unexpected output %q", out)
	}
}

func TestRunCompleted(t *testing.T) {
	n, buf := captured(t)

	n.RunCompleted("demo", 10000, 10500, 7)

	out := buf.String()
	if !strings.Contains(out, "demo") || !strings.Contains(out, "+5.00%") || !strings.Contains(out, "7 trades") {
		t.Errorf("unexpected output %q", out)
	}
}
