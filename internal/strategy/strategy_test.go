package strategy

import (
	"math"
	"strings"
	"testing"
	"time"

	"tezaver/internal/models"
)

func entrySignal(symbol string, score, price float64) models.MarketSignal {
	return models.MarketSignal{
		Symbol:    symbol,
		Timeframe: "1h",
		Type:      models.SignalRallyStart,
		Timestamp: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		Score:     score,
		Price:     price,
	}
}

func monitorSignal(symbol string, price float64) models.MarketSignal {
	return models.MarketSignal{
		Symbol: symbol,
		Type:   models.SignalMonitor,
		Price:  price,
	}
}

func flatAccount(cash float64) models.AccountState {
	return models.AccountState{
		Equity:        cash,
		AvailableCash: cash,
		Positions:     map[string]models.Position{},
	}
}

func holdingAccount(symbol string, qty, avgPrice, cash float64) models.AccountState {
	return models.AccountState{
		Equity:        cash + qty*avgPrice,
		AvailableCash: cash,
		Positions: map[string]models.Position{
			symbol: {Symbol: symbol, Quantity: qty, AvgPrice: avgPrice},
		},
	}
}

func TestEntrySizing(t *testing.T) {
	s := NewRallyStrategist(DefaultRallyConfig())

	d := s.Evaluate(entrySignal("BTCUSDT", 80, 100), flatAccount(1000))
	if d == nil {
		t.Fatal("expected entry decision")
	}
	if d.Action != models.ActionBuy {
		t.Fatalf("expected BUY, got %s", d.Action)
	}
	if math.Abs(d.Size-100) > 1e-9 { // 10% of 1000
		t.Errorf("expected size 100, got %f", d.Size)
	}
	if math.Abs(d.Quantity-1.0) > 1e-9 {
		t.Errorf("expected quantity 1.0, got %f", d.Quantity)
	}
	if math.Abs(d.StopLoss-95) > 1e-9 || math.Abs(d.TakeProfit-115) > 1e-9 {
		t.Errorf("unexpected protective levels: sl=%f tp=%f", d.StopLoss, d.TakeProfit)
	}
}

func TestEntryFallsBackToAllCash(t *testing.T) {
	s := NewRallyStrategist(DefaultRallyConfig())

	// 10% of 50 is below the notional floor, so the whole balance is
	// committed instead.
	d := s.Evaluate(entrySignal("BTCUSDT", 80, 100), flatAccount(50))
	if d == nil {
		t.Fatal("expected entry decision")
	}
	if math.Abs(d.Size-50) > 1e-9 {
		t.Errorf("expected all-cash size 50, got %f", d.Size)
	}
}

func TestEntryDeclined(t *testing.T) {
	s := NewRallyStrategist(DefaultRallyConfig())

	cases := []struct {
		name    string
		signal  models.MarketSignal
		account models.AccountState
	}{
		{"low score", entrySignal("BTCUSDT", 40, 100), flatAccount(1000)},
		{"cash below floor", entrySignal("BTCUSDT", 80, 100), flatAccount(5)},
		{"missing price", entrySignal("BTCUSDT", 80, 0), flatAccount(1000)},
		{"monitor signal while flat", monitorSignal("BTCUSDT", 100), flatAccount(1000)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if d := s.Evaluate(tc.signal, tc.account); d != nil {
				t.Errorf("expected nil decision, got %+v", d)
			}
		})
	}
}

func TestExitTakeProfit(t *testing.T) {
	s := NewRallyStrategist(DefaultRallyConfig())

	d := s.Evaluate(monitorSignal("BTCUSDT", 116), holdingAccount("BTCUSDT", 2, 100, 0))
	if d == nil {
		t.Fatal("expected exit decision")
	}
	if d.Action != models.ActionSell || d.Exit != models.ExitTakeProfit {
		t.Fatalf("expected take-profit SELL, got %s/%s", d.Action, d.Exit)
	}
	if d.Quantity != 2 {
		t.Errorf("exit must be full size, got %f", d.Quantity)
	}
}

func TestExitStopLoss(t *testing.T) {
	s := NewRallyStrategist(DefaultRallyConfig())

	d := s.Evaluate(monitorSignal("BTCUSDT", 94), holdingAccount("BTCUSDT", 2, 100, 0))
	if d == nil {
		t.Fatal("expected exit decision")
	}
	if d.Exit != models.ExitStopLoss {
		t.Fatalf("expected stop-loss exit, got %s", d.Exit)
	}
}

func TestHoldBetweenLevels(t *testing.T) {
	s := NewRallyStrategist(DefaultRallyConfig())

	if d := s.Evaluate(monitorSignal("BTCUSDT", 104), holdingAccount("BTCUSDT", 2, 100, 0)); d != nil {
		t.Errorf("expected hold, got %+v", d)
	}
}

func TestNoEntryWhileHolding(t *testing.T) {
	s := NewRallyStrategist(DefaultRallyConfig())

	// A fresh entry signal for a symbol with an open position must
	// never produce a second BUY.
	d := s.Evaluate(entrySignal("BTCUSDT", 90, 104), holdingAccount("BTCUSDT", 2, 100, 1000))
	if d != nil && d.Action == models.ActionBuy {
		t.Fatalf("pyramiding is not allowed, got %+v", d)
	}
}

type stubStrategist struct {
	name     string
	decision *models.TradeDecision
	calls    int
}

func (s *stubStrategist) Name() string { return s.name }

func (s *stubStrategist) Evaluate(models.MarketSignal, models.AccountState) *models.TradeDecision {
	s.calls++
	if s.decision == nil {
		return nil
	}
	d := *s.decision
	return &d
}

func TestCompositeFirstMatchWins(t *testing.T) {
	declines := &stubStrategist{name: "Declines"}
	wins := &stubStrategist{name: "Wins", decision: &models.TradeDecision{
		Action: models.ActionBuy, Symbol: "BTCUSDT", Reason: "breakout",
	}}
	never := &stubStrategist{name: "Never", decision: &models.TradeDecision{
		Action: models.ActionBuy, Symbol: "BTCUSDT", Reason: "shadowed",
	}}

	c := NewCompositeStrategist(declines, wins, never)
	d := c.Evaluate(entrySignal("BTCUSDT", 80, 100), flatAccount(1000))

	if d == nil {
		t.Fatal("expected composite decision")
	}
	if !strings.HasPrefix(d.Reason, "[Wins] ") {
		t.Errorf("reason must carry the winner's name, got %q", d.Reason)
	}
	if never.calls != 0 {
		t.Errorf("lower-priority strategist must not be consulted, called %d times", never.calls)
	}
}

func TestCompositeAllDecline(t *testing.T) {
	c := NewCompositeStrategist(&stubStrategist{name: "A"}, &stubStrategist{name: "B"})
	if d := c.Evaluate(entrySignal("BTCUSDT", 80, 100), flatAccount(1000)); d != nil {
		t.Errorf("expected nil decision, got %+v", d)
	}
}
