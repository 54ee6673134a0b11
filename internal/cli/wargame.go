package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tezaver/internal/feed"
	"tezaver/internal/models"
	"tezaver/internal/notify"
	"tezaver/internal/rally"
	"tezaver/internal/strategy"
	"tezaver/internal/wargame"
)

func newWargameCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wargame",
		Short: "Replay simulations against historical data",
	}
	cmd.AddCommand(newWargameRunCmd(app))
	cmd.AddCommand(newWargameRunsCmd(app))
	return cmd
}

func newWargameRunCmd(app *App) *cobra.Command {
	var (
		demo      bool
		demoBars  int
		symbols   []string
		capital   float64
		mode      string
		noGate    bool
		timeframe string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a wargame scenario",
		Long: `Replays bar history for the selected symbols through the full
pipeline and prints a performance report. With --demo the run uses
generated data instead of stored candles.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			scenario := buildScenario(app, symbols, capital, mode, timeframe, noGate)
			if demo {
				scenario.ID = "demo"
				scenario.ProfileID = "demo"
				scenario.GuardrailDataDir = ""
			}

			feeds, err := buildFeeds(cmd, app, scenario, demo, demoBars)
			if err != nil {
				return err
			}

			var notifier notify.Notifier = notify.NewNoOpNotifier()
			if !output.IsJSON() {
				notifier = notify.NewTerminalNotifier(cmd.OutOrStdout())
			}

			runner, err := wargame.NewRunner(wargame.RunnerConfig{
				Scenario: scenario,
				Feeds:    feeds,
				Store:    app.Store,
				Notifier: notifier,
				Logger:   app.Logger,
			})
			if err != nil {
				return err
			}

			report, err := runner.Run(cmd.Context())
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(report)
			}
			renderReport(output, report)
			return nil
		},
	}

	cmd.Flags().BoolVar(&demo, "demo", false, "run against generated data")
	cmd.Flags().IntVar(&demoBars, "demo-bars", 400, "bars per symbol in demo mode")
	cmd.Flags().StringSliceVar(&symbols, "symbols", nil, "symbols to replay (default: demo pair)")
	cmd.Flags().Float64Var(&capital, "capital", 0, "initial capital (default from config)")
	cmd.Flags().StringVar(&mode, "mode", string(wargame.ModePaper), "execution mode: paper or outcome")
	cmd.Flags().StringVar(&timeframe, "timeframe", "", "bar timeframe (default from config)")
	cmd.Flags().BoolVar(&noGate, "no-guardrail", false, "disable the guardrail gate")
	return cmd
}

func buildScenario(app *App, symbols []string, capital float64, mode, timeframe string, noGate bool) wargame.Scenario {
	cfg := app.Config
	scenario := wargame.DemoScenario()

	if len(symbols) > 0 {
		scenario.Symbols = symbols
		scenario.ID = "wargame-" + strings.ToLower(strings.Join(symbols, "-"))
		scenario.ProfileID = "default"
	}
	scenario.Mode = wargame.ExecMode(mode)

	scenario.InitialCapital = cfg.Wargame.InitialCapital
	if capital > 0 {
		scenario.InitialCapital = capital
	}
	scenario.Timeframe = cfg.Wargame.Timeframe
	if timeframe != "" {
		scenario.Timeframe = timeframe
	}

	scenario.Detector = rally.Config{
		RallyThreshold: cfg.Engine.RallyThreshold,
		LookbackWindow: cfg.Engine.LookbackWindow,
	}
	scenario.Risk = strategy.RallyConfig{
		RiskPerTradePct: cfg.Risk.RiskPerTradePct,
		StopLossPct:     cfg.Risk.StopLossPct,
		TakeProfitPct:   cfg.Risk.TakeProfitPct,
		MinConfidence:   cfg.Engine.MinConfidence,
		MinNotional:     cfg.Risk.MinNotional,
	}
	scenario.CommissionRate = cfg.Risk.CommissionRate
	scenario.WindowSize = cfg.Engine.LookbackWindow + 10

	if cfg.Guardrail.Enabled && !noGate {
		scenario.GuardrailDataDir = cfg.Guardrail.DataDir
		scenario.MaxOpenPositions = cfg.Guardrail.MaxOpenPositions
		scenario.MinAffinityScore = cfg.Guardrail.MinAffinityScore
	}
	return scenario
}

func buildFeeds(cmd *cobra.Command, app *App, scenario wargame.Scenario, demo bool, demoBars int) (map[string]*feed.ReplayFeed, error) {
	feeds := make(map[string]*feed.ReplayFeed, len(scenario.Symbols))
	for _, symbol := range scenario.Symbols {
		var bars []models.Candle
		if demo {
			bars = wargame.SyntheticBars(symbol, demoBars)
		} else {
			if app.Store == nil {
				return nil, fmt.Errorf("store unavailable; only --demo runs are possible")
			}
			loaded, err := app.Store.LoadCandles(cmd.Context(), symbol, scenario.Timeframe, 0)
			if err != nil {
				return nil, fmt.Errorf("loading candles for %s: %w", symbol, err)
			}
			bars = loaded
		}
		f, err := feed.NewReplayFeed(symbol, scenario.Timeframe, bars, nil)
		if err != nil {
			return nil, fmt.Errorf("building feed for %s: %w", symbol, err)
		}
		feeds[symbol] = f
	}
	return feeds, nil
}

func renderReport(output *Output, report wargame.Report) {
	output.Println()
	output.Bold("Wargame Report: %s", report.ScenarioID)
	output.Printf("  Run ID:        %s\n", report.RunID)
	output.Printf("  Symbols:       %s\n", strings.Join(report.Symbols, ", "))
	output.Printf("  Capital:       %.2f -> %.2f (%s)\n", report.CapitalStart, report.CapitalEnd, output.Pct(report.ReturnPct))
	output.Printf("  Trades:        %d\n", report.TradeCount)
	output.Printf("  Win Rate:      %.0f%%\n", report.WinRate*100)
	output.Printf("  Max Drawdown:  %.2f%%\n", report.MaxDrawdownPct*100)

	if len(report.Trades) == 0 {
		output.Dim("  No trades executed.")
		return
	}

	output.Println()
	table := NewTable(output, "TIME", "SYMBOL", "SIDE", "QTY", "PRICE", "PNL", "EXIT")
	for _, trade := range report.Trades {
		exit := string(trade.ExitReason)
		if exit == "" {
			exit = "-"
		}
		table.AddRow(
			trade.Timestamp.Format("2006-01-02 15:04"),
			trade.Symbol,
			string(trade.Action),
			fmt.Sprintf("%.6f", trade.FilledQuantity),
			fmt.Sprintf("%.4f", trade.FilledPrice),
			output.PnL(trade.PnL),
			exit,
		)
	}
	table.Render()
}

func newWargameRunsCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List past wargame runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("store unavailable")
			}

			runs, err := app.Store.LoadRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(runs)
			}
			if len(runs) == 0 {
				output.Dim("No runs recorded.")
				return nil
			}

			table := NewTable(output, "RUN", "SCENARIO", "STARTED", "CAPITAL", "TRADES", "WIN RATE", "MAX DD")
			for _, run := range runs {
				table.AddRow(
					run.ID,
					run.ScenarioID,
					run.StartedAt.Format("2006-01-02 15:04"),
					fmt.Sprintf("%.2f -> %.2f", run.CapitalStart, run.CapitalEnd),
					fmt.Sprintf("%d", run.TradeCount),
					fmt.Sprintf("%.0f%%", run.WinRate*100),
					fmt.Sprintf("%.2f%%", run.MaxDrawdownPct*100),
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum runs to list")
	return cmd
}
