package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"tezaver/internal/config"
	"tezaver/internal/store"
)

// Version information
const (
	Version = "0.1.0"
)

// App holds the application dependencies shared across commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Store  store.Store
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	dataStore, err := store.NewSQLiteStore(cfg.Store.DBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, runs will not be persisted")
	} else {
		app.Store = dataStore
		logger.Debug().Str("path", cfg.Store.DBPath).Msg("SQLite store initialized")
	}

	rootCmd := &cobra.Command{
		Use:   "tezaver",
		Short: "Tezaver - signal-to-execution simulation engine",
		Long: `Tezaver replays market data through a signal detector, risk
strategist, guardrail gate and execution simulator, and reports how the
strategy would have performed.

Use 'tezaver help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newWargameCmd(app))
	rootCmd.AddCommand(newProfilesCmd(app))

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"version": Version})
			} else {
				output.Printf("tezaver v%s\n", Version)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]bool{"valid": true})
			}
			output.Success("Configuration is valid")
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("Engine")
	output.Printf("  Timeframe:       %s\n", cfg.Engine.Timeframe)
	output.Printf("  Lookback:        %d bars\n", cfg.Engine.LookbackWindow)
	output.Printf("  Rally Threshold: %.2f%%\n", cfg.Engine.RallyThreshold*100)
	output.Printf("  Min Confidence:  %.0f\n", cfg.Engine.MinConfidence)
	output.Println()

	output.Bold("Risk")
	output.Printf("  Risk Per Trade:  %.1f%%\n", cfg.Risk.RiskPerTradePct*100)
	output.Printf("  Stop Loss:       %.1f%%\n", cfg.Risk.StopLossPct*100)
	output.Printf("  Take Profit:     %.1f%%\n", cfg.Risk.TakeProfitPct*100)
	output.Printf("  Min Notional:    %.2f\n", cfg.Risk.MinNotional)
	output.Printf("  Commission:      %.3f%%\n", cfg.Risk.CommissionRate*100)
	output.Println()

	output.Bold("Guardrail")
	output.Printf("  Enabled:         %v\n", cfg.Guardrail.Enabled)
	output.Printf("  Max Positions:   %d\n", cfg.Guardrail.MaxOpenPositions)
	output.Printf("  Min Affinity:    %.0f\n", cfg.Guardrail.MinAffinityScore)
	output.Printf("  Data Dir:        %s\n", cfg.Guardrail.DataDir)
	output.Println()

	output.Bold("Wargame")
	output.Printf("  Initial Capital: %.2f\n", cfg.Wargame.InitialCapital)
	output.Printf("  Timeframe:       %s\n", cfg.Wargame.Timeframe)
}
