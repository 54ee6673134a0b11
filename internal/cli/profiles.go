package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"tezaver/internal/guardrail"
)

func newProfilesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "Inspect guardrail intelligence profiles",
	}
	cmd.AddCommand(newProfilesShowCmd(app))
	cmd.AddCommand(newProfilesReloadCmd(app))
	return cmd
}

func newProfilesShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show [symbols...]",
		Short: "Show cached guardrail profiles",
		Long: `Shows the intelligence profile the guardrail would apply per
symbol. Without arguments every symbol found under the profile data
directory is listed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			symbols := args
			if len(symbols) == 0 {
				var err error
				symbols, err = discoverProfileSymbols(app.Config.Guardrail.DataDir)
				if err != nil {
					return err
				}
			}
			if len(symbols) == 0 {
				output.Dim("No profiles found under %s", app.Config.Guardrail.DataDir)
				return nil
			}

			controller := guardrail.NewController(guardrail.Config{
				MaxOpenPositions: app.Config.Guardrail.MaxOpenPositions,
				MinAffinityScore: app.Config.Guardrail.MinAffinityScore,
				DataDir:          app.Config.Guardrail.DataDir,
			}, symbols, app.Logger)

			if output.IsJSON() {
				profiles := make(map[string]guardrail.Profile, len(symbols))
				for _, symbol := range symbols {
					if p, ok := controller.ProfileFor(symbol); ok {
						profiles[symbol] = p
					}
				}
				return output.JSON(profiles)
			}

			table := NewTable(output, "SYMBOL", "RADAR", "PROMOTION", "AFFINITY")
			for _, symbol := range symbols {
				profile, _ := controller.ProfileFor(symbol)
				table.AddRow(
					symbol,
					string(profile.EnvStatus),
					string(profile.PromotionStatus),
					fmt.Sprintf("%.1f", profile.AffinityScore),
				)
			}
			table.Render()
			return nil
		},
	}
}

func newProfilesReloadCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reload [symbols...]",
		Short: "Re-read profiles from disk and show the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			symbols := args
			if len(symbols) == 0 {
				var err error
				symbols, err = discoverProfileSymbols(app.Config.Guardrail.DataDir)
				if err != nil {
					return err
				}
			}

			controller := guardrail.NewController(guardrail.Config{
				MaxOpenPositions: app.Config.Guardrail.MaxOpenPositions,
				MinAffinityScore: app.Config.Guardrail.MinAffinityScore,
				DataDir:          app.Config.Guardrail.DataDir,
			}, symbols, app.Logger)
			controller.Reload()

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{"reloaded": len(symbols)})
			}
			output.Success("Reloaded %d profiles", len(symbols))
			return nil
		},
	}
}

// discoverProfileSymbols lists the symbol directories under the
// profile data root. A missing root means no profiles, not an error.
func discoverProfileSymbols(dataDir string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(dataDir, "coin_profiles"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading profile directory: %w", err)
	}

	var symbols []string
	for _, entry := range entries {
		if entry.IsDir() {
			symbols = append(symbols, entry.Name())
		}
	}
	sort.Strings(symbols)
	return symbols, nil
}
