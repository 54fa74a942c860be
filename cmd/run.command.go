package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"fincast/internal/app"
	"fincast/internal/config"
	"fincast/internal/report"

	"github.com/spf13/cobra"
)

var (
	scenarioPath string
	outPath      string
	csvDir       string
	storeRun     bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one scenario end to end and print the result packet",
	RunE: func(cmd *cobra.Command, args []string) error {
		apiHandler, _, err := InitializeDependencies(configPath)
		if err != nil {
			return err
		}
		defer CloseDependencies(apiHandler)

		scenario, err := config.LoadScenario(scenarioPath)
		if err != nil {
			return err
		}

		resp, err := apiHandler.SimulationHandler.RunScenario(app.RunScenarioInput{
			Scenario: scenario,
			Store:    storeRun,
		})
		if err != nil {
			return err
		}

		packet, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return err
		}

		if outPath != "" {
			if err := os.WriteFile(outPath, packet, 0o644); err != nil {
				return fmt.Errorf("failed to write packet: %w", err)
			}
		} else {
			fmt.Println(string(packet))
		}

		if csvDir != "" {
			if err := writeCSVs(csvDir, resp); err != nil {
				return err
			}
		}

		return nil
	},
}

func writeCSVs(dir string, resp *app.RunScenarioResponse) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create csv dir: %w", err)
	}

	history, err := os.Create(filepath.Join(dir, "history.csv"))
	if err != nil {
		return err
	}
	defer history.Close()
	if err := report.WriteHistoryCSV(history, resp.Trunk); err != nil {
		return err
	}

	transactions, err := os.Create(filepath.Join(dir, "transactions.csv"))
	if err != nil {
		return err
	}
	defer transactions.Close()
	return report.WriteTransactionsCSV(transactions, resp.Transactions)
}

func init() {
	runCmd.Flags().StringVar(&scenarioPath, "scenario", "", "path to scenario file")
	runCmd.Flags().StringVar(&outPath, "out", "", "write the packet to a file instead of stdout")
	runCmd.Flags().StringVar(&csvDir, "csv", "", "directory to write csv exports")
	runCmd.Flags().BoolVar(&storeRun, "store", false, "persist the trunk packet to the run store")
	runCmd.MarkFlagRequired("scenario")
}
