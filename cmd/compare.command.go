package cmd

import (
	"encoding/json"
	"fmt"

	"fincast/internal/output"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var compareCmd = &cobra.Command{
	Use:   "compare <run-id>...",
	Short: "Merge stored run packets into a comparison",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		apiHandler, _, err := InitializeDependencies(configPath)
		if err != nil {
			return err
		}
		defer CloseDependencies(apiHandler)

		results := make([]*output.Result, 0, len(args))
		for _, arg := range args {
			runID, err := uuid.Parse(arg)
			if err != nil {
				return fmt.Errorf("invalid run id %q: %w", arg, err)
			}
			result, err := apiHandler.RunRepository.Get(runID)
			if err != nil {
				return err
			}
			results = append(results, result)
		}

		comparison, err := output.MergeResults(results)
		if err != nil {
			return err
		}

		packet, err := json.MarshalIndent(comparison, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(packet))
		return nil
	},
}
