package cmd

import (
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "fincast",
	Short: "Deterministic day-by-day financial projection engine",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "fincast.yaml", "path to application config")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(compareCmd)
}

func Execute() error {
	return rootCmd.Execute()
}
