package cmd

import (
	"github.com/spf13/cobra"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		apiHandler, cfg, err := InitializeDependencies(configPath)
		if err != nil {
			return err
		}
		defer CloseDependencies(apiHandler)

		port := cfg.Server.Port
		if servePort != 0 {
			port = servePort
		}

		return apiHandler.StartApi(port)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "override the configured port")
}
