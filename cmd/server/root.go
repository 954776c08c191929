package main

import (
	"os"

	"github.com/spf13/cobra"
)

var flagConfig string

var rootCmd = &cobra.Command{
	Use:          "seflow",
	Short:        "Seflow salary split backend",
	Long:         "Serve the Seflow salary split API or run the allocation engine from the command line.",
	SilenceUsage: true,
	RunE:         runServe,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "seflow.toml", "Path to the TOML config file")
	rootCmd.AddCommand(serveCmd, rebalanceCmd)
}
