package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var weightsCmd = &cobra.Command{
	Use:   "weights",
	Short: "Print the configured factor weights",
	Long:  "Loads the configuration, validates the factor weights and prints them. Exits non-zero when the weights are invalid.",
	RunE:  runWeights,
}

func init() {
	rootCmd.AddCommand(weightsCmd)
}

func runWeights(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Matching.Weights.Validate(); err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), cfg.Matching.Weights)
}
