package main

import (
	"os"

	"github.com/spf13/cobra"
)

var flagEnvFile string

var rootCmd = &cobra.Command{
	Use:           "budgetwise",
	Short:         "BudgetWise budgeting backend",
	Long:          "Split a monthly salary across debts, fixed expenses, savings and fun.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", ".env", "Optional dotenv file loaded before reading the environment")
}
