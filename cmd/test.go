package cmd

import (
	"github.com/spf13/cobra"
)

// testCmd groups subcommands that exercise a live integration for manual
// checking at the command-line.
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test a specified integration for live checking",
}

func init() {
	rootCmd.AddCommand(testCmd)
}
