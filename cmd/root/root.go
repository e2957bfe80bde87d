// Package root contains the root command for the application
package root

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"investflow/ibkr-csv/internal/cashreport"
	"investflow/ibkr-csv/internal/config"
	"investflow/ibkr-csv/internal/export"
	"investflow/ibkr-csv/internal/notify"
	"investflow/ibkr-csv/internal/pipeline"
	"investflow/ibkr-csv/internal/sheets"
	"investflow/ibkr-csv/internal/statement"
	"investflow/ibkr-csv/internal/store"
	"investflow/ibkr-csv/internal/trades"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	Input  string
	Output string
}

var (
	// Log is the shared logger instance for commands
	Log = logrus.New()

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "ibkr-csv",
		Short: "A CLI tool to process Interactive Brokers Activity Statement exports.",
		Long: `ibkr-csv parses the multi-section Activity Statement CSV exported by
Interactive Brokers, normalizes trades into canonical transaction records and
extracts per-currency ending cash balances. Results can be upserted into
Supabase, appended to a Google Sheet and exported to a standardized CSV.`,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to ibkr-csv!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Initialize and configure logging
			config.LoadEnv()
			Log = config.ConfigureLogging()

			// Set the configured logger for all packages
			statement.SetLogger(Log)
			trades.SetLogger(Log)
			cashreport.SetLogger(Log)
			store.SetLogger(Log)
			sheets.SetLogger(Log)
			notify.SetLogger(Log)
			export.SetLogger(Log)
			pipeline.SetLogger(Log)
		},
	}

	// SharedFlags are common flags accessible to all commands
	SharedFlags = CommonFlags{}
)

// Init registers the persistent flags on the root command.
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Input, "input", "i", "", "Input activity statement CSV file")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Output, "output", "o", "", "Output file")
}
