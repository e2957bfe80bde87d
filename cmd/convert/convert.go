// Package convert handles the statement-to-CSV conversion command
package convert

import (
	"context"

	"github.com/spf13/cobra"

	"investflow/ibkr-csv/cmd/root"
	"investflow/ibkr-csv/internal/export"
	"investflow/ibkr-csv/internal/pipeline"
	"investflow/ibkr-csv/internal/statement"
)

// Cmd represents the convert command
var Cmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert an activity statement to a standardized CSV",
	Long: `Convert an activity statement to a standardized CSV of normalized
transaction records, without touching any external collaborator.`,
	Run: convertFunc,
}

func convertFunc(cmd *cobra.Command, args []string) {
	if root.SharedFlags.Input == "" || root.SharedFlags.Output == "" {
		root.Log.Fatal("Both --input and --output are required")
	}

	st, err := statement.ParseFile(root.SharedFlags.Input)
	if err != nil {
		root.Log.Fatalf("Error parsing statement: %v", err)
	}

	// A pipeline without collaborators only normalizes.
	p := &pipeline.Pipeline{}
	result := p.Run(context.Background(), st, root.SharedFlags.Input)

	if err := export.WriteRecordsToCSV(result.Records, root.SharedFlags.Output); err != nil {
		root.Log.Fatalf("Error writing CSV: %v", err)
	}
	root.Log.Infof("Wrote %d records to %s", len(result.Records), root.SharedFlags.Output)
}
