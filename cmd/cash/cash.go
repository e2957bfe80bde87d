// Package cash handles the ending cash extraction command
package cash

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"investflow/ibkr-csv/cmd/root"
	"investflow/ibkr-csv/internal/cashreport"
	"investflow/ibkr-csv/internal/statement"
)

// Cmd represents the cash command
var Cmd = &cobra.Command{
	Use:   "cash",
	Short: "Extract ending cash balances from an activity statement",
	Long: `Extract the per-currency Ending Cash balances from the Cash Report
sections of an activity statement and print them as JSON.`,
	Run: cashFunc,
}

func cashFunc(cmd *cobra.Command, args []string) {
	if root.SharedFlags.Input == "" {
		root.Log.Fatal("--input is required")
	}

	st, err := statement.ParseFile(root.SharedFlags.Input)
	if err != nil {
		root.Log.Fatalf("Error parsing statement: %v", err)
	}

	balances := cashreport.Extract(st)
	out, err := json.MarshalIndent(balances, "", "  ")
	if err != nil {
		root.Log.Fatalf("Error encoding balances: %v", err)
	}
	fmt.Println(string(out))
}
