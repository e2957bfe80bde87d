// Package process handles the end-to-end statement processing command
package process

import (
	"bytes"
	"context"

	"github.com/spf13/cobra"

	"investflow/ibkr-csv/cmd/root"
	"investflow/ibkr-csv/internal/config"
	"investflow/ibkr-csv/internal/gcs"
	"investflow/ibkr-csv/internal/notify"
	"investflow/ibkr-csv/internal/pipeline"
	"investflow/ibkr-csv/internal/sheets"
	"investflow/ibkr-csv/internal/statement"
	"investflow/ibkr-csv/internal/store"
)

var (
	bucket string
	object string
)

// Cmd represents the process command
var Cmd = &cobra.Command{
	Use:   "process",
	Short: "Process an activity statement end to end",
	Long: `Process an activity statement end to end: parse the statement, upsert
normalized trades into Supabase, append them to the configured Google Sheet,
persist ending cash balances and send a Slack summary.

The statement is read from --input, or downloaded from Google Cloud Storage
when --object (and optionally --bucket) is given.`,
	Run: processFunc,
}

func init() {
	Cmd.Flags().StringVar(&bucket, "bucket", "", "GCS bucket holding the statement (defaults to configured bucket)")
	Cmd.Flags().StringVar(&object, "object", "", "GCS object name of the statement")
}

func processFunc(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	cfg, err := config.InitializeConfig()
	if err != nil {
		root.Log.Fatalf("Error loading configuration: %v", err)
	}

	st, sourceName := loadStatement(ctx, cfg)

	p := buildPipeline(ctx, cfg)
	result := p.Run(ctx, st, sourceName)

	root.Log.Infof("Run %s: processed %d rows, inserted %d records, %d currencies",
		result.RunID, result.Counters.Processed(), result.Counters.Inserted(), len(result.Balances))
}

// loadStatement parses the statement from the local file or GCS object named
// on the command line. An unreadable source is fatal.
func loadStatement(ctx context.Context, cfg *config.Config) (*statement.Statement, string) {
	if object != "" {
		bkt := bucket
		if bkt == "" {
			bkt = cfg.GCS.Bucket
		}
		if bkt == "" {
			root.Log.Fatal("No GCS bucket given and none configured")
		}

		root.Log.Infof("Downloading statement gs://%s/%s", bkt, object)
		data, err := gcs.DownloadFile(ctx, bkt, object)
		if err != nil {
			root.Log.Fatalf("Error downloading statement: %v", err)
		}

		st, err := statement.Parse(bytes.NewReader(data))
		if err != nil {
			root.Log.Fatalf("Error parsing statement: %v", err)
		}
		return st, object
	}

	if root.SharedFlags.Input == "" {
		root.Log.Fatal("Either --input or --object is required")
	}

	st, err := statement.ParseFile(root.SharedFlags.Input)
	if err != nil {
		root.Log.Fatalf("Error parsing statement: %v", err)
	}
	return st, root.SharedFlags.Input
}

// buildPipeline wires the collaborators that are configured; the others are
// left nil and their stages skipped.
func buildPipeline(ctx context.Context, cfg *config.Config) *pipeline.Pipeline {
	p := &pipeline.Pipeline{SheetName: cfg.Sheets.SheetName}

	if cfg.Supabase.URL != "" && cfg.Supabase.APIKey != "" {
		client := store.New(cfg.Supabase.URL, cfg.Supabase.APIKey)
		p.Store = client
		p.Cash = client
	} else {
		root.Log.Warn("Supabase not configured, skipping persistence")
	}

	if cfg.Sheets.CredentialsFile != "" && cfg.Sheets.SpreadsheetID != "" {
		writer, err := sheets.NewWriter(ctx, cfg.Sheets.CredentialsFile, cfg.Sheets.SpreadsheetID)
		if err != nil {
			root.Log.Warnf("Cannot create sheets writer, skipping spreadsheet: %v", err)
		} else {
			p.Sheets = writer
		}
	} else {
		root.Log.Warn("Google Sheets not configured, skipping spreadsheet")
	}

	if cfg.Slack.WebhookURL != "" {
		p.Notifier = notify.NewSlackNotifier(cfg.Slack.WebhookURL)
	} else {
		root.Log.Warn("Slack webhook not configured, skipping notification")
	}

	return p
}
