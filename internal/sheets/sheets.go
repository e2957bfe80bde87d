// Package sheets appends normalized records to a Google Sheets worksheet,
// deduplicated by transaction id against the existing sheet content.
package sheets

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"investflow/ibkr-csv/internal/trades"
)

var log = logrus.New()

// SetLogger allows setting a configured logger
func SetLogger(logger *logrus.Logger) {
	if logger != nil {
		log = logger
	}
}

// sheetColumns is the explicit field-to-column table: column order in the
// sheet is exactly this order, and each record value comes from its extractor.
var sheetColumns = []struct {
	Name    string
	Extract func(r trades.Record) any
}{
	{"transaction_id", func(r trades.Record) any { return r.TransactionID }},
	{"executed_at", func(r trades.Record) any { return r.ExecutedAt }},
	{"ticker", func(r trades.Record) any { return r.Ticker }},
	{"option_type", func(r trades.Record) any { return r.OptionType }},
	{"strike_price", func(r trades.Record) any {
		if r.StrikePrice == nil {
			return ""
		}
		return r.StrikePrice.String()
	}},
	{"expiration_date", func(r trades.Record) any { return r.ExpirationDate }},
	{"asset_category", func(r trades.Record) any { return r.AssetCategory }},
	{"quantity", func(r trades.Record) any { return r.Quantity.String() }},
	{"price", func(r trades.Record) any { return r.Price.String() }},
	{"fees", func(r trades.Record) any { return r.Fees.String() }},
	{"currency", func(r trades.Record) any { return r.Currency }},
	{"code", func(r trades.Record) any { return r.Code }},
	{"type", func(r trades.Record) any { return r.Type }},
	{"side", func(r trades.Record) any { return r.Side }},
	{"value", func(r trades.Record) any { return r.Value.String() }},
	{"full_value", func(r trades.Record) any { return r.FullValue.String() }},
}

// Writer appends rows to one spreadsheet.
type Writer struct {
	svc           *sheets.Service
	spreadsheetID string
}

// NewWriter creates a Writer authenticated with a service account key file.
func NewWriter(ctx context.Context, credentialsFile, spreadsheetID string) (*Writer, error) {
	svc, err := sheets.NewService(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("error creating sheets service: %w", err)
	}
	return &Writer{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// AppendRecords appends the records not yet present in the worksheet, keyed
// by the transaction_id column. The worksheet is created, with a header row,
// when it does not exist yet.
func (w *Writer) AppendRecords(ctx context.Context, sheetName string, records []trades.Record) error {
	if len(records) == 0 {
		log.WithField("sheet", sheetName).Info("No records to append")
		return nil
	}

	if err := w.ensureSheet(ctx, sheetName); err != nil {
		return err
	}

	existing, isEmpty, err := w.existingIDs(ctx, sheetName)
	if err != nil {
		return err
	}

	var rows [][]any
	if isEmpty {
		header := make([]any, len(sheetColumns))
		for i, col := range sheetColumns {
			header[i] = col.Name
		}
		rows = append(rows, header)
	}

	for _, rec := range records {
		if existing[rec.TransactionID] {
			continue
		}
		row := make([]any, len(sheetColumns))
		for i, col := range sheetColumns {
			row[i] = col.Extract(rec)
		}
		rows = append(rows, row)
	}

	appended := len(rows)
	if isEmpty && appended > 0 {
		appended--
	}
	if appended == 0 {
		log.WithField("sheet", sheetName).Info("All records already present in sheet")
		return nil
	}

	_, err = w.svc.Spreadsheets.Values.Append(w.spreadsheetID, sheetName, &sheets.ValueRange{
		Values: rows,
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("error appending rows to sheet %s: %w", sheetName, err)
	}

	log.WithFields(logrus.Fields{
		"sheet": sheetName,
		"count": appended,
	}).Info("Appended records to Google Sheet")
	return nil
}

// ensureSheet creates the worksheet when the spreadsheet does not have it.
func (w *Writer) ensureSheet(ctx context.Context, sheetName string) error {
	spreadsheet, err := w.svc.Spreadsheets.Get(w.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("error reading spreadsheet: %w", err)
	}

	for _, sh := range spreadsheet.Sheets {
		if sh.Properties != nil && sh.Properties.Title == sheetName {
			return nil
		}
	}

	log.WithField("sheet", sheetName).Info("Creating missing worksheet")
	_, err = w.svc.Spreadsheets.BatchUpdate(w.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: sheetName},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("error creating worksheet %s: %w", sheetName, err)
	}
	return nil
}

// existingIDs reads the sheet and collects the values of its transaction_id
// column. The second return reports whether the sheet has no content at all.
func (w *Writer) existingIDs(ctx context.Context, sheetName string) (map[string]bool, bool, error) {
	resp, err := w.svc.Spreadsheets.Values.Get(w.spreadsheetID, sheetName).Context(ctx).Do()
	if err != nil {
		return nil, false, fmt.Errorf("error reading sheet %s: %w", sheetName, err)
	}

	if len(resp.Values) == 0 {
		return map[string]bool{}, true, nil
	}

	idCol := -1
	for i, cell := range resp.Values[0] {
		if s, ok := cell.(string); ok && s == "transaction_id" {
			idCol = i
			break
		}
	}
	if idCol < 0 {
		// No recognizable header: dedup is impossible, treat all as new.
		log.WithField("sheet", sheetName).Warn("Sheet has no transaction_id column, skipping dedup")
		return map[string]bool{}, false, nil
	}

	existing := make(map[string]bool, len(resp.Values)-1)
	for _, row := range resp.Values[1:] {
		if idCol < len(row) {
			if id, ok := row[idCol].(string); ok && id != "" {
				existing[id] = true
			}
		}
	}
	return existing, false, nil
}
