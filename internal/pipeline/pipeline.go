// Package pipeline orchestrates a full statement processing run: parse,
// normalize, persist, spreadsheet append, cash extraction and notification.
package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"investflow/ibkr-csv/internal/cashreport"
	"investflow/ibkr-csv/internal/statement"
	"investflow/ibkr-csv/internal/trades"
)

var log = logrus.New()

// SetLogger allows setting a configured logger
func SetLogger(logger *logrus.Logger) {
	if logger != nil {
		log = logger
	}
}

// CashStore persists ending cash entries, deduplicated by date:currency.
type CashStore interface {
	PersistCashEntries(ctx context.Context, entries []cashreport.Entry) (int, error)
}

// SheetWriter appends records to a worksheet, deduplicated by transaction id.
type SheetWriter interface {
	AppendRecords(ctx context.Context, sheetName string, records []trades.Record) error
}

// Notifier delivers a run summary. Failures are logged, never propagated.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Pipeline wires the core to its collaborators. Any collaborator may be nil,
// in which case its stage is skipped; collaborator failures are non-fatal to
// the rest of the run.
type Pipeline struct {
	Store     trades.Store
	Cash      CashStore
	Sheets    SheetWriter
	Notifier  Notifier
	SheetName string
}

// Result is the outcome of one processing run.
type Result struct {
	RunID    string
	Counters trades.Counters
	Records  []trades.Record
	Balances cashreport.Balances
}

// Run processes a parsed statement end to end. sourceName is the name of the
// source file, used to derive the cash report date. Only the parse itself can
// fail a run; everything downstream degrades to warnings.
func (p *Pipeline) Run(ctx context.Context, st *statement.Statement, sourceName string) *Result {
	result := &Result{RunID: uuid.NewString(), Records: []trades.Record{}}
	runLog := log.WithFields(logrus.Fields{
		"run_id": result.RunID,
		"source": sourceName,
	})
	runLog.Info("Starting statement processing run")

	p.processTrades(ctx, st, result, runLog)
	p.processCash(ctx, st, sourceName, result, runLog)
	p.notify(ctx, st, result, runLog)

	runLog.WithFields(logrus.Fields{
		"processed": result.Counters.Processed(),
		"inserted":  result.Counters.Inserted(),
	}).Info("Statement processing run finished")
	return result
}

// processTrades normalizes and upserts every trade section. Sections whose
// key carries no asset category fall back to the positional convention:
// first section stocks, second options.
func (p *Pipeline) processTrades(ctx context.Context, st *statement.Statement, result *Result, runLog *logrus.Entry) {
	fallback := []trades.TradeType{trades.TradeTypeStocks, trades.TradeTypeOptions}
	unmapped := 0

	for _, key := range st.TradeKeys() {
		tradeType, ok := trades.TradeTypeForKey(key)
		if !ok {
			if unmapped >= len(fallback) {
				runLog.WithField("section", key).Warn("Cannot determine trade type for section, skipping")
				continue
			}
			tradeType = fallback[unmapped]
			unmapped++
		}

		records, counters := trades.Normalize(st.Sections[key], tradeType)
		result.Counters.Merge(counters)

		inserted := trades.UpsertAll(ctx, p.Store, tradeType, records)
		result.Counters.AddInserted(tradeType, inserted)
		result.Records = append(result.Records, records...)
	}

	if p.Sheets != nil && len(result.Records) > 0 {
		if err := p.Sheets.AppendRecords(ctx, p.SheetName, result.Records); err != nil {
			runLog.WithError(err).Error("Failed to append records to spreadsheet")
		}
	}
}

// processCash extracts ending cash balances and persists them when a
// statement date can be derived from the source file name.
func (p *Pipeline) processCash(ctx context.Context, st *statement.Statement, sourceName string, result *Result, runLog *logrus.Entry) {
	result.Balances = cashreport.Extract(st)
	if p.Cash == nil || len(result.Balances) == 0 {
		return
	}

	date, err := cashreport.StatementDate(sourceName)
	if err != nil {
		runLog.WithError(err).Warn("Cannot derive statement date, skipping cash persistence")
		return
	}

	entries := result.Balances.PersistableEntries(date)
	if _, err := p.Cash.PersistCashEntries(ctx, entries); err != nil {
		runLog.WithError(err).Error("Failed to persist cash entries")
	}
}

// notify sends the run summary. A failing notifier is logged and ignored.
func (p *Pipeline) notify(ctx context.Context, st *statement.Statement, result *Result, runLog *logrus.Entry) {
	if p.Notifier == nil {
		return
	}

	c := result.Counters
	text := fmt.Sprintf(
		"Processed %d trade rows across %d sections. Stocks: %d (%d inserted), Options: %d (%d inserted), Bonds: %d (%d inserted). Ending cash currencies: %d.",
		c.Processed(), len(st.TradeKeys()),
		c.StocksProcessed, c.StocksInserted,
		c.OptionsProcessed, c.OptionsInserted,
		c.BondsProcessed, c.BondsInserted,
		len(result.Balances),
	)

	if err := p.Notifier.Notify(ctx, text); err != nil {
		runLog.WithError(err).Error("Failed to send notification")
	}
}
