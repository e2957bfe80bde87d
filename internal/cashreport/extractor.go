// Package cashreport extracts per-currency Ending Cash balances from the
// Cash Report sections of a parsed Activity Statement.
package cashreport

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"investflow/ibkr-csv/internal/parsererror"
	"investflow/ibkr-csv/internal/statement"
)

var log = logrus.New()

// SetLogger allows setting a configured logger
func SetLogger(logger *logrus.Logger) {
	if logger != nil {
		log = logger
	}
}

const endingCashLabel = "Ending Cash"

// BaseCurrencySummary is the broker's cross-currency rollup row. It stays in
// the extracted map but must not be persisted as a currency balance.
const BaseCurrencySummary = "Base Currency Summary"

// Cash Report column positions: description, currency, value.
const (
	colDescription = 0
	colCurrency    = 1
	colValue       = 2
)

// Balances maps a currency code to its last reported Ending Cash value. The
// value is a decimal.Decimal when the cell was numeric, otherwise the raw
// string is kept.
type Balances map[string]any

// Entry is one balance prepared for persistence, deduplicated downstream by
// the composite key date:currency.
type Entry struct {
	Date     string `json:"report_date"`
	Currency string `json:"currency"`
	Value    any    `json:"value"`
}

// Extract scans all Cash Report tables for Ending Cash rows and accumulates a
// currency to balance map. When the same currency appears more than once the
// last occurrence in table-then-row order wins.
func Extract(st *statement.Statement) Balances {
	balances := make(Balances)

	for _, key := range st.CashReportKeys() {
		tbl := st.Sections[key]
		if len(tbl.Columns) == 0 {
			continue
		}
		extractFromTable(tbl, balances)
	}

	log.WithField("currencies", len(balances)).Info("Extracted ending cash balances")
	return balances
}

func extractFromTable(tbl *statement.Table, balances Balances) {
	// A balance row needs at least description, currency and value columns.
	if len(tbl.Columns) < colValue+1 {
		log.WithField("section", tbl.Key).Warn("Cash report table too narrow for balance rows")
		return
	}

	for i := 0; i < tbl.Len(); i++ {
		desc, ok := tbl.ValueAt(i, colDescription)
		if !ok || desc != endingCashLabel {
			continue
		}

		currency, ok := tbl.ValueAt(i, colCurrency)
		if !ok || currency == "" {
			continue
		}
		raw, ok := tbl.ValueAt(i, colValue)
		if !ok || raw == "" {
			continue
		}

		if value, err := decimal.NewFromString(strings.TrimSpace(raw)); err == nil {
			balances[currency] = value
		} else {
			balances[currency] = raw
		}
	}
}

// PersistableEntries converts the balances into dated entries for the
// persistence collaborator, excluding the base currency rollup. Entries are
// sorted by currency for deterministic output.
func (b Balances) PersistableEntries(date string) []Entry {
	currencies := make([]string, 0, len(b))
	for currency := range b {
		if currency == BaseCurrencySummary {
			continue
		}
		currencies = append(currencies, currency)
	}
	sort.Strings(currencies)

	entries := make([]Entry, 0, len(currencies))
	for _, currency := range currencies {
		entries = append(entries, Entry{
			Date:     date,
			Currency: currency,
			Value:    b[currency],
		})
	}
	return entries
}

// StatementDate derives the report date from the statement file name, which
// the broker suffixes with the export day, e.g. "U1234567_20250423.csv".
func StatementDate(fileName string) (string, error) {
	base := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
	idx := strings.LastIndex(base, "_")
	if idx < 0 || idx == len(base)-1 {
		return "", &parsererror.ValidationError{
			FilePath: fileName,
			Reason:   "no date suffix in file name",
		}
	}

	t, err := time.Parse("20060102", base[idx+1:])
	if err != nil {
		return "", &parsererror.ValidationError{
			FilePath: fileName,
			Reason:   fmt.Sprintf("invalid date suffix %q", base[idx+1:]),
		}
	}
	return t.Format("2006-01-02"), nil
}
