package trades

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"investflow/ibkr-csv/internal/statement"
)

// batchSize is the number of records handed to the store per upsert call.
const batchSize = 100

// Store is the persistence collaborator. Records whose transaction id already
// exists must be silently skipped and not counted in the returned total.
type Store interface {
	UpsertBatch(ctx context.Context, table string, records []Record, ids []string) (int, error)
}

// Trade row columns as the broker spells them.
const (
	colAssetCategory = "Asset Category"
	colSymbol        = "Symbol"
	colDateTime      = "Date/Time"
	colCode          = "Code"
	colCurrency      = "Currency"
	colQuantity      = "Quantity"
	colTradePrice    = "T. Price"
	colCommFee       = "Comm/Fee"
)

// Normalize walks a trade table and builds one canonical record per row that
// belongs to the given trade type. Rows with a different asset category were
// merged into the section by the broker export and are skipped. Numeric
// coercion is permissive: unparsable fields default to zero, a row is never
// dropped for a coercion failure alone.
func Normalize(tbl *statement.Table, tradeType TradeType) ([]Record, Counters) {
	var counters Counters
	records := make([]Record, 0, tbl.Len())

	for i := 0; i < tbl.Len(); i++ {
		log.WithFields(logrus.Fields{
			"type": tradeType,
			"row":  i,
		}).Debug("Processing trade row")
		counters.AddProcessed(tradeType, 1)

		category := trimmedValue(tbl, i, colAssetCategory)
		if category != tradeType.ExpectedCategory() {
			log.WithField("asset_category", category).Debug("Skipping row with foreign asset category")
			continue
		}

		records = append(records, buildRecord(tbl, i, tradeType, category))
	}

	return records, counters
}

// buildRecord turns one qualifying table row into its canonical record.
func buildRecord(tbl *statement.Table, row int, tradeType TradeType, category string) Record {
	symbol := trimmedValue(tbl, row, colSymbol)
	// The broker embeds a comma between date and time.
	executedAt := strings.ReplaceAll(trimmedValue(tbl, row, colDateTime), ",", "")
	code := trimmedValue(tbl, row, colCode)

	currency := trimmedValue(tbl, row, colCurrency)
	if currency == "" {
		currency = "USD"
	}

	quantity := coerceDecimal(tbl, row, colQuantity)
	price := coerceDecimal(tbl, row, colTradePrice)
	fees := coerceDecimal(tbl, row, colCommFee)

	side := SideBuy
	if quantity.IsNegative() {
		side = SideSell
	}

	rec := Record{
		TransactionID: TransactionID(executedAt, symbol, quantity, price, code),
		ExecutedAt:    executedAt,
		Ticker:        symbol,
		Quantity:      quantity,
		Price:         price,
		Fees:          fees,
		Currency:      currency,
		Code:          strings.ToUpper(code),
		Type:          transactionType(code),
		Side:          side,
		RawData:       tbl.RowMap(row),
	}

	switch tradeType {
	case TradeTypeOptions:
		opt := parseOptionSymbol(symbol)
		rec.Ticker = opt.Underlying
		rec.OptionType = opt.OptionType
		rec.StrikePrice = opt.StrikePrice
		rec.ExpirationDate = opt.ExpirationDate
		// Options carry currency and asset category only inside raw_data.
		rec.Currency = ""
		// One contract covers 100 shares of the underlying.
		rec.Value = quantity.Mul(price).Mul(decimal.NewFromInt(100)).Neg()
	case TradeTypeBonds:
		rec.AssetCategory = category
		rec.Value = quantity.Mul(price).Neg()
	default:
		rec.Value = quantity.Mul(price).Neg()
	}
	rec.FullValue = rec.Value.Add(fees)

	return rec
}

// transactionType derives open/close/expired from the broker code.
func transactionType(code string) string {
	upper := strings.ToUpper(code)
	switch {
	case upper == "O":
		return TypeOpen
	case strings.Contains(upper, "EP"):
		return TypeExpired
	default:
		return TypeClose
	}
}

// UpsertAll hands the records to the store in sequential batches and returns
// how many were newly inserted. Store failures are logged per batch and never
// abort the remaining batches.
func UpsertAll(ctx context.Context, store Store, tradeType TradeType, records []Record) int {
	if store == nil || len(records) == 0 {
		return 0
	}

	table := tradeType.Table()
	total := 0
	for start := 0; start < len(records); start += batchSize {
		end := start + batchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]

		ids := make([]string, len(batch))
		for i, rec := range batch {
			ids[i] = rec.TransactionID
		}

		inserted, err := store.UpsertBatch(ctx, table, batch, ids)
		if err != nil {
			log.WithError(err).WithFields(logrus.Fields{
				"table": table,
				"batch": start / batchSize,
			}).Error("Failed to upsert batch")
			continue
		}
		total += inserted
	}

	log.WithFields(logrus.Fields{
		"table":    table,
		"inserted": total,
		"count":    len(records),
	}).Info("Upserted trade records")
	return total
}

func trimmedValue(tbl *statement.Table, row int, column string) string {
	v, _ := tbl.Value(row, column)
	return strings.TrimSpace(v)
}

// coerceDecimal parses a numeric cell, defaulting to zero on any failure.
func coerceDecimal(tbl *statement.Table, row int, column string) decimal.Decimal {
	v := trimmedValue(tbl, row, column)
	if v == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		log.WithFields(logrus.Fields{
			"column": column,
			"value":  v,
			"row":    row,
		}).Warn("Cannot parse numeric field, defaulting to 0")
		return decimal.Zero
	}
	return d
}
