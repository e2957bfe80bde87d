package trades

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"investflow/ibkr-csv/internal/statement"
)

func init() {
	// Set up test logger
	testLogger := logrus.New()
	testLogger.SetLevel(logrus.DebugLevel)
	SetLogger(testLogger)
}

var tradeColumns = []string{
	"DataDiscriminator", "Asset Category", "Currency", "Symbol",
	"Date/Time", "Quantity", "T. Price", "Comm/Fee", "Code",
}

func tradeTable(t *testing.T, rows ...[]string) *statement.Table {
	t.Helper()
	tbl, err := statement.NewTable("Trades", tradeColumns, rows)
	require.NoError(t, err)
	return tbl
}

func TestNormalizeStockRow(t *testing.T) {
	tbl := tradeTable(t,
		[]string{"Order", "Stocks", "USD", "AAPL", "2025-02-10, 09:31:02", "10", "5.0", "-1.0", "O"},
	)

	records, counters := Normalize(tbl, TradeTypeStocks)
	require.Len(t, records, 1)
	assert.Equal(t, 1, counters.StocksProcessed)

	rec := records[0]
	assert.Equal(t, "2025-02-10 09:31:02", rec.ExecutedAt, "The embedded comma must be stripped")
	assert.Equal(t, "AAPL", rec.Ticker)
	assert.Equal(t, SideBuy, rec.Side)
	assert.Equal(t, TypeOpen, rec.Type)
	assert.Equal(t, "USD", rec.Currency)
	assert.Equal(t, "O", rec.Code)
	assert.True(t, rec.Value.Equal(decimal.NewFromInt(-50)), "value = -quantity*price, got %s", rec.Value)
	assert.True(t, rec.FullValue.Equal(decimal.NewFromInt(-51)), "fullValue = value + fees, got %s", rec.FullValue)
	assert.Equal(t, rec.TransactionID, TransactionID(rec.ExecutedAt, "AAPL", rec.Quantity, rec.Price, "O"))
	assert.Equal(t, "AAPL", rec.RawData["Symbol"])
}

func TestNormalizeOptionRow(t *testing.T) {
	tbl := tradeTable(t,
		[]string{"Order", "Equity and Index Options", "USD", "ANET 21FEB25 107 P", "2025-02-10, 10:00:00", "-2", "3.0", "-0.5", "C"},
	)

	records, _ := Normalize(tbl, TradeTypeOptions)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "ANET", rec.Ticker)
	assert.Equal(t, OptionTypePut, rec.OptionType)
	require.NotNil(t, rec.StrikePrice)
	assert.True(t, rec.StrikePrice.Equal(decimal.NewFromInt(107)))
	assert.Equal(t, "21FEB25", rec.ExpirationDate)
	assert.Equal(t, SideSell, rec.Side)
	assert.True(t, rec.Value.Equal(decimal.NewFromInt(600)), "value = -quantity*price*100, got %s", rec.Value)
	assert.Empty(t, rec.Currency, "Options carry no currency on the primary shape")
	assert.Empty(t, rec.AssetCategory)
	assert.Equal(t, "USD", rec.RawData["Currency"], "Currency survives inside raw data")
}

func TestNormalizeBondRow(t *testing.T) {
	tbl := tradeTable(t,
		[]string{"Order", "Treasury Bills", "USD", "B 0 01/15/26", "2025-02-12, 11:00:00", "1000", "0.9876", "-0.8", "O"},
	)

	records, counters := Normalize(tbl, TradeTypeBonds)
	require.Len(t, records, 1)
	assert.Equal(t, 1, counters.BondsProcessed)

	rec := records[0]
	assert.Equal(t, "Treasury Bills", rec.AssetCategory)
	assert.True(t, rec.Value.Equal(decimal.NewFromFloat(-987.6)), "got %s", rec.Value)
}

func TestNormalizeSkipsForeignAssetCategory(t *testing.T) {
	tbl := tradeTable(t,
		[]string{"Order", "Stocks", "USD", "AAPL", "2025-02-10, 09:31:02", "10", "5.0", "-1.0", "O"},
		[]string{"Order", "Equity and Index Options", "USD", "ANET 21FEB25 107 P", "2025-02-10, 10:00:00", "-2", "3.0", "-0.5", "C"},
		[]string{"SubTotal", "", "", "", "", "", "", "", ""},
	)

	records, counters := Normalize(tbl, TradeTypeStocks)
	require.Len(t, records, 1, "Only the matching category survives")
	assert.Equal(t, "AAPL", records[0].Ticker)
	assert.Equal(t, 3, counters.StocksProcessed, "All rows are counted as processed")
}

func TestNormalizeCoercionDefaults(t *testing.T) {
	tbl := tradeTable(t,
		[]string{"Order", "Stocks", "", "AAPL", "2025-02-10, 09:31:02", "not-a-number", "", "bogus", "c"},
	)

	records, _ := Normalize(tbl, TradeTypeStocks)
	require.Len(t, records, 1, "A row is never dropped for a coercion failure alone")

	rec := records[0]
	assert.True(t, rec.Quantity.IsZero())
	assert.True(t, rec.Price.IsZero())
	assert.True(t, rec.Fees.IsZero())
	assert.Equal(t, "USD", rec.Currency, "Missing currency defaults to USD")
	assert.Equal(t, SideBuy, rec.Side, "Zero quantity is not negative, so side is buy")
	assert.Equal(t, TypeClose, rec.Type)
	assert.Equal(t, "C", rec.Code)
}

func TestTransactionTypeFromCode(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"O", TypeOpen},
		{"o", TypeOpen},
		{"C", TypeClose},
		{"C;EP", TypeExpired},
		{"ep", TypeExpired},
		{"", TypeClose},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, transactionType(tt.code))
		})
	}
}

func TestTradeTypeForKey(t *testing.T) {
	tradeType, ok := TradeTypeForKey("Trades Stocks")
	assert.True(t, ok)
	assert.Equal(t, TradeTypeStocks, tradeType)

	tradeType, ok = TradeTypeForKey("Trades Equity and Index Options")
	assert.True(t, ok)
	assert.Equal(t, TradeTypeOptions, tradeType)

	tradeType, ok = TradeTypeForKey("Trades Treasury Bills")
	assert.True(t, ok)
	assert.Equal(t, TradeTypeBonds, tradeType)

	_, ok = TradeTypeForKey("Trades 1")
	assert.False(t, ok, "Counter keys carry no category")
}

// memoryStore records upserts and skips ids it has already seen.
type memoryStore struct {
	seen    map[string]bool
	batches int
	failing bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{seen: make(map[string]bool)}
}

func (m *memoryStore) UpsertBatch(_ context.Context, table string, records []Record, ids []string) (int, error) {
	if m.failing {
		return 0, fmt.Errorf("store unavailable")
	}
	m.batches++
	inserted := 0
	for _, id := range ids {
		if !m.seen[id] {
			m.seen[id] = true
			inserted++
		}
	}
	return inserted, nil
}

func TestUpsertAllBatches(t *testing.T) {
	var rows [][]string
	for i := 0; i < 250; i++ {
		rows = append(rows, []string{
			"Order", "Stocks", "USD", fmt.Sprintf("SYM%d", i),
			"2025-02-10, 09:31:02", "1", fmt.Sprintf("%d.5", i), "-1.0", "O",
		})
	}
	records, _ := Normalize(tradeTable(t, rows...), TradeTypeStocks)
	require.Len(t, records, 250)

	st := newMemoryStore()
	inserted := UpsertAll(context.Background(), st, TradeTypeStocks, records)
	assert.Equal(t, 250, inserted)
	assert.Equal(t, 3, st.batches, "250 records should go out as 100+100+50")
}

func TestUpsertAllIdempotent(t *testing.T) {
	tbl := tradeTable(t,
		[]string{"Order", "Stocks", "USD", "AAPL", "2025-02-10, 09:31:02", "10", "5.0", "-1.0", "O"},
		[]string{"Order", "Stocks", "USD", "MSFT", "2025-02-11, 10:15:44", "-4", "410.25", "-1.1", "C"},
	)

	st := newMemoryStore()
	records, _ := Normalize(tbl, TradeTypeStocks)
	first := UpsertAll(context.Background(), st, TradeTypeStocks, records)

	records, _ = Normalize(tbl, TradeTypeStocks)
	second := UpsertAll(context.Background(), st, TradeTypeStocks, records)

	assert.Equal(t, 2, first)
	assert.Equal(t, 0, second, "Re-running the same input must not insert again")
	assert.Len(t, st.seen, 2)
}

func TestUpsertAllSurvivesStoreFailure(t *testing.T) {
	tbl := tradeTable(t,
		[]string{"Order", "Stocks", "USD", "AAPL", "2025-02-10, 09:31:02", "10", "5.0", "-1.0", "O"},
	)
	records, _ := Normalize(tbl, TradeTypeStocks)

	inserted := UpsertAll(context.Background(), &memoryStore{failing: true}, TradeTypeStocks, records)
	assert.Equal(t, 0, inserted, "A failing store yields zero inserts, not a panic")
}

func TestUpsertAllNilStore(t *testing.T) {
	assert.Equal(t, 0, UpsertAll(context.Background(), nil, TradeTypeStocks, []Record{{}}))
}
