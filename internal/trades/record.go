// Package trades normalizes Activity Statement trade rows into canonical
// transaction records for stocks, equity/index options and Treasury bills.
package trades

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

// SetLogger allows setting a configured logger
func SetLogger(logger *logrus.Logger) {
	if logger != nil {
		log = logger
	}
}

func init() {
	// Persistence collaborators expect bare JSON numbers for monetary fields.
	decimal.MarshalJSONWithoutQuotes = true
}

// TradeType identifies which logical trade table a section holds.
type TradeType string

const (
	TradeTypeStocks  TradeType = "stocks"
	TradeTypeOptions TradeType = "options"
	TradeTypeBonds   TradeType = "bonds"
)

// Asset categories as the broker spells them in trade rows.
const (
	categoryStocks  = "Stocks"
	categoryOptions = "Equity and Index Options"
	categoryBonds   = "Treasury Bills"
)

// ExpectedCategory returns the Asset Category value rows must carry to belong
// to this trade type. Rows with any other category were merged into the
// section by the broker export and are skipped.
func (t TradeType) ExpectedCategory() string {
	switch t {
	case TradeTypeOptions:
		return categoryOptions
	case TradeTypeBonds:
		return categoryBonds
	default:
		return categoryStocks
	}
}

// Table returns the persistence table this trade type is stored in.
func (t TradeType) Table() string {
	switch t {
	case TradeTypeOptions:
		return "option_transactions"
	case TradeTypeBonds:
		return "bond_transactions"
	default:
		return "asset_transactions"
	}
}

// TradeTypeForKey maps an asset-category enriched section key (e.g.
// "Trades Equity and Index Options") to its trade type. Counter-suffixed
// keys carry no category and return false; the caller decides positionally.
func TradeTypeForKey(key string) (TradeType, bool) {
	switch {
	case strings.Contains(key, categoryOptions):
		return TradeTypeOptions, true
	case strings.Contains(key, categoryBonds):
		return TradeTypeBonds, true
	case strings.Contains(key, categoryStocks):
		return TradeTypeStocks, true
	}
	return "", false
}

// Transaction types derived from the broker code.
const (
	TypeOpen    = "open"
	TypeClose   = "close"
	TypeExpired = "expired"
)

// Trade sides derived from the quantity sign.
const (
	SideBuy  = "buy"
	SideSell = "sell"
)

// Option types derived from the last token of the option symbol.
const (
	OptionTypeCall = "CALL"
	OptionTypePut  = "PUT"
)

// Record is one normalized transaction. It is created once per qualifying
// trade row and immutable afterward. The option-only and bond-only fields are
// omitted from serialization when empty; option records intentionally carry
// no currency or asset category on the primary shape, that context lives only
// in RawData.
type Record struct {
	TransactionID  string           `json:"transaction_id" csv:"transaction_id"`
	ExecutedAt     string           `json:"executed_at" csv:"executed_at"`
	Ticker         string           `json:"ticker" csv:"ticker"`
	OptionType     string           `json:"option_type,omitempty" csv:"option_type"`
	StrikePrice    *decimal.Decimal `json:"strike_price,omitempty" csv:"strike_price"`
	ExpirationDate string           `json:"expiration_date,omitempty" csv:"expiration_date"`
	AssetCategory  string           `json:"asset_category,omitempty" csv:"asset_category"`
	Quantity       decimal.Decimal  `json:"quantity" csv:"quantity"`
	Price          decimal.Decimal  `json:"price" csv:"price"`
	Fees           decimal.Decimal  `json:"fees" csv:"fees"`
	Currency       string           `json:"currency,omitempty" csv:"currency"`
	Code           string           `json:"code" csv:"code"`
	Type           string           `json:"type" csv:"type"`
	Side           string           `json:"side" csv:"side"`
	Value          decimal.Decimal  `json:"value" csv:"value"`
	FullValue      decimal.Decimal  `json:"full_value" csv:"full_value"`
	RawData        map[string]any   `json:"raw_data" csv:"-"`
}
