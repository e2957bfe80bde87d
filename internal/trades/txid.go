package trades

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"

	"github.com/shopspring/decimal"
)

// TransactionID derives the deterministic identity of a trade from its
// execution time, symbol, quantity, price and broker code. The digest is the
// idempotency key for all downstream storage, so the rendering of the inputs
// must never change.
func TransactionID(executedAt, symbol string, quantity, price decimal.Decimal, code string) string {
	base := fmt.Sprintf("%s_%s_%s_%s_%s", executedAt, symbol, quantity.String(), price.String(), code)
	sum := md5.Sum([]byte(base))
	return hex.EncodeToString(sum[:])
}
