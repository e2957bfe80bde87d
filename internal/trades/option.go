package trades

import (
	"strings"

	"github.com/shopspring/decimal"
)

// optionSymbol holds the parsed components of a broker option symbol.
type optionSymbol struct {
	Underlying     string
	ExpirationDate string
	StrikePrice    *decimal.Decimal
	OptionType     string
}

// parseOptionSymbol parses the broker's option symbol format, e.g.
// "ANET 21FEB25 107 P" -> underlying ANET, expiring 21FEB25, strike 107, PUT.
// A symbol with fewer than four tokens falls back to the raw symbol as the
// underlying with all other components empty.
func parseOptionSymbol(symbol string) optionSymbol {
	parts := strings.Fields(symbol)
	if len(parts) < 4 {
		log.WithField("symbol", symbol).Warn("Unexpected option symbol format")
		return optionSymbol{Underlying: symbol}
	}

	parsed := optionSymbol{
		Underlying:     parts[0],
		ExpirationDate: parts[1],
	}

	if strike, err := decimal.NewFromString(parts[2]); err == nil {
		parsed.StrikePrice = &strike
	} else {
		log.WithField("strike", parts[2]).Warn("Cannot parse option strike price")
	}

	switch last := strings.ToUpper(parts[3]); last {
	case "C":
		parsed.OptionType = OptionTypeCall
	case "P":
		parsed.OptionType = OptionTypePut
	default:
		parsed.OptionType = last
	}

	return parsed
}
