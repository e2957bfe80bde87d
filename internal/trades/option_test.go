package trades

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOptionSymbol(t *testing.T) {
	opt := parseOptionSymbol("ANET 21FEB25 107 P")
	assert.Equal(t, "ANET", opt.Underlying)
	assert.Equal(t, "21FEB25", opt.ExpirationDate)
	require.NotNil(t, opt.StrikePrice)
	assert.Equal(t, "107", opt.StrikePrice.String())
	assert.Equal(t, OptionTypePut, opt.OptionType)
}

func TestParseOptionSymbolCall(t *testing.T) {
	opt := parseOptionSymbol("AAPL 17JAN25 230 c")
	assert.Equal(t, OptionTypeCall, opt.OptionType, "Lowercase type token must be recognized")
}

func TestParseOptionSymbolUnknownType(t *testing.T) {
	opt := parseOptionSymbol("AAPL 17JAN25 230 X")
	assert.Equal(t, "X", opt.OptionType, "Unknown type tokens are kept raw, upper-cased")
}

func TestParseOptionSymbolMalformed(t *testing.T) {
	opt := parseOptionSymbol("JUSTANAME")
	assert.Equal(t, "JUSTANAME", opt.Underlying, "Malformed symbols fall back to the raw symbol")
	assert.Nil(t, opt.StrikePrice)
	assert.Empty(t, opt.ExpirationDate)
	assert.Empty(t, opt.OptionType)
}

func TestParseOptionSymbolBadStrike(t *testing.T) {
	opt := parseOptionSymbol("ANET 21FEB25 abc P")
	assert.Equal(t, "ANET", opt.Underlying)
	assert.Nil(t, opt.StrikePrice, "Unparsable strike becomes null")
	assert.Equal(t, OptionTypePut, opt.OptionType)
}
