package statement

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func init() {
	// Set up test logger
	testLogger := logrus.New()
	testLogger.SetLevel(logrus.DebugLevel)
	SetLogger(testLogger)
}

func TestTokenize(t *testing.T) {
	ln, ok := Tokenize("Trades,Header,DataDiscriminator,Asset Category,Currency,Symbol")
	assert.True(t, ok, "Expected a valid token")
	assert.Equal(t, "Trades", ln.Section)
	assert.Equal(t, RowKindHeader, ln.Kind)
	assert.Equal(t, []string{"DataDiscriminator", "Asset Category", "Currency", "Symbol"}, ln.Fields)
}

func TestTokenizeQuotedFields(t *testing.T) {
	ln, ok := Tokenize(`Trades,Data,Order,Stocks,"AAPL","2025-02-10, 09:31:02",10`)
	assert.True(t, ok)
	assert.Equal(t, RowKindData, ln.Kind)
	// The embedded comma inside the quoted timestamp must survive as one field
	assert.Equal(t, []string{"Order", "Stocks", "AAPL", "2025-02-10, 09:31:02", "10"}, ln.Fields)
}

func TestTokenizeTrimsLeadingSpaces(t *testing.T) {
	ln, ok := Tokenize("Cash Report,Data,Ending Cash, USD, 100.5")
	assert.True(t, ok)
	assert.Equal(t, []string{"Ending Cash", "USD", "100.5"}, ln.Fields)
}

func TestTokenizeDiscardsShortLines(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"empty line", ""},
		{"whitespace only", "   \t"},
		{"single part", "Trades"},
		{"two parts", "Trades,Header"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := Tokenize(tt.line)
			assert.False(t, ok, "Expected line %q to be discarded", tt.line)
		})
	}
}

func TestTokenizeTrimsSectionAndKind(t *testing.T) {
	ln, ok := Tokenize(" Trades , Data ,Order,Stocks")
	assert.True(t, ok)
	assert.Equal(t, "Trades", ln.Section)
	assert.Equal(t, RowKindData, ln.Kind)
}
