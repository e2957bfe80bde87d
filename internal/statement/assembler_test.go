package statement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feed(t *testing.T, asm *Assembler, lines ...string) {
	t.Helper()
	for _, line := range lines {
		ln, ok := Tokenize(line)
		require.True(t, ok, "Test line should tokenize: %q", line)
		asm.Feed(ln)
	}
}

func TestAssemblerSingleBlock(t *testing.T) {
	asm := NewAssembler()
	feed(t, asm,
		"Statement,Header,Field Name,Field Value",
		"Statement,Data,BrokerName,IBKR",
	)

	sections, keys := asm.Finish()
	require.Equal(t, []string{"Statement"}, keys)
	tbl := sections["Statement"]
	require.NotNil(t, tbl)
	assert.Equal(t, []string{"Field Name", "Field Value"}, tbl.Columns)
	assert.Equal(t, 1, tbl.Len())
}

func TestAssemblerSupersededHeaderProducesNoBlock(t *testing.T) {
	asm := NewAssembler()
	feed(t, asm,
		"Statement,Header,A,B",
		"Statement,Header,C,D",
		"Statement,Data,1,2",
	)

	sections, keys := asm.Finish()
	require.Equal(t, []string{"Statement"}, keys, "The first header must be silently superseded")
	assert.Equal(t, []string{"C", "D"}, sections["Statement"].Columns)
}

func TestAssemblerHeaderWithoutRowsAtEOF(t *testing.T) {
	asm := NewAssembler()
	feed(t, asm, "Statement,Header,A,B")

	sections, keys := asm.Finish()
	assert.Empty(t, keys)
	assert.Empty(t, sections, "A header with no data rows produces no block")
}

func TestAssemblerDropsDataBeforeHeader(t *testing.T) {
	asm := NewAssembler()
	feed(t, asm,
		"Statement,Data,orphan,row",
		"Statement,Header,A,B",
		"Statement,Data,1,2",
	)

	sections, _ := asm.Finish()
	assert.Equal(t, 1, sections["Statement"].Len())
}

func TestAssemblerCounterKeys(t *testing.T) {
	asm := NewAssembler()
	feed(t, asm,
		"Statement,Header,A,B",
		"Statement,Data,1,2",
		"Statement,Header,C,D",
		"Statement,Data,3,4",
		"Statement,Header,E,F",
		"Statement,Data,5,6",
	)

	_, keys := asm.Finish()
	assert.Equal(t, []string{"Statement", "Statement 1", "Statement 2"}, keys)
}

func TestAssemblerTradesKeyedByAssetCategory(t *testing.T) {
	asm := NewAssembler()
	feed(t, asm,
		"Trades,Header,DataDiscriminator,Asset Category,Symbol",
		"Trades,Data,Order,Stocks,AAPL",
		"Trades,Header,DataDiscriminator,Asset Category,Symbol",
		"Trades,Data,Order,Equity and Index Options,ANET 21FEB25 107 P",
		"Trades,Header,DataDiscriminator,Asset Category,Symbol",
		"Trades,Data,Order,Treasury Bills,B 0 01/15/26",
	)

	sections, keys := asm.Finish()
	assert.Equal(t, []string{
		"Trades Stocks",
		"Trades Equity and Index Options",
		"Trades Treasury Bills",
	}, keys)
	for _, key := range keys {
		assert.NotNil(t, sections[key])
	}
}

func TestAssemblerTradesFallsBackToCounterWithoutCategory(t *testing.T) {
	asm := NewAssembler()
	feed(t, asm,
		"Trades,Header,DataDiscriminator,Asset Category,Symbol",
		"Trades,Data,Order,,AAPL",
		"Trades,Header,DataDiscriminator,Asset Category,Symbol",
		"Trades,Data,Order,,MSFT",
	)

	_, keys := asm.Finish()
	assert.Equal(t, []string{"Trades", "Trades 1"}, keys)
}

func TestAssemblerInterleavedSections(t *testing.T) {
	asm := NewAssembler()
	feed(t, asm,
		"Trades,Header,DataDiscriminator,Asset Category,Symbol",
		"Cash Report,Header,Currency Summary,Currency,Total",
		"Trades,Data,Order,Stocks,AAPL",
		"Cash Report,Data,Ending Cash,USD,100",
	)

	sections, _ := asm.Finish()
	require.Len(t, sections, 2)
	assert.Equal(t, 1, sections["Trades Stocks"].Len())
	assert.Equal(t, 1, sections["Cash Report"].Len())
}
