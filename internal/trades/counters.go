package trades

// Counters accumulates per-trade-type processing metrics. Each stage returns
// its own value and the caller merges them; no shared mutable aggregate is
// passed around.
type Counters struct {
	StocksProcessed  int
	StocksInserted   int
	OptionsProcessed int
	OptionsInserted  int
	BondsProcessed   int
	BondsInserted    int
}

// Merge adds the other accumulator into this one.
func (c *Counters) Merge(other Counters) {
	c.StocksProcessed += other.StocksProcessed
	c.StocksInserted += other.StocksInserted
	c.OptionsProcessed += other.OptionsProcessed
	c.OptionsInserted += other.OptionsInserted
	c.BondsProcessed += other.BondsProcessed
	c.BondsInserted += other.BondsInserted
}

// AddProcessed counts rows walked for the given trade type.
func (c *Counters) AddProcessed(tradeType TradeType, n int) {
	switch tradeType {
	case TradeTypeOptions:
		c.OptionsProcessed += n
	case TradeTypeBonds:
		c.BondsProcessed += n
	default:
		c.StocksProcessed += n
	}
}

// AddInserted counts records newly stored for the given trade type.
func (c *Counters) AddInserted(tradeType TradeType, n int) {
	switch tradeType {
	case TradeTypeOptions:
		c.OptionsInserted += n
	case TradeTypeBonds:
		c.BondsInserted += n
	default:
		c.StocksInserted += n
	}
}

// Processed returns the total number of rows walked.
func (c Counters) Processed() int {
	return c.StocksProcessed + c.OptionsProcessed + c.BondsProcessed
}

// Inserted returns the total number of records newly stored.
func (c Counters) Inserted() int {
	return c.StocksInserted + c.OptionsInserted + c.BondsInserted
}
