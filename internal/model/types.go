package model

// Side values stored in the SIDE column.
const (
	SideBid uint8 = 0
	SideAsk uint8 = 1
)

// PriceScale is the fixed-point multiplier applied to prices before they
// are stored. A price of 100.50 is recorded as 10050.
const PriceScale = 100

// L2Row is one per-price-level delta from the exchange's level2 channel.
// The layout is fixed: this is the unit of record for the handoff queue
// and the columnar files.
type L2Row struct {
	TsNs  uint64  // exchange event time, nanoseconds since epoch
	Price uint32  // price * PriceScale
	Qty   float32 // new resting quantity at this level; 0 removes the level
	Side  uint8   // SideBid or SideAsk
}

// HourStart returns the epoch-second start of the UTC hour containing tsNs.
func HourStart(tsNs uint64) uint64 {
	sec := tsNs / 1_000_000_000
	return sec - sec%3600
}
