// FILE: trade.go
package mtmrunner

import (
	"math"

	"github.com/shopspring/decimal"
)

// Trade is one open or closed position. Monetary fields (EntryPrice,
// ExitPrice, Unit, FeeRate) are decimal.Decimal so that fee and PnL
// arithmetic does not accumulate binary floating-point drift across a
// multi-thousand-tick backtest; normalized PnL and MTM values, which feed
// directly into statistics that need math.Sqrt, are handed back as float64.
type Trade struct {
	Symbol    string
	Direction Direction

	EntryPrice      decimal.Decimal
	Unit            decimal.Decimal
	FeeRate         decimal.Decimal
	EntryTimestampMs int64

	ExitPrice       decimal.Decimal
	ExitTimestampMs int64
	IsClosed        bool
	CloseReason     CloseReason

	// LotSeq is a monotonically increasing in-run sequence number assigned
	// at open time, used only to break ties deterministically when two
	// trades share an entry price or entry timestamp. It is never derived
	// from wall-clock time or randomness.
	LotSeq int64
}

// NewTrade opens a trade. entryPrice and unit must already be positive;
// NewTrade does not validate them (BookKeeper is responsible for that, since
// it is the only caller).
func NewTrade(symbol string, direction Direction, entryPrice, unit, feeRate decimal.Decimal, entryTimestampMs int64, lotSeq int64) *Trade {
	return &Trade{
		Symbol:           symbol,
		Direction:        direction,
		EntryPrice:       entryPrice,
		Unit:             unit,
		FeeRate:          feeRate,
		EntryTimestampMs: entryTimestampMs,
		LotSeq:           lotSeq,
	}
}

// CalculatePnl returns the absolute PnL of the trade evaluated at price. When
// feeIncluded is true, the entry fee is always deducted, and the exit fee is
// additionally deducted once the trade is closed (using its own ExitPrice,
// independent of the price argument) — this asymmetry matches the distilled
// spec: an open trade's unrealized PnL only ever reflects the fee it has
// actually paid so far.
func (t *Trade) CalculatePnl(price decimal.Decimal, feeIncluded bool) decimal.Decimal {
	var diff decimal.Decimal
	if t.Direction == Long {
		diff = price.Sub(t.EntryPrice)
	} else {
		diff = t.EntryPrice.Sub(price)
	}
	if feeIncluded {
		diff = diff.Sub(t.FeeRate.Mul(t.EntryPrice))
		if t.IsClosed {
			diff = diff.Sub(t.FeeRate.Mul(t.ExitPrice))
		}
	}
	return diff
}

// CalculatePnlNormalized is CalculatePnl divided by EntryPrice.
func (t *Trade) CalculatePnlNormalized(price decimal.Decimal, feeIncluded bool) float64 {
	pnl := t.CalculatePnl(price, feeIncluded)
	norm, _ := pnl.Div(t.EntryPrice).Float64()
	return norm
}

// CalculateMtmNormalized returns the incremental mark-to-market contribution
// of this trade for a single tick's priceDiff (close[t] - close[t-1]), sign
// flipped for SHORT, normalized by entry price. A NaN priceDiff (the first
// bar of a run has none) is treated as zero.
func (t *Trade) CalculateMtmNormalized(priceDiff float64) float64 {
	if math.IsNaN(priceDiff) {
		priceDiff = 0
	}
	signed := priceDiff
	if t.Direction == Short {
		signed = -priceDiff
	}
	entry, _ := t.EntryPrice.Float64()
	if entry == 0 {
		return 0
	}
	return signed / entry
}

// Pnl returns the realized, fee-included PnL of a closed trade.
func (t *Trade) Pnl() (float64, error) {
	if !t.IsClosed {
		return 0, tradeNotClosedError(t.Symbol, t.EntryPrice.String())
	}
	v, _ := t.CalculatePnl(t.ExitPrice, true).Float64()
	return v, nil
}

// PnlNormalized returns Pnl divided by EntryPrice.
func (t *Trade) PnlNormalized() (float64, error) {
	if !t.IsClosed {
		return 0, tradeNotClosedError(t.Symbol, t.EntryPrice.String())
	}
	return t.CalculatePnlNormalized(t.ExitPrice, true), nil
}

// ClosePosition closes the trade at exitPrice/exitTimestampMs with the given
// reason. Closing an already-closed trade is a programmer error (invariant
// T1: a trade closes exactly once) and returns ErrInvalidTradeState.
func (t *Trade) ClosePosition(exitPrice decimal.Decimal, exitTimestampMs int64, reason CloseReason) error {
	if t.IsClosed {
		return invalidTradeStateError("trade already closed")
	}
	t.ExitPrice = exitPrice
	t.ExitTimestampMs = exitTimestampMs
	t.IsClosed = true
	t.CloseReason = reason
	return nil
}

// Less reports whether t should be selected to close before other under the
// given inventory mode. Both trades must share the same Direction; comparing
// across directions is a programmer error (ErrDirectionMismatch).
//
//   - WorstPrice: the trade currently sitting on the worse entry is closed
//     first — for LONG that is the highest entry price, for SHORT the
//     lowest.
//   - FIFO: the oldest open trade (smallest EntryTimestampMs) closes first.
//   - LIFO: the most recently opened trade (largest EntryTimestampMs) closes
//     first.
//
// Ties are broken by LotSeq ascending so that ordering stays deterministic
// run-to-run.
func (t *Trade) Less(other *Trade, mode InventoryMode) (bool, error) {
	if t.Direction != other.Direction {
		return false, ErrDirectionMismatch
	}
	switch mode {
	case WorstPrice:
		if t.EntryPrice.Equal(other.EntryPrice) {
			return t.LotSeq < other.LotSeq, nil
		}
		if t.Direction == Long {
			return t.EntryPrice.GreaterThan(other.EntryPrice), nil
		}
		return t.EntryPrice.LessThan(other.EntryPrice), nil
	case FIFO:
		if t.EntryTimestampMs == other.EntryTimestampMs {
			return t.LotSeq < other.LotSeq, nil
		}
		return t.EntryTimestampMs < other.EntryTimestampMs, nil
	case LIFO:
		if t.EntryTimestampMs == other.EntryTimestampMs {
			return t.LotSeq < other.LotSeq, nil
		}
		return t.EntryTimestampMs > other.EntryTimestampMs, nil
	default:
		return false, unsupportedModeError(mode)
	}
}
