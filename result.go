// FILE: result.go
package mtmrunner

import "fmt"

// PnlTimeline is the tick-by-tick record of a run: parallel arrays keyed by
// position, one entry per bar processed.
type PnlTimeline struct {
	TimestampsMs []int64
	MtmRatio     []float64
	ClosePrice   []float64
	BuySignal    []bool
	SellSignal   []bool
	PnlRatio     []float64
}

// Result is the outcome of one EngineDriver.Calculate call: summary
// statistics, the full timeline, and the trade ledger split by direction
// and open/closed state. RunID is a generated trace identifier only —
// it never participates in the deterministic reward computation.
type Result struct {
	RunID  string
	Symbol string
	Params map[string]interface{}

	Pnl         float64
	MaxDrawdown float64
	SharpeRatio float64

	MktStartEpochMs int64
	MktEndEpochMs   int64
	RunStartEpochMs int64
	RunEndEpochMs   int64

	PnlTimeline PnlTimeline

	LongTradesArchive      []*Trade
	ShortTradesArchive     []*Trade
	LongTradesOutstanding  []*Trade
	ShortTradesOutstanding []*Trade
}

// String renders a compact one-line summary, in the teacher's
// Decision.String() register.
func (r *Result) String() string {
	return fmt.Sprintf(
		"Result{id=%s symbol=%s pnl=%.6f max_drawdown=%.6f sharpe_ratio=%.6f longs=%d/%d shorts=%d/%d}",
		r.RunID, r.Symbol, r.Pnl, r.MaxDrawdown, r.SharpeRatio,
		len(r.LongTradesArchive), len(r.LongTradesOutstanding),
		len(r.ShortTradesArchive), len(r.ShortTradesOutstanding),
	)
}
