// FILE: bookkeeper.go
package mtmrunner

import (
	"log"
	"sort"

	"github.com/shopspring/decimal"
)

// BookKeeper tracks every open and closed position for a single symbol and
// drives the per-tick state machine: mark-to-market accrual, ROI closes,
// stop-loss closes, signal resolution, and idle-tax commit. One BookKeeper
// per symbol is enough to parallelize a multi-symbol run — there is no
// shared state between instances.
type BookKeeper struct {
	Symbol string
	Config *PnlCalcConfig
	roi    *RoiResolver

	LiveLong    []*Trade
	LiveShort   []*Trade
	ArchiveLong []*Trade
	ArchiveShort []*Trade

	// MtmTimestampsMs and MtmValues are parallel: one entry committed per
	// tick, in call order.
	MtmTimestampsMs []int64
	MtmValues       []float64

	nextLotSeq int64
	metrics    *Metrics
}

// NewBookKeeper builds an empty book for symbol under cfg.
func NewBookKeeper(symbol string, cfg *PnlCalcConfig) *BookKeeper {
	return &BookKeeper{
		Symbol: symbol,
		Config: cfg,
		roi:    NewRoiResolver(cfg.Roi),
	}
}

// SetMetrics attaches Prometheus instrumentation. Optional — a nil metrics
// pointer (the zero value) means Tick runs uninstrumented.
func (bk *BookKeeper) SetMetrics(m *Metrics) {
	bk.metrics = m
}

// Tick advances the book by one bar: price is the bar's close, priceDiff is
// close[t]-close[t-1] (0 on the first bar), and signal is the already
// resolved BUY/SELL/HOLD action for this tick.
func (bk *BookKeeper) Tick(timestampMs int64, price, priceDiff float64, signal Signal) error {
	tickMtm := bk.accrueMtm(priceDiff)

	priceDec := decimal.NewFromFloat(price)
	var feesT float64

	if err := bk.closeRoiEligible(bk.LiveLong, &bk.LiveLong, &bk.ArchiveLong, timestampMs, priceDec, &feesT); err != nil {
		return err
	}
	if err := bk.closeRoiEligible(bk.LiveShort, &bk.LiveShort, &bk.ArchiveShort, timestampMs, priceDec, &feesT); err != nil {
		return err
	}

	if err := bk.closeStopLossEligible(bk.LiveLong, &bk.LiveLong, &bk.ArchiveLong, timestampMs, priceDec, &feesT); err != nil {
		return err
	}
	if err := bk.closeStopLossEligible(bk.LiveShort, &bk.LiveShort, &bk.ArchiveShort, timestampMs, priceDec, &feesT); err != nil {
		return err
	}

	if err := bk.resolveSignal(signal, timestampMs, priceDec, &feesT); err != nil {
		return err
	}

	tickMtm -= feesT
	if len(bk.LiveLong) == 0 && len(bk.LiveShort) == 0 {
		tickMtm -= bk.Config.LaidBackTax
	}

	bk.MtmTimestampsMs = append(bk.MtmTimestampsMs, timestampMs)
	bk.MtmValues = append(bk.MtmValues, tickMtm)
	if bk.metrics != nil {
		bk.metrics.ObserveTick(bk.CumulativePnl())
	}
	return nil
}

// accrueMtm sums each currently-live trade's incremental MTM contribution
// for this tick's price move. It runs before any close/open decision for
// the tick, so a trade opened this tick never contributes (it wasn't live
// yet) and a trade closed this tick still gets its final tick of accrual.
func (bk *BookKeeper) accrueMtm(priceDiff float64) float64 {
	var total float64
	for _, tr := range bk.LiveLong {
		total += tr.CalculateMtmNormalized(priceDiff)
	}
	for _, tr := range bk.LiveShort {
		total += tr.CalculateMtmNormalized(priceDiff)
	}
	return total
}

// closeRoiEligible snapshots which live trades have crossed their ROI
// threshold, then rebuilds *live excluding them — no removal happens during
// the scan, so the iteration can never skip or double-visit an entry.
func (bk *BookKeeper) closeRoiEligible(snapshot []*Trade, live, archive *[]*Trade, timestampMs int64, price decimal.Decimal, feesT *float64) error {
	var idx []int
	for i, tr := range snapshot {
		normalizedPnl := tr.CalculatePnlNormalized(price, false)
		if bk.roi.CanTakeProfit(tr.EntryTimestampMs, timestampMs, normalizedPnl) {
			idx = append(idx, i)
		}
	}
	return bk.closeIndices(snapshot, idx, live, archive, timestampMs, price, CloseROI, feesT)
}

// closeStopLossEligible is closeRoiEligible's stop-loss counterpart: a trade
// closes once its normalized PnL drops below -|StopLoss|.
func (bk *BookKeeper) closeStopLossEligible(snapshot []*Trade, live, archive *[]*Trade, timestampMs int64, price decimal.Decimal, feesT *float64) error {
	threshold := -abs(bk.Config.StopLoss)
	var idx []int
	for i, tr := range snapshot {
		normalizedPnl := tr.CalculatePnlNormalized(price, false)
		if normalizedPnl < threshold {
			idx = append(idx, i)
		}
	}
	return bk.closeIndices(snapshot, idx, live, archive, timestampMs, price, CloseStopLoss, feesT)
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// closeIndices closes every trade named in idx (indices into snapshot),
// moves it to *archive, accrues Config.FeeRate into *feesT for each one (spec
// §4.4 Phase 2/3: every ROI/stop-loss close adds fee_rate to fees_t), and
// rebuilds *live from the remainder.
func (bk *BookKeeper) closeIndices(snapshot []*Trade, idx []int, live, archive *[]*Trade, timestampMs int64, price decimal.Decimal, reason CloseReason, feesT *float64) error {
	if len(idx) == 0 {
		return nil
	}
	toClose := make(map[int]bool, len(idx))
	for _, i := range idx {
		toClose[i] = true
	}

	remaining := make([]*Trade, 0, len(snapshot)-len(idx))
	for i, tr := range snapshot {
		if !toClose[i] {
			remaining = append(remaining, tr)
			continue
		}
		if err := tr.ClosePosition(price, timestampMs, reason); err != nil {
			return err
		}
		*archive = append(*archive, tr)
		*feesT += bk.Config.FeeRate
		bk.logClose(tr, reason)
		if bk.metrics != nil {
			bk.metrics.ObserveClose(tr.Direction, reason)
		}
	}
	*live = remaining
	return nil
}

func (bk *BookKeeper) logClose(tr *Trade, reason CloseReason) {
	pnl, _ := tr.Pnl()
	log.Printf("[CLOSE-%s] symbol=%s direction=%s entry=%s exit=%s pnl=%.6f",
		reason, tr.Symbol, tr.Direction, tr.EntryPrice.String(), tr.ExitPrice.String(), pnl)
}

// resolveSignal implements phase 4: BUY closes a live SHORT (if any, else
// opens a new LONG subject to the position cap), SELL symmetrically closes
// a live LONG or opens a new SHORT (subject to enable_short_position and the
// cap), HOLD is a no-op.
func (bk *BookKeeper) resolveSignal(signal Signal, timestampMs int64, price decimal.Decimal, feesT *float64) error {
	switch signal {
	case SignalBuy:
		if len(bk.LiveShort) > 0 {
			return bk.closeOneBySignal(&bk.LiveShort, &bk.ArchiveShort, timestampMs, price, feesT)
		}
		return bk.openIfAllowed(Long, timestampMs, price, feesT)
	case SignalSell:
		if len(bk.LiveLong) > 0 {
			return bk.closeOneBySignal(&bk.LiveLong, &bk.ArchiveLong, timestampMs, price, feesT)
		}
		if !bk.Config.EnableShortPosition {
			log.Printf("[SHORT-DISABLED] symbol=%s sell signal ignored: short positions disabled", bk.Symbol)
			return nil
		}
		return bk.openIfAllowed(Short, timestampMs, price, feesT)
	case SignalHold:
		return nil
	default:
		return unsupportedModeError(signal)
	}
}

// closeOneBySignal selects exactly one trade from *live (per
// Config.InventoryMode), closes it with reason SIGNAL, and accrues
// Config.FeeRate into *feesT (spec §4.4 Phase 4: every signal close adds
// fee_rate to fees_t).
func (bk *BookKeeper) closeOneBySignal(live, archive *[]*Trade, timestampMs int64, price decimal.Decimal, feesT *float64) error {
	trades := *live
	sorted := make([]*Trade, len(trades))
	copy(sorted, trades)

	var sortErr error
	sort.SliceStable(sorted, func(i, j int) bool {
		less, err := sorted[i].Less(sorted[j], bk.Config.InventoryMode)
		if err != nil {
			sortErr = err
		}
		return less
	})
	if sortErr != nil {
		return sortErr
	}

	chosen := sorted[0]
	remaining := make([]*Trade, 0, len(trades)-1)
	for _, tr := range trades {
		if tr == chosen {
			continue
		}
		remaining = append(remaining, tr)
	}

	if err := chosen.ClosePosition(price, timestampMs, CloseSignal); err != nil {
		return err
	}
	*archive = append(*archive, chosen)
	*live = remaining
	*feesT += bk.Config.FeeRate
	bk.logClose(chosen, CloseSignal)
	if bk.metrics != nil {
		bk.metrics.ObserveClose(chosen.Direction, CloseSignal)
	}
	return nil
}

// openIfAllowed opens a new trade of direction at price/timestampMs unless
// the per-symbol position cap is already reached, in which case it logs and
// returns nil — cap-exceeded is an expected no-op, not an error. Every
// successful open accrues Config.FeeRate into *feesT (spec §4.4 Phase 4:
// opening a position adds fee_rate to fees_t).
func (bk *BookKeeper) openIfAllowed(direction Direction, timestampMs int64, price decimal.Decimal, feesT *float64) error {
	openCount := len(bk.LiveLong) + len(bk.LiveShort)
	if openCount >= bk.Config.MaxPositionPerSymbol {
		log.Printf("[CAP-EXCEEDED] symbol=%s direction=%s open=%d max=%d", bk.Symbol, direction, openCount, bk.Config.MaxPositionPerSymbol)
		if bk.metrics != nil {
			bk.metrics.ObserveCapExceeded()
		}
		return nil
	}

	bk.nextLotSeq++
	feeRate := decimal.NewFromFloat(bk.Config.FeeRate)
	tr := NewTrade(bk.Symbol, direction, price, bk.Config.FixedStakeUnitAmount, feeRate, timestampMs, bk.nextLotSeq)

	if direction == Long {
		bk.LiveLong = append(bk.LiveLong, tr)
	} else {
		bk.LiveShort = append(bk.LiveShort, tr)
	}
	*feesT += bk.Config.FeeRate
	if bk.metrics != nil {
		bk.metrics.ObserveOpen(direction)
	}
	return nil
}

// CumulativePnl sums the committed MTM series, the bookkeeper-level
// equivalent of the original's calculate_mtm().
func (bk *BookKeeper) CumulativePnl() float64 {
	var sum float64
	for _, v := range bk.MtmValues {
		sum += v
	}
	return sum
}
