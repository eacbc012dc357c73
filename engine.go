// FILE: engine.go
package mtmrunner

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BuySignalRow is one row of the buy-side input: a close price and a
// resolved buy flag at a timestamp.
type BuySignalRow struct {
	TimestampMs int64
	Close       float64
	Buy         bool
}

// SellSignalRow is one row of the sell-side input: a close price and a
// resolved sell flag at a timestamp. It must be aligned index-for-index
// with the buy-side rows passed to the same Calculate call, matching the
// distilled spec's "merge buy + sell signal into one frame" step.
type SellSignalRow struct {
	TimestampMs int64
	Close       float64
	Sell        bool
}

// EngineDriver resolves a pair of buy/sell signal streams into a single
// BookKeeper run and assembles the final Result.
type EngineDriver struct {
	Config  *PnlCalcConfig
	metrics *Metrics
}

// NewEngineDriver builds a driver over cfg.
func NewEngineDriver(cfg *PnlCalcConfig) *EngineDriver {
	return &EngineDriver{Config: cfg}
}

// SetMetrics attaches Prometheus instrumentation to every BookKeeper this
// driver builds.
func (e *EngineDriver) SetMetrics(m *Metrics) {
	e.metrics = m
}

// Calculate merges buyRows/sellRows, runs the five-phase BookKeeper tick for
// every row, and returns the aggregated Result.
func (e *EngineDriver) Calculate(symbol string, buyRows []BuySignalRow, sellRows []SellSignalRow) (*Result, error) {
	if len(buyRows) != len(sellRows) {
		return nil, ErrMismatchedInputs
	}

	runStart := time.Now()

	bk := NewBookKeeper(symbol, e.Config)
	if e.metrics != nil {
		bk.SetMetrics(e.metrics)
	}

	n := len(buyRows)
	timeline := PnlTimeline{
		TimestampsMs: make([]int64, n),
		ClosePrice:   make([]float64, n),
		BuySignal:    make([]bool, n),
		SellSignal:   make([]bool, n),
		PnlRatio:     make([]float64, n),
	}

	var prevClose float64
	var runningPnl float64
	for i := 0; i < n; i++ {
		if buyRows[i].TimestampMs != sellRows[i].TimestampMs {
			return nil, fmt.Errorf("%w: row %d timestamps differ (%d vs %d)", ErrMismatchedInputs, i, buyRows[i].TimestampMs, sellRows[i].TimestampMs)
		}

		close := buyRows[i].Close
		var priceDiff float64
		if i == 0 {
			priceDiff = 0
		} else {
			priceDiff = close - prevClose
		}
		prevClose = close

		signal := resolveSignal(buyRows[i].Buy, sellRows[i].Sell)

		if err := bk.Tick(buyRows[i].TimestampMs, close, priceDiff, signal); err != nil {
			return nil, err
		}

		runningPnl += bk.MtmValues[i]
		timeline.TimestampsMs[i] = buyRows[i].TimestampMs
		timeline.ClosePrice[i] = close
		timeline.BuySignal[i] = buyRows[i].Buy
		timeline.SellSignal[i] = sellRows[i].Sell
		timeline.PnlRatio[i] = runningPnl
	}
	timeline.MtmRatio = bk.MtmValues

	agg := NewMtmAggregator().Aggregate(bk.MtmTimestampsMs, bk.MtmValues)
	if e.metrics != nil {
		e.metrics.ObserveAggregate(agg.SharpeRatio, agg.MaxDrawdown)
	}

	runEnd := time.Now()

	result := &Result{
		RunID:       uuid.NewString(),
		Symbol:      symbol,
		Params:      e.Config.paramsEcho(),
		Pnl:         agg.CumulativePnl,
		MaxDrawdown: agg.MaxDrawdown,
		SharpeRatio: agg.SharpeRatio,

		RunStartEpochMs: runStart.UnixMilli(),
		RunEndEpochMs:   runEnd.UnixMilli(),

		PnlTimeline: timeline,

		LongTradesArchive:      bk.ArchiveLong,
		ShortTradesArchive:     bk.ArchiveShort,
		LongTradesOutstanding:  bk.LiveLong,
		ShortTradesOutstanding: bk.LiveShort,
	}
	if n > 0 {
		result.MktStartEpochMs = buyRows[0].TimestampMs
		result.MktEndEpochMs = buyRows[n-1].TimestampMs
	}
	return result, nil
}

// resolveSignal implements the distilled spec's tie-break: BUY takes
// precedence when both flags are set on the same row.
func resolveSignal(buy, sell bool) Signal {
	switch {
	case buy:
		return SignalBuy
	case sell:
		return SignalSell
	default:
		return SignalHold
	}
}

// paramsEcho mirrors the original's Mtm_Result.params field: a plain map
// echo of the config a run was built with, for reporting/debugging.
func (c *PnlCalcConfig) paramsEcho() map[string]interface{} {
	roi := make(map[string]float64, len(c.Roi))
	for k, v := range c.Roi {
		roi[fmt.Sprintf("%d", k)] = v
	}
	return map[string]interface{}{
		"roi":                      roi,
		"stoploss":                 c.StopLoss,
		"fixed_stake_unit_amount":  c.FixedStakeUnitAmount.String(),
		"enable_short_position":    c.EnableShortPosition,
		"max_position_per_symbol":  c.MaxPositionPerSymbol,
		"fee_rate":                 c.FeeRate,
		"laid_back_tax":            c.LaidBackTax,
		"inventory_mode":           c.InventoryMode.String(),
	}
}
