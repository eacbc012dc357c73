// FILE: bookkeeper_test.go
package mtmrunner

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustConfig(t *testing.T, mutate func(*PnlCalcConfig)) *PnlCalcConfig {
	t.Helper()
	cfg := *DefaultPnlCalcConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	out, err := NewPnlCalcConfig(cfg)
	require.NoError(t, err)
	return out
}

func TestBookKeeperAscendingBuyThenSignalSell(t *testing.T) {
	cfg := mustConfig(t, nil)
	bk := NewBookKeeper("BTC-USD", cfg)

	require.NoError(t, bk.Tick(0, 100, 0, SignalBuy))
	assert.Len(t, bk.LiveLong, 1)

	require.NoError(t, bk.Tick(1000, 110, 10, SignalHold))
	require.NoError(t, bk.Tick(2000, 120, 10, SignalSell))

	assert.Len(t, bk.LiveLong, 0)
	assert.Len(t, bk.ArchiveLong, 1)
	assert.Equal(t, CloseSignal, bk.ArchiveLong[0].CloseReason)

	pnl, err := bk.ArchiveLong[0].Pnl()
	require.NoError(t, err)
	assert.InDelta(t, 20, pnl, 1e-9)
}

func TestBookKeeperStopLossCloses(t *testing.T) {
	cfg := mustConfig(t, func(c *PnlCalcConfig) {
		c.StopLoss = -0.05
		c.Roi = map[int]float64{0: math.Inf(1)}
	})
	bk := NewBookKeeper("BTC-USD", cfg)

	require.NoError(t, bk.Tick(0, 100, 0, SignalBuy))
	require.NoError(t, bk.Tick(1000, 94, -6, SignalHold))

	assert.Len(t, bk.LiveLong, 0)
	require.Len(t, bk.ArchiveLong, 1)
	assert.Equal(t, CloseStopLoss, bk.ArchiveLong[0].CloseReason)
}

func TestBookKeeperRoiTieredThreshold(t *testing.T) {
	cfg := mustConfig(t, func(c *PnlCalcConfig) {
		c.Roi = map[int]float64{0: 0.10, 5: 0.02}
	})
	bk := NewBookKeeper("BTC-USD", cfg)

	require.NoError(t, bk.Tick(0, 100, 0, SignalBuy))
	// 3% gain after 1 minute: only the 0-minute (10%) tier is active, and 3%
	// doesn't clear it.
	require.NoError(t, bk.Tick(60_000, 103, 3, SignalHold))
	assert.Len(t, bk.LiveLong, 1)

	// after 5 minutes both tiers are active; the binding constraint is the
	// max of active thresholds (10%), and 3% still doesn't clear it.
	require.NoError(t, bk.Tick(5*60_000, 103, 0, SignalHold))
	assert.Len(t, bk.LiveLong, 1)

	// a 15% gain clears the 10% max-active threshold.
	require.NoError(t, bk.Tick(6*60_000, 115, 12, SignalHold))
	assert.Len(t, bk.LiveLong, 0)
	require.Len(t, bk.ArchiveLong, 1)
	assert.Equal(t, CloseROI, bk.ArchiveLong[0].CloseReason)
}

func TestBookKeeperShortDisabledIsNoOp(t *testing.T) {
	cfg := mustConfig(t, func(c *PnlCalcConfig) {
		c.EnableShortPosition = false
	})
	bk := NewBookKeeper("BTC-USD", cfg)

	require.NoError(t, bk.Tick(0, 100, 0, SignalSell))
	assert.Len(t, bk.LiveShort, 0)
	assert.Len(t, bk.LiveLong, 0)
}

func TestBookKeeperCapExceededIsNoOp(t *testing.T) {
	cfg := mustConfig(t, func(c *PnlCalcConfig) {
		c.MaxPositionPerSymbol = 1
	})
	bk := NewBookKeeper("BTC-USD", cfg)

	require.NoError(t, bk.Tick(0, 100, 0, SignalBuy))
	require.NoError(t, bk.Tick(1000, 101, 1, SignalBuy))

	assert.Len(t, bk.LiveLong, 1, "second buy should be a silent no-op at cap")
}

func TestBookKeeperIdleTaxAppliedWhenFlat(t *testing.T) {
	cfg := mustConfig(t, func(c *PnlCalcConfig) {
		c.LaidBackTax = 0.001
	})
	bk := NewBookKeeper("BTC-USD", cfg)

	require.NoError(t, bk.Tick(0, 100, 0, SignalHold))
	require.Len(t, bk.MtmValues, 1)
	assert.InDelta(t, -0.001, bk.MtmValues[0], 1e-12)
}

func TestBookKeeperFeesDeductedFromMtmSeries(t *testing.T) {
	cfg := mustConfig(t, func(c *PnlCalcConfig) {
		c.FeeRate = 0.1
		c.LaidBackTax = 0
	})
	bk := NewBookKeeper("BTC-USD", cfg)

	// flat bars; BUY opens at the third tick, SELL closes later. With
	// price_diff always 0, MTM accrual contributes nothing, so the whole
	// series is driven by the open/close fees (spec.md scenario 6:
	// sum(mtm_series) ≈ -2*fee_rate == -0.2).
	for i := 0; i < 10; i++ {
		signal := SignalHold
		if i == 2 {
			signal = SignalBuy
		} else if i == 8 {
			signal = SignalSell
		}
		require.NoError(t, bk.Tick(int64(i*1000), 100, 0, signal))
	}

	assert.InDelta(t, -0.2, bk.CumulativePnl(), 1e-9)
}

func TestBookKeeperMtmSeriesLengthMatchesTicks(t *testing.T) {
	cfg := mustConfig(t, nil)
	bk := NewBookKeeper("BTC-USD", cfg)

	for i := 0; i < 10; i++ {
		require.NoError(t, bk.Tick(int64(i*1000), 100+float64(i), 1, SignalHold))
	}
	assert.Len(t, bk.MtmValues, 10)
	assert.Len(t, bk.MtmTimestampsMs, 10)
}

func TestBookKeeperShortClosesLongWorstPriceDefault(t *testing.T) {
	cfg := mustConfig(t, func(c *PnlCalcConfig) {
		c.MaxPositionPerSymbol = 2
	})
	bk := NewBookKeeper("BTC-USD", cfg)

	require.NoError(t, bk.Tick(0, 100, 0, SignalBuy))
	require.NoError(t, bk.Tick(1000, 90, -10, SignalBuy))
	require.Len(t, bk.LiveLong, 2)

	// a SELL signal closes one long (worst entry price first under WorstPrice).
	require.NoError(t, bk.Tick(2000, 95, 5, SignalSell))
	require.Len(t, bk.LiveLong, 1)
	require.Len(t, bk.ArchiveLong, 1)
	assert.True(t, bk.ArchiveLong[0].EntryPrice.Equal(dec("100")), "the higher (worse) entry should close first")
}
