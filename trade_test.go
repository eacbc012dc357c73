// FILE: trade_test.go
package mtmrunner

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestTradeCalculatePnlLong(t *testing.T) {
	tr := NewTrade("BTC-USD", Long, dec("100"), dec("1"), dec("0"), 0, 1)
	pnl := tr.CalculatePnl(dec("110"), false)
	assert.True(t, pnl.Equal(dec("10")))
}

func TestTradeCalculatePnlShort(t *testing.T) {
	tr := NewTrade("BTC-USD", Short, dec("100"), dec("1"), dec("0"), 0, 1)
	pnl := tr.CalculatePnl(dec("90"), false)
	assert.True(t, pnl.Equal(dec("10")))
}

func TestTradeFeeIncludedAsymmetry(t *testing.T) {
	tr := NewTrade("BTC-USD", Long, dec("100"), dec("1"), dec("0.01"), 0, 1)

	// open trade: only entry fee deducted.
	openPnl := tr.CalculatePnl(dec("110"), true)
	assert.True(t, openPnl.Equal(dec("10").Sub(dec("1"))), "got %s", openPnl)

	require.NoError(t, tr.ClosePosition(dec("110"), 1000, CloseSignal))

	// closed trade: both entry and exit fee deducted.
	closedPnl := tr.CalculatePnl(dec("110"), true)
	assert.True(t, closedPnl.Equal(dec("10").Sub(dec("1")).Sub(dec("1.1"))), "got %s", closedPnl)
}

func TestTradePnlRequiresClosed(t *testing.T) {
	tr := NewTrade("BTC-USD", Long, dec("100"), dec("1"), dec("0"), 0, 1)
	_, err := tr.Pnl()
	assert.True(t, errors.Is(err, ErrTradeNotClosed))
}

func TestTradeClosePositionTwiceFails(t *testing.T) {
	tr := NewTrade("BTC-USD", Long, dec("100"), dec("1"), dec("0"), 0, 1)
	require.NoError(t, tr.ClosePosition(dec("110"), 1000, CloseSignal))
	err := tr.ClosePosition(dec("120"), 2000, CloseSignal)
	assert.True(t, errors.Is(err, ErrInvalidTradeState))
}

func TestTradeLessWorstPriceLong(t *testing.T) {
	cheap := NewTrade("BTC-USD", Long, dec("90"), dec("1"), dec("0"), 0, 1)
	expensive := NewTrade("BTC-USD", Long, dec("110"), dec("1"), dec("0"), 0, 2)

	less, err := expensive.Less(cheap, WorstPrice)
	require.NoError(t, err)
	assert.True(t, less, "the higher entry price is the worst LONG entry and should close first")
}

func TestTradeLessWorstPriceShort(t *testing.T) {
	low := NewTrade("BTC-USD", Short, dec("90"), dec("1"), dec("0"), 0, 1)
	high := NewTrade("BTC-USD", Short, dec("110"), dec("1"), dec("0"), 0, 2)

	less, err := low.Less(high, WorstPrice)
	require.NoError(t, err)
	assert.True(t, less, "the lower entry price is the worst SHORT entry and should close first")
}

func TestTradeLessFIFOAndLIFO(t *testing.T) {
	older := NewTrade("BTC-USD", Long, dec("100"), dec("1"), dec("0"), 1000, 1)
	newer := NewTrade("BTC-USD", Long, dec("100"), dec("1"), dec("0"), 2000, 2)

	fifo, err := older.Less(newer, FIFO)
	require.NoError(t, err)
	assert.True(t, fifo)

	lifo, err := newer.Less(older, LIFO)
	require.NoError(t, err)
	assert.True(t, lifo)
}

func TestTradeLessDirectionMismatch(t *testing.T) {
	l := NewTrade("BTC-USD", Long, dec("100"), dec("1"), dec("0"), 0, 1)
	s := NewTrade("BTC-USD", Short, dec("100"), dec("1"), dec("0"), 0, 2)
	_, err := l.Less(s, WorstPrice)
	assert.True(t, errors.Is(err, ErrDirectionMismatch))
}

func TestTradeCalculateMtmNormalizedShortSignFlip(t *testing.T) {
	l := NewTrade("BTC-USD", Long, dec("100"), dec("1"), dec("0"), 0, 1)
	s := NewTrade("BTC-USD", Short, dec("100"), dec("1"), dec("0"), 0, 2)

	assert.InDelta(t, 0.05, l.CalculateMtmNormalized(5), 1e-12)
	assert.InDelta(t, -0.05, s.CalculateMtmNormalized(5), 1e-12)
}
