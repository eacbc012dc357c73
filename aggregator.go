// FILE: aggregator.go
package mtmrunner

import "math"

// ProfitSlippage is subtracted from every MTM sample before computing the
// Sharpe ratio, lowering the expected-return term by ProfitSlippage per
// sample. It does not change sigma, so a dead-flat series still gets
// MinNumericValue.
const ProfitSlippage = 1e-6

// MinNumericValue is returned as the Sharpe ratio whenever the sample
// standard deviation is zero (a single-valued or empty series), mirroring
// the distilled spec's sentinel for "undefined, treat as worst case".
const MinNumericValue = -1e50

// MtmAggregator reduces a BookKeeper's committed MTM series into summary
// statistics: cumulative PnL, max drawdown, and an annualized Sharpe ratio.
// It is stateless — Aggregate can be called as many times as needed over
// different series.
type MtmAggregator struct{}

// NewMtmAggregator returns a ready-to-use aggregator.
func NewMtmAggregator() *MtmAggregator { return &MtmAggregator{} }

// AggregateResult holds the statistics Aggregate computes.
type AggregateResult struct {
	CumulativePnl float64
	MaxDrawdown   float64
	SharpeRatio   float64
}

// Aggregate reduces mtmValues, a time-ordered MTM series committed at
// timestampsMs (parallel, one entry per tick), into PnL/drawdown/Sharpe.
func (a *MtmAggregator) Aggregate(timestampsMs []int64, mtmValues []float64) AggregateResult {
	var cum float64
	var maxPnl float64
	var maxDrawdown float64
	for _, v := range mtmValues {
		cum += v
		if cum > maxPnl {
			maxPnl = cum
		}
		if dd := maxPnl - cum; dd > maxDrawdown {
			maxDrawdown = dd
		}
	}

	return AggregateResult{
		CumulativePnl: cum,
		MaxDrawdown:   maxDrawdown,
		SharpeRatio:   sharpeRatio(timestampsMs, mtmValues),
	}
}

// sharpeRatio follows spec.md §4.5: adjusted = mtm - ProfitSlippage,
// period_hours = (t_last-t_first)/3600s, expected_return = sum(adjusted)/
// period_hours, sigma = population stddev(adjusted), sharpe =
// (expected_return/sigma) * sqrt(365*24). Sigma==0 (including the empty and
// single-sample cases) is the documented MinNumericValue sentinel.
func sharpeRatio(timestampsMs []int64, mtmValues []float64) float64 {
	n := len(mtmValues)
	if n == 0 {
		return MinNumericValue
	}

	adjusted := make([]float64, n)
	var sum float64
	for i, v := range mtmValues {
		adjusted[i] = v - ProfitSlippage
		sum += adjusted[i]
	}
	mean := sum / float64(n)

	var variance float64
	for _, v := range adjusted {
		d := v - mean
		variance += d * d
	}
	variance /= float64(n)
	sigma := math.Sqrt(variance)

	if sigma == 0 {
		return MinNumericValue
	}

	periodHours := float64(timestampsMs[n-1]-timestampsMs[0]) / 1000 / 3600
	if periodHours == 0 {
		return MinNumericValue
	}
	expectedReturn := sum / periodHours
	return (expectedReturn / sigma) * math.Sqrt(365*24)
}
