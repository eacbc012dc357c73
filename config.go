// FILE: config.go
// Package mtmrunner – PnlCalcConfig is the validated knob set a BookKeeper
// run is built from: take-profit thresholds, stop loss, stake sizing, and
// fee treatment. Construct one with NewPnlCalcConfig, which validates the
// same invariants the distilled spec's pydantic model enforced at
// construction time; there is no mutation after that.
package mtmrunner

import (
	"math"

	"github.com/shopspring/decimal"
)

// PnlCalcConfig parameterizes a BookKeeper run.
type PnlCalcConfig struct {
	// Roi maps "minutes since entry" to a normalized take-profit threshold.
	// Must contain a key of 0 (the immediate/base threshold).
	Roi map[int]float64

	// StopLoss is a strictly negative normalized PnL threshold; a trade
	// closes once its normalized PnL drops below -|StopLoss|.
	StopLoss float64

	// FixedStakeUnitAmount is the notional size of every opened trade.
	FixedStakeUnitAmount decimal.Decimal

	EnableShortPosition bool

	// MaxPositionPerSymbol caps the number of simultaneously open trades
	// (summed across long and short) for a symbol.
	MaxPositionPerSymbol int

	FeeRate     float64
	LaidBackTax float64

	// InventoryMode selects which open trade a signal close picks when more
	// than one is open. ROI and stop-loss closes do not use it: they close
	// every eligible trade. Defaults to WorstPrice when left zero-valued.
	InventoryMode InventoryMode
}

// DefaultPnlCalcConfig mirrors PnlCalcConfig.get_default() from the Python
// original: take-profit effectively disabled (roi={0: +Inf}), stop loss
// disabled (-Inf), no idle tax.
func DefaultPnlCalcConfig() *PnlCalcConfig {
	return &PnlCalcConfig{
		Roi:                   map[int]float64{0: math.Inf(1)},
		StopLoss:              math.Inf(-1),
		FixedStakeUnitAmount:  decimal.NewFromInt(100),
		EnableShortPosition:   false,
		MaxPositionPerSymbol:  1,
		FeeRate:               0,
		LaidBackTax:           0,
		InventoryMode:         WorstPrice,
	}
}

// NewPnlCalcConfig validates cfg and returns a defensive copy, or
// ErrConfigInvalid wrapping the first violation found.
func NewPnlCalcConfig(cfg PnlCalcConfig) (*PnlCalcConfig, error) {
	if len(cfg.Roi) == 0 {
		return nil, configError("roi must not be empty")
	}
	if _, ok := cfg.Roi[0]; !ok {
		return nil, configError("roi must contain a key of 0")
	}
	for k, v := range cfg.Roi {
		if k < 0 {
			return nil, configError("roi keys must be non-negative minute offsets")
		}
		if v < 0 {
			return nil, configError("roi values must be non-negative")
		}
	}
	if !(cfg.StopLoss < 0) {
		return nil, configError("stoploss must be strictly negative")
	}
	if cfg.FixedStakeUnitAmount.Sign() <= 0 {
		return nil, configError("fixed_stake_unit_amount must be positive")
	}
	if cfg.MaxPositionPerSymbol <= 0 {
		return nil, configError("max_position_per_symbol must be a positive integer")
	}
	if cfg.FeeRate < 0 {
		return nil, configError("fee_rate must be non-negative")
	}
	if cfg.LaidBackTax < 0 {
		return nil, configError("laid_back_tax must be non-negative")
	}
	if cfg.InventoryMode == "" {
		cfg.InventoryMode = WorstPrice
	}

	out := cfg
	out.Roi = make(map[int]float64, len(cfg.Roi))
	for k, v := range cfg.Roi {
		out.Roi[k] = v
	}
	return &out, nil
}
