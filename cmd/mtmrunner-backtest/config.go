// FILE: cmd/mtmrunner-backtest/config.go
// Builds a mtmrunner.PnlCalcConfig from environment variables, mirroring the
// core library's teacher repo's loadConfigFromEnv() pattern.
package main

import (
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"

	"github.com/chidi150c/mtmrunner"
	"github.com/shopspring/decimal"
)

// loadPnlConfigFromEnv reads runtime knobs with sane defaults, the way the
// core library's teacher repo's config.go does for its own Config struct.
//
//   ROI                   "minutes:threshold,minutes:threshold,..." (default "0:inf")
//   STOP_LOSS             negative float (default -1, i.e. effectively disabled)
//   FIXED_STAKE_UNIT      positive decimal string (default "100")
//   ENABLE_SHORT_POSITION bool (default false)
//   MAX_POSITION_PER_SYMBOL int (default 1)
//   FEE_RATE              float (default 0)
//   LAID_BACK_TAX         float (default 0)
//   INVENTORY_MODE        F|L|W (default W)
//   PORT                  metrics server port (default 8080)
//
// The run's symbol is not read from the environment; main takes it from
// the -symbol flag.
func loadPnlConfigFromEnv() (*mtmrunner.PnlCalcConfig, error) {
	roi, err := parseRoiEnv(getEnv("ROI", "0:inf"))
	if err != nil {
		return nil, err
	}

	stake, err := decimal.NewFromString(getEnv("FIXED_STAKE_UNIT", "100"))
	if err != nil {
		return nil, fmt.Errorf("FIXED_STAKE_UNIT: %w", err)
	}

	mode := mtmrunner.InventoryMode(getEnv("INVENTORY_MODE", string(mtmrunner.WorstPrice)))

	cfg, err := mtmrunner.NewPnlCalcConfig(mtmrunner.PnlCalcConfig{
		Roi:                   roi,
		StopLoss:              getEnvFloat("STOP_LOSS", -1.0),
		FixedStakeUnitAmount:  stake,
		EnableShortPosition:   getEnvBool("ENABLE_SHORT_POSITION", false),
		MaxPositionPerSymbol:  getEnvInt("MAX_POSITION_PER_SYMBOL", 1),
		FeeRate:               getEnvFloat("FEE_RATE", 0),
		LaidBackTax:           getEnvFloat("LAID_BACK_TAX", 0),
		InventoryMode:         mode,
	})
	if err != nil {
		return nil, err
	}
	log.Printf("config: roi=%v stoploss=%.4f stake=%s short=%v max_pos=%d fee_rate=%.4f laid_back_tax=%.6f inventory_mode=%s",
		cfg.Roi, cfg.StopLoss, cfg.FixedStakeUnitAmount.String(), cfg.EnableShortPosition,
		cfg.MaxPositionPerSymbol, cfg.FeeRate, cfg.LaidBackTax, cfg.InventoryMode)
	return cfg, nil
}

// parseRoiEnv parses "minutes:threshold,minutes:threshold,..." into a
// minutes->threshold map. "inf" is accepted as a threshold value.
func parseRoiEnv(s string) (map[int]float64, error) {
	out := map[int]float64{}
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("bad ROI entry %q: expected minutes:threshold", pair)
		}
		minutes, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, fmt.Errorf("bad ROI minutes in %q: %w", pair, err)
		}
		var threshold float64
		v := strings.TrimSpace(parts[1])
		if strings.EqualFold(v, "inf") {
			threshold = math.Inf(1)
		} else {
			threshold, err = strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("bad ROI threshold in %q: %w", pair, err)
			}
		}
		out[minutes] = threshold
	}
	return out, nil
}
