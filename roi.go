// FILE: roi.go
package mtmrunner

// RoiResolver answers whether a trade has crossed its time-tiered
// take-profit threshold. Thresholds are configured in minutes-since-entry
// (PnlCalcConfig.Roi); RoiResolver converts them to seconds once at
// construction and indexes them with an OrderedKeyIndex so that, at any
// elapsed duration, the set of "active" (already-unlocked) thresholds is a
// single KeysAtMost lookup.
type RoiResolver struct {
	thresholdBySeconds map[int64]float64
	index              *OrderedKeyIndex
}

// NewRoiResolver builds a resolver from a minutes->threshold map. roi must
// already have passed PnlCalcConfig validation (non-empty, contains key 0,
// non-negative keys/values) — NewRoiResolver does not re-validate it.
func NewRoiResolver(roi map[int]float64) *RoiResolver {
	bySeconds := make(map[int64]float64, len(roi))
	keys := make([]int64, 0, len(roi))
	for minutes, threshold := range roi {
		seconds := int64(minutes) * 60
		bySeconds[seconds] = threshold
		keys = append(keys, seconds)
	}
	return &RoiResolver{
		thresholdBySeconds: bySeconds,
		index:              NewOrderedKeyIndex(keys),
	}
}

// ActiveThresholds returns the take-profit values whose minute offset has
// already elapsed between entryMs and currentMs, in ascending order of
// activation time. It is always non-empty once at least entryMs <= currentMs,
// because the key-0 threshold activates immediately.
func (r *RoiResolver) ActiveThresholds(entryMs, currentMs int64) []float64 {
	elapsedSeconds := (currentMs - entryMs) / 1000
	activeKeys := r.index.KeysAtMost(elapsedSeconds)
	out := make([]float64, len(activeKeys))
	for i, k := range activeKeys {
		out[i] = r.thresholdBySeconds[k]
	}
	return out
}

// CanTakeProfit reports whether normalizedPnl strictly exceeds the maximum
// of the currently-active thresholds. The trade must clear every unlocked
// tier simultaneously — max(active) is the binding constraint, not the most
// lenient one.
func (r *RoiResolver) CanTakeProfit(entryMs, currentMs int64, normalizedPnl float64) bool {
	actives := r.ActiveThresholds(entryMs, currentMs)
	if len(actives) == 0 {
		return false
	}
	worst := actives[0]
	for _, th := range actives[1:] {
		if th > worst {
			worst = th
		}
	}
	return normalizedPnl > worst
}
