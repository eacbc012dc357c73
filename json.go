// FILE: json.go
package mtmrunner

import (
	"encoding/json"
	"time"
)

// msToISO8601 converts a millisecond epoch timestamp to an ISO-8601/RFC3339
// string, the wire format spec.md's External Interfaces section requires
// for trade datetimes (mirroring the original's convert_ms_to_datetime).
func msToISO8601(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339Nano)
}

type tradeJSON struct {
	Symbol          string  `json:"symbol"`
	Direction       string  `json:"direction"`
	EntryPrice      string  `json:"entry_price"`
	Unit            string  `json:"unit"`
	FeeRate         string  `json:"fee_rate"`
	EntryDatetime   string  `json:"entry_datetime"`
	ExitPrice       *string `json:"exit_price,omitempty"`
	ExitDatetime    *string `json:"exit_datetime,omitempty"`
	IsClosed        bool    `json:"is_closed"`
	CloseReason     *string `json:"close_reason,omitempty"`
}

// MarshalJSON renders Trade with ISO-8601 datetimes and decimal fields
// serialized as strings, so no precision is lost round-tripping through a
// float-based JSON consumer.
func (t *Trade) MarshalJSON() ([]byte, error) {
	out := tradeJSON{
		Symbol:        t.Symbol,
		Direction:     t.Direction.String(),
		EntryPrice:    t.EntryPrice.String(),
		Unit:          t.Unit.String(),
		FeeRate:       t.FeeRate.String(),
		EntryDatetime: msToISO8601(t.EntryTimestampMs),
		IsClosed:      t.IsClosed,
	}
	if t.IsClosed {
		exitPrice := t.ExitPrice.String()
		exitDatetime := msToISO8601(t.ExitTimestampMs)
		reason := t.CloseReason.String()
		out.ExitPrice = &exitPrice
		out.ExitDatetime = &exitDatetime
		out.CloseReason = &reason
	}
	return json.Marshal(out)
}

type pnlTimelineJSON struct {
	Timestamp []string  `json:"timestamp"`
	MtmRatio  []float64 `json:"mtm_ratio"`
	ClosePrice []float64 `json:"close_price"`
	BuySignal []bool    `json:"buy_signal"`
	SellSignal []bool   `json:"sell_signal"`
	PnlRatio  []float64 `json:"pnl_ratio"`
}

func (tl PnlTimeline) MarshalJSON() ([]byte, error) {
	timestamps := make([]string, len(tl.TimestampsMs))
	for i, ms := range tl.TimestampsMs {
		timestamps[i] = msToISO8601(ms)
	}
	return json.Marshal(pnlTimelineJSON{
		Timestamp:  timestamps,
		MtmRatio:   tl.MtmRatio,
		ClosePrice: tl.ClosePrice,
		BuySignal:  tl.BuySignal,
		SellSignal: tl.SellSignal,
		PnlRatio:   tl.PnlRatio,
	})
}

type resultJSON struct {
	RunID       string                 `json:"run_id"`
	Symbol      string                 `json:"symbol"`
	Params      map[string]interface{} `json:"params"`
	Pnl         float64                `json:"pnl"`
	MaxDrawdown float64                `json:"max_drawdown"`
	SharpeRatio float64                `json:"sharpe_ratio"`

	MktStartEpoch int64 `json:"mkt_start_epoch"`
	MktEndEpoch   int64 `json:"mkt_end_epoch"`
	RunStartEpoch int64 `json:"run_start_epoch"`
	RunEndEpoch   int64 `json:"run_end_epoch"`

	PnlTimeline PnlTimeline `json:"pnl_timeline"`

	LongTradesArchive      []*Trade `json:"long_trades_archive"`
	ShortTradesArchive     []*Trade `json:"short_trades_archive"`
	LongTradesOutstanding  []*Trade `json:"long_trades_outstanding"`
	ShortTradesOutstanding []*Trade `json:"short_trades_outstanding"`
}

// MarshalJSON renders Result per spec.md §6's External Interfaces section.
func (r *Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(resultJSON{
		RunID:       r.RunID,
		Symbol:      r.Symbol,
		Params:      r.Params,
		Pnl:         r.Pnl,
		MaxDrawdown: r.MaxDrawdown,
		SharpeRatio: r.SharpeRatio,

		MktStartEpoch: r.MktStartEpochMs,
		MktEndEpoch:   r.MktEndEpochMs,
		RunStartEpoch: r.RunStartEpochMs,
		RunEndEpoch:   r.RunEndEpochMs,

		PnlTimeline: r.PnlTimeline,

		LongTradesArchive:      r.LongTradesArchive,
		ShortTradesArchive:     r.ShortTradesArchive,
		LongTradesOutstanding:  r.LongTradesOutstanding,
		ShortTradesOutstanding: r.ShortTradesOutstanding,
	})
}

// ToJSONString renders Result as an indented JSON string, the Go analogue
// of the original's Mtm_Result.to_json_str().
func (r *Result) ToJSONString() (string, error) {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
