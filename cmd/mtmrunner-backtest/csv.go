// FILE: cmd/mtmrunner-backtest/csv.go
// CSV bar loader, adapted from the core library's teacher repo's
// backtest.go loadCSV: flexible RFC3339-or-unix-seconds time parsing,
// case-insensitive headers, ignores unknown columns. Unlike the teacher's
// OHLCV candle loader this reads the columns the engine actually needs:
// time, close, buy, sell.
package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/chidi150c/mtmrunner"
)

type signalRow struct {
	timestampMs int64
	close       float64
	buy         bool
	sell        bool
}

func loadSignalCSV(path string) ([]signalRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var out []signalRow
	var headers []string
	rowIdx := 0

	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if rowIdx == 0 {
			headers = rec
			rowIdx++
			continue
		}
		row := map[string]string{}
		for j, h := range headers {
			k := strings.ToLower(strings.TrimSpace(h))
			if j < len(rec) {
				row[k] = strings.TrimSpace(rec[j])
			}
		}
		ts := firstNonEmpty(row, "time", "timestamp")
		cp := firstNonEmpty(row, "close")
		if ts == "" || cp == "" {
			continue
		}
		tt, err := parseTimeFlexible(ts)
		if err != nil {
			continue
		}
		c, _ := strconv.ParseFloat(cp, 64)
		buy := parseFlag(firstNonEmpty(row, "buy"))
		sell := parseFlag(firstNonEmpty(row, "sell"))

		out = append(out, signalRow{timestampMs: tt.UnixMilli(), close: c, buy: buy, sell: sell})
		rowIdx++
	}

	sort.Slice(out, func(i, j int) bool { return out[i].timestampMs < out[j].timestampMs })
	return out, nil
}

func parseTimeFlexible(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if sec, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(sec, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("bad time: %s", s)
}

func firstNonEmpty(m map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := m[k]; v != "" {
			return v
		}
	}
	return ""
}

func parseFlag(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "y", "yes":
		return true
	default:
		return false
	}
}

func toEngineRows(rows []signalRow) ([]mtmrunner.BuySignalRow, []mtmrunner.SellSignalRow) {
	buyRows := make([]mtmrunner.BuySignalRow, len(rows))
	sellRows := make([]mtmrunner.SellSignalRow, len(rows))
	for i, r := range rows {
		buyRows[i] = mtmrunner.BuySignalRow{TimestampMs: r.timestampMs, Close: r.close, Buy: r.buy}
		sellRows[i] = mtmrunner.SellSignalRow{TimestampMs: r.timestampMs, Close: r.close, Sell: r.sell}
	}
	return buyRows, sellRows
}
