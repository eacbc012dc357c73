// FILE: cmd/mtmrunner-backtest/main.go
// Program entrypoint: a standalone demonstration/backtest harness for the
// mtmrunner core library, structured after the teacher repo's main.go boot
// sequence (flags -> config -> wiring, which starts the /metrics server ->
// run -> shut the server down) but driving mtmrunner.EngineDriver.Calculate
// instead of a live trading loop. /metrics is served only while the run is
// in progress.
//
// Flags:
//   -csv <path>      CSV of time,close,buy,sell rows to replay (required)
//   -symbol <name>   Symbol label attached to the run (default BTC-USD)
//   -out <path>      Optional path to write the Result as JSON
//   -port <n>        Port to serve Prometheus /metrics on (default from $PORT or 8080)
//
// Example:
//   go run ./cmd/mtmrunner-backtest -csv data/BTC-USD.csv -symbol BTC-USD
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/chidi150c/mtmrunner"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	var csvPath string
	var symbol string
	var outPath string
	var port int
	flag.StringVar(&csvPath, "csv", "", "Path to CSV (time,close,buy,sell)")
	flag.StringVar(&symbol, "symbol", "BTC-USD", "Symbol label for the run")
	flag.StringVar(&outPath, "out", "", "Optional path to write the Result as JSON")
	flag.IntVar(&port, "port", getEnvInt("PORT", 8080), "Port to serve /metrics on")
	flag.Parse()

	if csvPath == "" {
		log.Fatal("missing required -csv flag")
	}

	cfg, err := loadPnlConfigFromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	rows, err := loadSignalCSV(csvPath)
	if err != nil {
		log.Fatalf("loading %s: %v", csvPath, err)
	}
	if len(rows) == 0 {
		log.Fatalf("%s: no usable rows", csvPath)
	}
	buyRows, sellRows := toEngineRows(rows)

	metrics := mtmrunner.NewMetrics()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok\n"))
	})
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		log.Printf("serving metrics on :%d/metrics", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	engine := mtmrunner.NewEngineDriver(cfg)
	engine.SetMetrics(metrics)

	log.Printf("Backtest: csv=%s symbol=%s rows=%d", csvPath, symbol, len(rows))
	result, err := engine.Calculate(symbol, buyRows, sellRows)
	if err != nil {
		log.Fatalf("calculate: %v", err)
	}

	win, loss := tallyWinsLosses(result)
	log.Printf(
		"Backtest complete. Rows=%d Wins=%d Losses=%d Pnl=%.6f MaxDrawdown=%.6f Sharpe=%.6f",
		len(rows), win, loss, result.Pnl, result.MaxDrawdown, result.SharpeRatio,
	)
	log.Printf("%s", result.String())

	if outPath != "" {
		s, err := result.ToJSONString()
		if err != nil {
			log.Fatalf("marshal result: %v", err)
		}
		if err := os.WriteFile(outPath, []byte(s), 0o644); err != nil {
			log.Fatalf("write %s: %v", outPath, err)
		}
		log.Printf("wrote result to %s", outPath)
	}

	shutdownCtx, c := context.WithTimeout(context.Background(), 2*time.Second)
	defer c()
	_ = srv.Shutdown(shutdownCtx)
}

// tallyWinsLosses counts wins/losses directly off the archived trades'
// realized PnL, rather than parsing log lines the way the teacher's
// runBacktest does.
func tallyWinsLosses(r *mtmrunner.Result) (win, loss int) {
	for _, tr := range append(append([]*mtmrunner.Trade{}, r.LongTradesArchive...), r.ShortTradesArchive...) {
		pnl, err := tr.Pnl()
		if err != nil {
			continue
		}
		if pnl > 0 {
			win++
		} else if pnl < 0 {
			loss++
		}
	}
	return win, loss
}
