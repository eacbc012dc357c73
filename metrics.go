// FILE: metrics.go
// Package mtmrunner – Prometheus metrics for observability of a backtest
// run: ticks processed, trades opened/closed by side and reason, and
// running PnL/Sharpe/drawdown gauges. Registered against a dedicated
// *prometheus.Registry owned by each Metrics value (rather than the global
// default registry the teacher's bot used) so a test or a multi-symbol run
// can build more than one Metrics without a "duplicate metrics collector
// registration" panic.
package mtmrunner

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the counters/gauges one BookKeeper or EngineDriver run
// reports through. The zero value is not usable; build one with NewMetrics.
type Metrics struct {
	registry *prometheus.Registry

	ticksTotal   prometheus.Counter
	tradesOpened *prometheus.CounterVec
	tradesClosed *prometheus.CounterVec
	capExceeded  prometheus.Counter

	cumulativePnl prometheus.Gauge
	sharpeRatio   prometheus.Gauge
	maxDrawdown   prometheus.Gauge
}

// NewMetrics builds and registers a fresh metric set.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		ticksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mtmrunner_ticks_total",
			Help: "Number of bars processed by the engine.",
		}),
		tradesOpened: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mtmrunner_trades_opened_total",
			Help: "Trades opened, by direction.",
		}, []string{"direction"}),
		tradesClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mtmrunner_trades_closed_total",
			Help: "Trades closed, by direction and close reason.",
		}, []string{"direction", "reason"}),
		capExceeded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mtmrunner_cap_exceeded_total",
			Help: "Signals that would have opened a new position past max_position_per_symbol.",
		}),
		cumulativePnl: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mtmrunner_cumulative_pnl",
			Help: "Running sum of the committed MTM series.",
		}),
		sharpeRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mtmrunner_sharpe_ratio",
			Help: "Last computed Sharpe ratio.",
		}),
		maxDrawdown: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mtmrunner_max_drawdown",
			Help: "Max drawdown of the committed MTM series, set at the end of a run.",
		}),
	}

	reg.MustRegister(m.ticksTotal, m.tradesOpened, m.tradesClosed, m.capExceeded,
		m.cumulativePnl, m.sharpeRatio, m.maxDrawdown)
	return m
}

// Registry exposes the underlying registry so a caller (e.g. the CLI
// harness) can serve it over promhttp.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveTick records one processed bar and the running cumulative PnL.
func (m *Metrics) ObserveTick(cumulativePnl float64) {
	m.ticksTotal.Inc()
	m.cumulativePnl.Set(cumulativePnl)
}

// ObserveOpen records a newly opened trade.
func (m *Metrics) ObserveOpen(direction Direction) {
	m.tradesOpened.WithLabelValues(direction.String()).Inc()
}

// ObserveClose records a trade closing for the given reason.
func (m *Metrics) ObserveClose(direction Direction, reason CloseReason) {
	m.tradesClosed.WithLabelValues(direction.String(), reason.String()).Inc()
}

// ObserveCapExceeded records a no-op caused by max_position_per_symbol.
func (m *Metrics) ObserveCapExceeded() {
	m.capExceeded.Inc()
}

// ObserveAggregate records the final Sharpe ratio and max drawdown computed
// by MtmAggregator at the end of a run.
func (m *Metrics) ObserveAggregate(sharpe, maxDrawdown float64) {
	m.sharpeRatio.Set(sharpe)
	m.maxDrawdown.Set(maxDrawdown)
}
