// Package telemetry exposes Prometheus metrics for one backtest run:
// fills placed, order rejections by reason, equity, and drawdown. Mirrors
// the teacher stack's metrics.go idiom of package-level vectors
// registered once and updated through small setter/incrementer helpers.
package telemetry

import "github.com/prometheus/client_golang/prometheus"

var (
	fillsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backforge_fills_total",
			Help: "Fills executed, by symbol and side.",
		},
		[]string{"symbol", "side"},
	)

	rejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backforge_order_rejections_total",
			Help: "Orders rejected by the executor, by reason.",
		},
		[]string{"reason"},
	)

	exitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backforge_exit_orders_total",
			Help: "Exit orders created from fills, by kind (stop_loss|take_profit).",
		},
		[]string{"kind"},
	)

	equity = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "backforge_equity",
			Help: "Current equity of the running backtest.",
		},
	)

	drawdown = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "backforge_drawdown_ratio",
			Help: "Current drawdown from peak equity, as a fraction.",
		},
	)
)

func init() {
	prometheus.MustRegister(fillsTotal, rejectionsTotal, exitsTotal, equity, drawdown)
}

// ObserveFill records one executed fill.
func ObserveFill(symbol, side string) {
	fillsTotal.WithLabelValues(symbol, side).Inc()
}

// ObserveRejection records one order rejected by the executor, labeled by
// the sentinel error's message.
func ObserveRejection(reason string) {
	rejectionsTotal.WithLabelValues(reason).Inc()
}

// ObserveExit records one exit order created from a fill.
func ObserveExit(kind string) {
	exitsTotal.WithLabelValues(kind).Inc()
}

// SetEquity publishes the current equity gauge.
func SetEquity(v float64) {
	equity.Set(v)
}

// SetDrawdown publishes the current drawdown-ratio gauge.
func SetDrawdown(v float64) {
	drawdown.Set(v)
}
