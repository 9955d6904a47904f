package models

import "github.com/backforge/backforge/pkg/money"

// EquitySnapshot is recorded once per bar. Only Equity, Return, and
// MaxDrawdown are populated; the risk-adjusted fields stay zero, since
// internal/report writes its ratios to BacktestReport.Metrics instead.
type EquitySnapshot struct {
	TimestampNs int64
	Equity      money.Money
	Return      float64
	MaxDrawdown float64

	Sharpe        float64
	Sortino       float64
	Calmar        float64
	TailRatio     float64
	VaR           float64
	CVaR          float64
	RollingSharpe float64
}
