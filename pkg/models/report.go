package models

import (
	"encoding/json"

	"github.com/backforge/backforge/pkg/money"
)

// BacktestReport is the output of one backtest run: the equity curve
// (one entry per bar), the full fill log, the plugin's own end-of-run
// report, and a summary-metrics placeholder populated by a later
// reporting pass.
type BacktestReport struct {
	Strategy      string
	EquityCurve   []EquitySnapshot
	Fills         []Fill
	PluginReport  json.RawMessage
	Metrics       Metrics
}

// Metrics holds the post-hoc summary statistics computed from a
// completed equity curve and fill log.
type Metrics struct {
	TotalReturn          float64
	CAGR                 float64
	Sharpe               float64
	Sortino              float64
	Calmar               float64
	MaxDrawdown          float64
	WinRate              float64
	TotalTrades          int
	WinningTrades        int
	LosingTrades          int
	AverageWin           money.Money
	AverageLoss          money.Money
	ProfitFactor         float64
	MaxConsecutiveWins   int
	MaxConsecutiveLosses int
	ExpectancyPerTrade   money.Money
	MedianTradePnL       float64
}
