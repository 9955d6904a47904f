// Package report computes the post-hoc summary statistics attached to a
// completed backtest report: return, risk-adjusted ratios, drawdown, and
// round-trip trade statistics derived from the fill log.
package report

import (
	"math"
	"sort"

	"github.com/backforge/backforge/pkg/models"
	"github.com/backforge/backforge/pkg/money"
)

const tradingDaysPerYear = 252

// Compute fills in report.Metrics from report.EquityCurve and
// report.Fills. riskFreeRate is annual (e.g. 0.05 for 5%).
func Compute(r *models.BacktestReport, riskFreeRate float64) {
	trades := deriveTrades(r.Fills)

	computeReturnAndDrawdown(r)
	computeTradeStats(r, trades)
	computeSharpeSortino(r, riskFreeRate)
	r.Metrics.Calmar = calmar(r.Metrics.CAGR, r.Metrics.MaxDrawdown)
}

// ────────────────────────────────────────────────────────────────────
// Round-trip trades
// ────────────────────────────────────────────────────────────────────

// trade is one closed (or partially closed) lot: the realized P&L from
// matching a closing fill against an earlier opening fill on the same
// symbol, FIFO.
type trade struct {
	Symbol string
	PnL    money.Money
}

// lot is one still-open slice of a prior fill, consumed FIFO by later
// opposite-side fills on the same symbol.
type lot struct {
	side  models.Side
	qty   float64
	price money.Money
}

// deriveTrades replays the fill log per symbol, FIFO-matching each fill
// against the opposite-side open lots it closes, and returns one trade
// per matched fragment. A fill that extends or opens a position leaves a
// new lot and produces no trade.
func deriveTrades(fills []models.Fill) []trade {
	open := make(map[string][]lot)
	var trades []trade

	for _, f := range fills {
		queue := open[f.Symbol]
		remaining := f.Quantity

		for remaining > 0 && len(queue) > 0 && queue[0].side != f.Side {
			front := &queue[0]
			closeQty := math.Min(front.qty, remaining)

			var pnl money.Money
			if front.side == models.Buy {
				pnl = f.Price.Sub(front.price).MulFloat(closeQty)
			} else {
				pnl = front.price.Sub(f.Price).MulFloat(closeQty)
			}
			trades = append(trades, trade{Symbol: f.Symbol, PnL: pnl})

			front.qty -= closeQty
			remaining -= closeQty
			if front.qty <= 0 {
				queue = queue[1:]
			}
		}

		if remaining > 0 {
			queue = append(queue, lot{side: f.Side, qty: remaining, price: f.Price})
		}
		open[f.Symbol] = queue
	}

	return trades
}

// ────────────────────────────────────────────────────────────────────
// Trade statistics
// ────────────────────────────────────────────────────────────────────

func computeTradeStats(r *models.BacktestReport, trades []trade) {
	m := &r.Metrics
	m.TotalTrades = len(trades)
	if m.TotalTrades == 0 {
		return
	}

	var totalWin, totalLoss float64
	var consecutiveWins, consecutiveLosses int

	for _, t := range trades {
		pnl := t.PnL.ToFloat()
		switch {
		case pnl > 0:
			m.WinningTrades++
			totalWin += pnl
			consecutiveWins++
			consecutiveLosses = 0
		case pnl < 0:
			m.LosingTrades++
			totalLoss += -pnl
			consecutiveLosses++
			consecutiveWins = 0
		default:
			consecutiveWins = 0
			consecutiveLosses = 0
		}
		if consecutiveWins > m.MaxConsecutiveWins {
			m.MaxConsecutiveWins = consecutiveWins
		}
		if consecutiveLosses > m.MaxConsecutiveLosses {
			m.MaxConsecutiveLosses = consecutiveLosses
		}
	}

	m.WinRate = float64(m.WinningTrades) / float64(m.TotalTrades)

	if m.WinningTrades > 0 {
		m.AverageWin = money.FromFloat(totalWin / float64(m.WinningTrades))
	}
	if m.LosingTrades > 0 {
		m.AverageLoss = money.FromFloat(totalLoss / float64(m.LosingTrades))
	}
	if totalLoss > 0 {
		m.ProfitFactor = totalWin / totalLoss
	} else if totalWin > 0 {
		m.ProfitFactor = math.Inf(1)
	}

	var totalPnL float64
	for _, t := range trades {
		totalPnL += t.PnL.ToFloat()
	}
	m.ExpectancyPerTrade = money.FromFloat(totalPnL / float64(m.TotalTrades))
	m.MedianTradePnL = medianTradePnL(trades)
}

// ────────────────────────────────────────────────────────────────────
// Return and drawdown
// ────────────────────────────────────────────────────────────────────

func computeReturnAndDrawdown(r *models.BacktestReport) {
	curve := r.EquityCurve
	if len(curve) == 0 {
		return
	}
	last := curve[len(curve)-1]
	r.Metrics.TotalReturn = last.Return
	r.Metrics.MaxDrawdown = last.MaxDrawdown
	r.Metrics.CAGR = computeCAGR(curve)
}

func computeCAGR(curve []models.EquitySnapshot) float64 {
	if len(curve) < 2 {
		return 0
	}
	first, last := curve[0], curve[len(curve)-1]
	if first.Equity.ToFloat() <= 0 || last.Equity.ToFloat() <= 0 {
		return 0
	}
	seconds := float64(last.TimestampNs-first.TimestampNs) / 1e9
	years := seconds / (365.25 * 24 * 3600)
	if years <= 0 {
		return 0
	}
	return math.Pow(last.Equity.ToFloat()/first.Equity.ToFloat(), 1/years) - 1
}

// ────────────────────────────────────────────────────────────────────
// Sharpe / Sortino (annualized from per-bar returns)
// ────────────────────────────────────────────────────────────────────

func computeSharpeSortino(r *models.BacktestReport, riskFreeRate float64) {
	returns := barReturns(r.EquityCurve)
	if len(returns) < 2 {
		return
	}

	periodRf := riskFreeRate / tradingDaysPerYear
	excess := make([]float64, len(returns))
	for i, ret := range returns {
		excess[i] = ret - periodRf
	}

	m := mean(excess)
	sd := stddev(excess)
	if sd > 0 {
		r.Metrics.Sharpe = (m / sd) * math.Sqrt(tradingDaysPerYear)
	}

	var downsideSqSum float64
	var downsideCount int
	for _, e := range excess {
		if e < 0 {
			downsideSqSum += e * e
			downsideCount++
		}
	}
	if downsideCount > 0 {
		downsideDev := math.Sqrt(downsideSqSum / float64(len(excess)))
		if downsideDev > 0 {
			r.Metrics.Sortino = (m / downsideDev) * math.Sqrt(tradingDaysPerYear)
		}
	}
}

func calmar(cagr, maxDrawdown float64) float64 {
	if maxDrawdown <= 0 {
		return 0
	}
	return cagr / maxDrawdown
}

// ────────────────────────────────────────────────────────────────────
// Helpers
// ────────────────────────────────────────────────────────────────────

func barReturns(curve []models.EquitySnapshot) []float64 {
	if len(curve) < 2 {
		return nil
	}
	returns := make([]float64, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Equity.ToFloat()
		if prev > 0 {
			returns[i-1] = (curve[i].Equity.ToFloat() - prev) / prev
		}
	}
	return returns
}

func mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	var sum float64
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

func stddev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	m := mean(data)
	var sumSq float64
	for _, v := range data {
		d := v - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(data)-1))
}

// medianTradePnL returns the median P&L across trades, robust to the
// outliers a mean-based expectancy figure is sensitive to.
func medianTradePnL(trades []trade) float64 {
	if len(trades) == 0 {
		return 0
	}
	pnls := make([]float64, len(trades))
	for i, t := range trades {
		pnls[i] = t.PnL.ToFloat()
	}
	sort.Float64s(pnls)
	n := len(pnls)
	if n%2 == 0 {
		return (pnls[n/2-1] + pnls[n/2]) / 2
	}
	return pnls[n/2]
}
