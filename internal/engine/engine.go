package engine

import (
	"fmt"
	"log/slog"

	"github.com/backforge/backforge/internal/exchange"
	"github.com/backforge/backforge/internal/executor"
	"github.com/backforge/backforge/internal/exitbook"
	"github.com/backforge/backforge/internal/idgen"
	"github.com/backforge/backforge/internal/limitbook"
	"github.com/backforge/backforge/internal/manifest"
	"github.com/backforge/backforge/internal/plugin"
	"github.com/backforge/backforge/internal/positioning"
	"github.com/backforge/backforge/internal/report"
	"github.com/backforge/backforge/internal/scheduledbook"
	"github.com/backforge/backforge/internal/simulation"
	"github.com/backforge/backforge/internal/slippage"
	"github.com/backforge/backforge/internal/telemetry"
	"github.com/backforge/backforge/pkg/models"
	"github.com/backforge/backforge/pkg/money"
)

// Engine runs one strategy over one chronologically merged bar sequence.
// One Engine instance processes one backtest; it holds no state shared
// with any other Engine.
type Engine struct {
	params    *manifest.HostParams
	calendar  *exchange.Calendar
	idgen     *idgen.Generator
	log       *slog.Logger

	state     *simulation.State
	exits     *exitbook.Book
	limits    *limitbook.Book
	scheduled *scheduledbook.Book

	symbolCount int
}

// New constructs an Engine for one backtest run.
func New(params *manifest.HostParams, log *slog.Logger) (*Engine, error) {
	if err := manifest.Validate(params); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	initialCapital, err := money.Parse(params.InitialCapital)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid initial_capital: %v", ErrConfiguration, err)
	}
	if log == nil {
		log = slog.Default()
	}

	return &Engine{
		params:    params,
		calendar:  exchange.NewCalendar(params.TimezoneName),
		idgen:     idgen.New(params.Seed),
		log:       log,
		state:     simulation.New(initialCapital),
		exits:     exitbook.New(),
		limits:    limitbook.New(),
		scheduled: scheduledbook.New(),
	}, nil
}

// Run drives strategy through the full bar sequence (assumed
// chronologically merged across symbols) and returns the completed
// report, or a fatal ErrPluginFailure error. Symbols are taken from the
// bars themselves, so Run makes no missing-bar-data check and never
// returns ErrMissingBarData.
func (e *Engine) Run(strategy plugin.Strategy, bars []models.Bar) (*models.BacktestReport, error) {
	if err := strategy.OnStart(); err != nil {
		return nil, fmt.Errorf("%w: OnStart: %v", ErrPluginFailure, err)
	}

	e.symbolCount = countSymbols(bars)

	for _, bar := range bars {
		// Step 1: advance the price snapshot for this bar's symbol.
		e.state.CurrentBarPrices[bar.Symbol] = simulation.BarPrices{
			Open: bar.Open, High: bar.High, Low: bar.Low, Close: bar.Close, Volume: bar.Volume,
		}

		// Step 2: market-hours gate.
		if !e.calendar.IsWithinMarketHourRestrictions(bar.UnixTsNs, e.params.MarketHoursOnly) {
			continue
		}

		// Step 3: drain the scheduled-order book.
		for _, order := range e.scheduled.DrainDue(bar.UnixTsNs) {
			if err := e.applyOrder(order); err != nil {
				return nil, err
			}
		}

		// Step 4: match the limit-order book against this bar's close.
		for _, order := range e.limits.ScanSymbol(bar.Symbol, bar.Close) {
			e.scheduled.Add(order, bar.UnixTsNs)
		}

		// Step 5: scan the exit-order book.
		for _, triggered := range e.exits.Scan(e.closePrices()) {
			exitOrder := exitToOrder(triggered, bar.UnixTsNs)
			fillAt := e.scheduleFillTime(exitOrder, bar.UnixTsNs, bar.Volume)
			e.scheduled.Add(exitOrder, fillAt)
		}

		// Step 6: invoke the strategy.
		snapshot := e.snapshot()
		code, instructions, err := strategy.OnBar(bar, snapshot)
		if err != nil || code != plugin.CodeOK {
			return nil, fmt.Errorf("%w: %v (code=%v)", ErrPluginFailure, err, code)
		}

		// Step 7: convert instructions to orders and schedule them.
		for _, ins := range instructions {
			order, ok := e.instructionToOrder(ins, bar)
			if !ok {
				continue
			}
			if order.OrderType == models.Limit {
				e.limits.Add(order)
				continue
			}
			fillAt := e.scheduleFillTime(order, bar.UnixTsNs, bar.Volume)
			e.scheduled.Add(order, fillAt)
		}

		// Step 8: record the equity snapshot.
		snap := e.state.RecordEquitySnapshot(bar.UnixTsNs)
		telemetry.SetEquity(snap.Equity.ToFloat())
		var drawdown float64
		if peak := e.state.PeakEquity.ToFloat(); peak > 0 {
			drawdown = (peak - snap.Equity.ToFloat()) / peak
		}
		telemetry.SetDrawdown(drawdown)

		// Step 9: clear per-bar deltas.
		e.state.ClearBarDeltas()
	}

	pluginReport, err := strategy.OnEnd()
	if err != nil {
		return nil, fmt.Errorf("%w: OnEnd: %v", ErrPluginFailure, err)
	}

	result := &models.BacktestReport{
		Strategy:     strategy.Name(),
		EquityCurve:  e.state.EquityCurve,
		Fills:        e.state.Fills,
		PluginReport: pluginReport,
	}
	report.Compute(result, e.params.RiskFreeRate)
	return result, nil
}

// applyOrder runs an order through the executor and, on success,
// applies its cash delta to simulation state and records the new fill
// and exit orders.
func (e *Engine) applyOrder(order models.Order) error {
	commissionFn := func(rate, qty float64, price money.Money) money.Money {
		return exchange.Commission(e.params.CommissionType, rate, qty, price)
	}
	result := executor.Execute(order, e.params, e.state, e.idgen, commissionFn)
	if !result.Ok() {
		e.log.Debug("order execution rejected", "symbol", order.Symbol, "reason", result.Err)
		telemetry.ObserveRejection(result.Err.Error())
		return nil
	}

	e.state.Cash = e.state.Cash.Add(result.CashDelta)
	e.state.MarginInUse = e.state.MarginInUse.Add(result.MarginRequired)
	e.state.AppendFill(result.Fill)
	telemetry.ObserveFill(order.Symbol, order.Side.String())

	for _, consumed := range result.ConsumedFills {
		e.exits.ReduceByFillUUID(consumed.UUID, consumed.Qty)
	}

	for _, exitOrder := range result.ExitOrders {
		e.exits.Add(exitOrder)
		e.state.NewExitOrders = append(e.state.NewExitOrders, exitOrder)
		telemetry.ObserveExit(exitKindLabel(exitOrder.Kind))
	}

	if result.PartialOrder != nil {
		bp := e.state.CurrentBarPrices[order.Symbol]
		fillAt := e.scheduleFillTime(*result.PartialOrder, order.CreatedAtNs, bp.Volume)
		e.scheduled.Add(*result.PartialOrder, fillAt)
	}

	return nil
}

// closePrices snapshots the current bar close for every symbol the
// engine has seen so far, for the exit-order book's scan.
func (e *Engine) closePrices() map[string]money.Money {
	out := make(map[string]money.Money, len(e.state.CurrentBarPrices))
	for symbol, bp := range e.state.CurrentBarPrices {
		out[symbol] = bp.Close
	}
	return out
}

// scheduleFillTime computes the fill timestamp for order under the
// host's configured slippage model.
func (e *Engine) scheduleFillTime(order models.Order, barTsNs int64, barVolume int64) int64 {
	return slippage.ScheduleFillTime(e.params.SlippageModel, e.params.Slippage, order, barTsNs, barVolume)
}

func (e *Engine) snapshot() plugin.StateSnapshot {
	positions := make([]models.Position, 0, len(e.state.Positions))
	for _, p := range e.state.Positions {
		positions = append(positions, p)
	}
	return plugin.StateSnapshot{
		Cash:          e.state.Cash,
		Positions:     positions,
		NewFills:      e.state.NewFills,
		NewExitOrders: e.state.NewExitOrders,
		EquityCurve:   e.state.EquityCurve,
	}
}

func (e *Engine) instructionToOrder(ins plugin.Instruction, bar models.Bar) (models.Order, bool) {
	switch ins.Kind {
	case plugin.InstructionOrder:
		return ins.Order, true
	case plugin.InstructionSignal:
		return e.signalToOrder(ins.Signal, bar), true
	default:
		return models.Order{}, false
	}
}

func (e *Engine) signalToOrder(sig models.Signal, bar models.Bar) models.Order {
	equity := e.state.Equity()
	qty := positioning.SizeSignal(e.params.PositionSizingMethod, e.params.PositionSizeValue, equity, bar.Close, e.symbolCount, e.params.MaxPositionSize)

	order := models.Order{
		Symbol:      sig.Symbol,
		Side:        sig.Side,
		Quantity:    qty,
		OrderType:   models.Market,
		CreatedAtNs: bar.UnixTsNs,
		Leverage:    1,
	}

	if e.params.UseStopLoss {
		sl := stopLossPrice(bar.Close, e.params.StopLossPct, sig.Side)
		order.StopLossPrice = &sl
	}
	if e.params.UseTakeProfit {
		tp := takeProfitPrice(bar.Close, e.params.TakeProfitPct, sig.Side)
		order.TakeProfitPrice = &tp
	}
	return order
}

func stopLossPrice(close money.Money, pct float64, side models.Side) money.Money {
	if side == models.Buy {
		return close.MulFloat(1 - pct)
	}
	return close.MulFloat(1 + pct)
}

func takeProfitPrice(close money.Money, pct float64, side models.Side) money.Money {
	if side == models.Buy {
		return close.MulFloat(1 + pct)
	}
	return close.MulFloat(1 - pct)
}

func exitToOrder(e models.ExitOrder, tsNs int64) models.Order {
	side := models.Sell
	if e.IsShortPosition {
		side = models.Buy
	}
	return models.Order{
		Symbol:         e.Symbol,
		Side:           side,
		Quantity:       e.TriggerQuantity,
		OrderType:      models.Market,
		CreatedAtNs:    tsNs,
		IsExitOrder:    true,
		SourceFillUUID: e.SourceFillUUID,
		Leverage:       1,
	}
}

func exitKindLabel(k models.ExitKind) string {
	if k == models.TakeProfit {
		return "take_profit"
	}
	return "stop_loss"
}

func countSymbols(bars []models.Bar) int {
	seen := make(map[string]struct{})
	for _, b := range bars {
		seen[b.Symbol] = struct{}{}
	}
	return len(seen)
}

