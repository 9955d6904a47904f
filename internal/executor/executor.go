// Package executor implements the order-execution algorithm: given an
// order, the host parameters, and the simulation state, it computes the
// fill, the resulting position, any new exit orders, and the net cash
// movement — or rejects the order without mutating anything. On success
// it writes the new position and the FIFO consumption of active fills
// (active-fill maps, per-fill margin, margin in use) to state itself; the
// engine applies the cash delta, the new margin, and the fill log entry.
package executor

import (
	"github.com/backforge/backforge/internal/idgen"
	"github.com/backforge/backforge/internal/manifest"
	"github.com/backforge/backforge/internal/positioning"
	"github.com/backforge/backforge/internal/simulation"
	"github.com/backforge/backforge/pkg/models"
	"github.com/backforge/backforge/pkg/money"
)

const epsilon = 0.0001

// ExecutionResult is a tagged union: exactly one of Err (failure) or the
// remaining fields (success) is meaningful, discriminated by Err == nil.
// Modeled as a flat struct with a nil-checked error field rather than an
// interface hierarchy, so callers switch on a value instead of dispatching
// through virtual calls.
type ExecutionResult struct {
	Err error

	CashDelta      money.Money
	MarginRequired money.Money
	Leverage       float64
	PartialOrder   *models.Order
	Position       models.Position
	Fill           models.Fill
	ExitOrders     []models.ExitOrder
	ConsumedFills  []positioning.ConsumedFill
}

// Ok reports whether the result represents a successful execution.
func (r ExecutionResult) Ok() bool { return r.Err == nil }

// CommissionFunc computes commission on a fill of qty shares at price,
// under the host's configured commission model. Injected so the
// executor stays decoupled from the exchange package's concrete model.
type CommissionFunc func(rate, qty float64, price money.Money) money.Money

// Execute runs the order-execution algorithm against the given state. It
// never mutates state on an Error result.
func Execute(order models.Order, params *manifest.HostParams, state *simulation.State, gen *idgen.Generator, commission CommissionFunc) ExecutionResult {
	if order.Quantity <= 0 {
		return ExecutionResult{Err: ErrInvalidQuantity}
	}

	// Step 1: stale exit-order detection.
	if order.IsExitOrder {
		active := state.ActiveSellFills
		if order.Side == models.Sell {
			active = state.ActiveBuyFills
		}
		if open, ok := active[order.SourceFillUUID]; !ok || open <= 0 {
			return ExecutionResult{Err: ErrSourceFillInactive}
		}
	}

	bar, known := state.CurrentBarPrices[order.Symbol]
	if !known {
		return ExecutionResult{Err: ErrUnknownSymbolPrice}
	}

	// Step 2: fillable/remaining quantity.
	volumeCap := float64(bar.Volume) * params.FillMaxPctOfVolume
	fillableQty := order.Quantity
	if volumeCap > 0 && fillableQty > volumeCap {
		fillableQty = volumeCap
	}
	if !params.AllowFractionalShares {
		fillableQty = floorShares(fillableQty)
	}
	remainingQty := order.Quantity - fillableQty
	if fillableQty <= 0 {
		return ExecutionResult{Err: ErrZeroFillableQuantity}
	}

	// Step 3: fill price.
	fillPrice := resolveFillPrice(order, bar.Close)

	// Step 4: opening quantity.
	currentQty := state.PositionQuantity(order.Symbol)
	signedFillQty := fillableQty
	if order.Side == models.Sell {
		signedFillQty = -fillableQty
	}
	newQty := currentQty + signedFillQty
	positionOpeningQty := openingQuantity(order.Side, currentQty, newQty, fillableQty)

	// Step 5: commission.
	fee := commission(commissionRate(params), fillableQty, fillPrice)

	// Step 6: margin requirement.
	leverage := order.Leverage
	if leverage <= 0 {
		leverage = 1
	}
	var marginRequired money.Money
	if positionOpeningQty > epsilon {
		openingValue := fillPrice.MulFloat(positionOpeningQty)
		byLeverage := openingValue.MulFloat(1 / leverage)
		byMarginPct := openingValue.MulFloat(params.InitialMarginPct)
		marginRequired = byLeverage
		if byMarginPct.Cmp(marginRequired) > 0 {
			marginRequired = byMarginPct
		}
	}

	// Step 7: validation.
	if leverage < 1 || leverage > params.MaxLeverage {
		return ExecutionResult{Err: ErrLeverageOutOfRange}
	}
	if !params.AllowShortSelling && newQty < 0 {
		return ExecutionResult{Err: ErrShortSellingDisabled}
	}
	if positionOpeningQty > epsilon {
		if marginRequired.Add(fee).Cmp(state.AvailableMargin()) > 0 {
			return ExecutionResult{Err: ErrInsufficientMargin}
		}
	} else if order.Side == models.Buy {
		fillValue := fillPrice.MulFloat(fillableQty)
		if fillValue.Add(fee).Cmp(state.Cash) > 0 {
			return ExecutionResult{Err: ErrInsufficientCash}
		}
	}

	// Step 8: FIFO closing walk.
	closingQty := fillableQty - positionOpeningQty
	closeResult := positioning.ConsumeFIFO(state, order.Symbol, order.Side, closingQty, fillPrice)

	// Step 9: net cash movement.
	cashDelta := closeResult.MarginReleased.Add(closeResult.RealizedPnL).Sub(marginRequired).Sub(fee)

	// Step 10: create the fill.
	fill := models.Fill{
		UUID:        gen.Next(),
		Symbol:      order.Symbol,
		Side:        order.Side,
		Quantity:    fillableQty,
		Price:       fillPrice,
		CreatedAtNs: order.CreatedAtNs,
		Leverage:    leverage,
		MarginUsed:  marginRequired,
	}

	// Step 11: derive exit orders.
	var exitOrders []models.ExitOrder
	isShortPosition := order.Side == models.Sell && newQty <= 0
	if positionOpeningQty > epsilon {
		if order.StopLossPrice != nil {
			exitOrders = append(exitOrders, models.ExitOrder{
				Kind:               models.StopLoss,
				Symbol:             order.Symbol,
				TriggerQuantity:    positionOpeningQty,
				TriggerPrice:       *order.StopLossPrice,
				ReferenceFillPrice: fillPrice,
				CreatedAtNs:        order.CreatedAtNs,
				SourceFillUUID:     fill.UUID,
				IsShortPosition:    isShortPosition,
			})
		}
		if order.TakeProfitPrice != nil {
			exitOrders = append(exitOrders, models.ExitOrder{
				Kind:               models.TakeProfit,
				Symbol:             order.Symbol,
				TriggerQuantity:    positionOpeningQty,
				TriggerPrice:       *order.TakeProfitPrice,
				ReferenceFillPrice: fillPrice,
				CreatedAtNs:        order.CreatedAtNs,
				SourceFillUUID:     fill.UUID,
				IsShortPosition:    isShortPosition,
			})
		}
	}

	// Step 12: post-fill position.
	position := positioning.ApplyFill(state, order.Symbol, signedFillQty, fillPrice)

	// Step 13: partial remainder.
	var partialOrder *models.Order
	if remainingQty > 0 {
		clone := order
		clone.Quantity = remainingQty
		partialOrder = &clone
	}

	return ExecutionResult{
		CashDelta:      cashDelta,
		MarginRequired: marginRequired,
		Leverage:       leverage,
		PartialOrder:   partialOrder,
		Position:       position,
		Fill:           fill,
		ExitOrders:     exitOrders,
		ConsumedFills:  closeResult.ConsumedFills,
	}
}

func resolveFillPrice(order models.Order, close money.Money) money.Money {
	if order.OrderType != models.Limit || order.LimitPrice == nil {
		return close
	}
	limit := *order.LimitPrice
	if order.Side == models.Buy {
		if limit.Cmp(close) < 0 {
			return limit
		}
		return close
	}
	if limit.Cmp(close) > 0 {
		return limit
	}
	return close
}

func openingQuantity(side models.Side, currentQty, newQty, fillableQty float64) float64 {
	switch side {
	case models.Buy:
		if currentQty >= 0 {
			return fillableQty
		}
		if newQty > 0 {
			return newQty
		}
		return 0
	case models.Sell:
		if currentQty <= 0 {
			return fillableQty
		}
		if newQty < 0 {
			return -newQty
		}
		return 0
	default:
		return 0
	}
}

func floorShares(qty float64) float64 {
	return float64(int64(qty))
}

func commissionRate(params *manifest.HostParams) float64 {
	return params.Commission
}
