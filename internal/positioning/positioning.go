// Package positioning implements the position and fill math: average
// price update rules on a new fill, and FIFO consumption of the opposite
// side's active fills when a fill reduces or flips a position.
package positioning

import (
	"github.com/backforge/backforge/internal/simulation"
	"github.com/backforge/backforge/pkg/models"
	"github.com/backforge/backforge/pkg/money"
)

// ApplyFill updates symbol's Position for a fill of signedQty (positive
// for a buy, negative for a sell) at fillPrice, following the three
// average-price update rules:
//  1. Extends the same-sign position: quantity-weighted mean of old and new.
//  2. Flips sign: average price resets to the fill price.
//  3. Reduces without flipping: average price is unchanged.
func ApplyFill(state *simulation.State, symbol string, signedQty float64, fillPrice money.Money) models.Position {
	old, hadPosition := state.Positions[symbol]
	oldQty := old.Quantity
	newQty := oldQty + signedQty

	var newAvg money.Money
	switch {
	case !hadPosition || oldQty == 0:
		newAvg = fillPrice
	case sameSign(oldQty, newQty) && extendsMagnitude(oldQty, signedQty):
		// Quantity-weighted mean of old and new legs.
		oldAbs := abs(oldQty)
		addAbs := abs(signedQty)
		total := oldAbs + addAbs
		weighted := old.AveragePrice.MulFloat(oldAbs).Add(fillPrice.MulFloat(addAbs))
		if total != 0 {
			newAvg = weighted.MulFloat(1 / total)
		} else {
			newAvg = fillPrice
		}
	case !sameSign(oldQty, newQty) && oldQty != 0 && newQty != 0:
		// Flip: average price resets to the fill price for the residual.
		newAvg = fillPrice
	default:
		// Pure reduction, same sign (or flat-to-flat): average unchanged.
		newAvg = old.AveragePrice
	}

	pos := models.Position{Symbol: symbol, Quantity: newQty, AveragePrice: newAvg}
	if pos.IsFlat() {
		delete(state.Positions, symbol)
		return models.Position{Symbol: symbol}
	}
	state.Positions[symbol] = pos
	return pos
}

func sameSign(a, b float64) bool {
	return (a >= 0) == (b >= 0)
}

func extendsMagnitude(oldQty, signedDelta float64) bool {
	return (oldQty >= 0 && signedDelta >= 0) || (oldQty <= 0 && signedDelta <= 0)
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// ConsumedFill records how much of one previously-open fill was closed
// by a FIFO consumption step, so a caller can shrink any exit order
// still attached to that fill's UUID by the same quantity.
type ConsumedFill struct {
	UUID string
	Qty  float64
}

// FIFOResult is the outcome of consuming the opposite side's active
// fills to close quantity qty.
type FIFOResult struct {
	ClosedQty      float64
	MarginReleased money.Money
	RealizedPnL    money.Money
	ConsumedFills  []ConsumedFill
}

// ConsumeFIFO reduces a long position by a sell fill (or a short by a
// buy fill) at fillPrice, consuming active fills on the opposite side in
// ascending insertion order up to qty. It mutates state's active-fill
// maps, per-fill margin, and margin-in-use in place; the fill log is
// only read.
func ConsumeFIFO(state *simulation.State, symbol string, closingSide models.Side, qty float64, fillPrice money.Money) FIFOResult {
	var result FIFOResult
	if qty <= 0 {
		return result
	}

	// A sell closes buy fills; a buy closes sell fills.
	var activeMap map[string]float64
	var openSide models.Side
	switch closingSide {
	case models.Sell:
		activeMap = state.ActiveBuyFills
		openSide = models.Buy
	case models.Buy:
		activeMap = state.ActiveSellFills
		openSide = models.Sell
	}

	remaining := qty
	for _, f := range state.Fills {
		if remaining <= 0 {
			break
		}
		if f.Symbol != symbol || f.Side != openSide {
			continue
		}
		open, ok := activeMap[f.UUID]
		if !ok || open <= 0 {
			continue
		}

		closeQty := open
		if closeQty > remaining {
			closeQty = remaining
		}

		marginBefore := state.ActiveMarginForFills[f.UUID]
		marginReleased := marginBefore.MulFloat(closeQty / open)
		state.MarginInUse = state.MarginInUse.Sub(marginReleased)
		state.ActiveMarginForFills[f.UUID] = marginBefore.Sub(marginReleased)

		var pnl money.Money
		if openSide == models.Buy {
			pnl = fillPrice.Sub(f.Price).MulFloat(closeQty)
		} else {
			pnl = f.Price.Sub(fillPrice).MulFloat(closeQty)
		}
		result.RealizedPnL = result.RealizedPnL.Add(pnl)
		result.MarginReleased = result.MarginReleased.Add(marginReleased)
		result.ClosedQty += closeQty
		result.ConsumedFills = append(result.ConsumedFills, ConsumedFill{UUID: f.UUID, Qty: closeQty})

		newOpen := open - closeQty
		if newOpen <= 0 {
			delete(activeMap, f.UUID)
			delete(state.ActiveMarginForFills, f.UUID)
		} else {
			activeMap[f.UUID] = newOpen
		}

		remaining -= closeQty
	}

	return result
}
