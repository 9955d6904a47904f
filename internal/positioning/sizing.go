package positioning

import (
	"github.com/backforge/backforge/internal/manifest"
	"github.com/backforge/backforge/pkg/money"
)

// SizeSignal computes the order quantity for a Signal under the host's
// configured sizing policy, capped by maxPositionSize when it is
// positive (a non-positive max means "no cap").
func SizeSignal(method manifest.PositionSizingMethod, sizeValue float64, equity money.Money, price money.Money, symbolCount int, maxPositionSize float64) float64 {
	if price.IsZero() {
		return 0
	}

	var qty float64
	switch method {
	case manifest.SizingFixedPercentage:
		qty = equity.ToFloat() * sizeValue / price.ToFloat()
	case manifest.SizingFixedDollar:
		qty = sizeValue / price.ToFloat()
	case manifest.SizingEqualWeight:
		if symbolCount <= 0 {
			symbolCount = 1
		}
		qty = (equity.ToFloat() / float64(symbolCount)) / price.ToFloat()
	default:
		qty = 0
	}

	if maxPositionSize > 0 && qty > maxPositionSize {
		qty = maxPositionSize
	}
	if qty < 0 {
		qty = 0
	}
	return qty
}
