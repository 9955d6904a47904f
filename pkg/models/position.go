package models

import "github.com/backforge/backforge/pkg/money"

// PositionEpsilon is the minimum absolute quantity considered a held
// position; anything smaller is treated as flat and removed from the
// position map.
const PositionEpsilon = 0.0001

// Position tracks a symbol's net signed quantity (negative is short) and
// its volume-weighted average entry price.
type Position struct {
	Symbol      string
	Quantity    float64
	AveragePrice money.Money
}

// IsFlat reports whether the position's quantity is within PositionEpsilon
// of zero, meaning it should not appear in the live positions map.
func (p Position) IsFlat() bool {
	q := p.Quantity
	if q < 0 {
		q = -q
	}
	return q < PositionEpsilon
}

// IsShort reports whether the position is net short.
func (p Position) IsShort() bool {
	return p.Quantity < 0
}
