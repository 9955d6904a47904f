package models

import "github.com/backforge/backforge/pkg/money"

// Fill is an executed trade, the atomic unit of the position ledger.
// Immutable once appended to a simulation's fill log. UUID is unique
// within a simulation.
type Fill struct {
	UUID        string
	Symbol      string
	Side        Side
	Quantity    float64
	Price       money.Money
	CreatedAtNs int64
	Leverage    float64
	MarginUsed  money.Money
}
