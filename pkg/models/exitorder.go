package models

import "github.com/backforge/backforge/pkg/money"

// ExitKind discriminates the two exit-order variants. Treated as a tagged
// union via this Kind field and a switch, not an interface hierarchy.
type ExitKind int

const (
	StopLoss ExitKind = iota
	TakeProfit
)

// ExitOrder is a conditional market order attached to a specific source
// fill, created at fill time from the originating order's stop-loss or
// take-profit price. Stop-loss triggers on price adverse to the position
// (price <= trigger for a long, price >= trigger for a short); take-profit
// triggers on price favorable to the position.
type ExitOrder struct {
	Kind               ExitKind
	Symbol             string
	TriggerQuantity    float64
	TriggerPrice       money.Money
	ReferenceFillPrice money.Money
	CreatedAtNs        int64
	SourceFillUUID     string
	IsShortPosition    bool
}

// Triggers reports whether the given market price crosses this exit
// order's trigger, given its kind and side.
func (e ExitOrder) Triggers(price money.Money) bool {
	switch e.Kind {
	case StopLoss:
		if e.IsShortPosition {
			return price.Cmp(e.TriggerPrice) >= 0
		}
		return price.Cmp(e.TriggerPrice) <= 0
	case TakeProfit:
		if e.IsShortPosition {
			return price.Cmp(e.TriggerPrice) <= 0
		}
		return price.Cmp(e.TriggerPrice) >= 0
	default:
		return false
	}
}
