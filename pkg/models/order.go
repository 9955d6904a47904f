package models

import "github.com/backforge/backforge/pkg/money"

// Side is the direction of an order or a signal.
type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Sell {
		return "sell"
	}
	return "buy"
}

// OrderType distinguishes a market order, filled at the scheduled bar's
// close, from a limit order, which only fills when price crosses the
// limit.
type OrderType int

const (
	Market OrderType = iota
	Limit
)

func (t OrderType) String() string {
	if t == Limit {
		return "limit"
	}
	return "market"
}

// Order is a request to open, extend, reduce, or flip a position. A sell
// order with no existing long position opens or extends a short.
type Order struct {
	Symbol         string
	Side           Side
	Quantity       float64
	OrderType      OrderType
	CreatedAtNs    int64
	LimitPrice     *money.Money
	StopLossPrice  *money.Money
	TakeProfitPrice *money.Money
	Leverage       float64 // 0 means leverage 1
	IsExitOrder    bool
	SourceFillUUID string // non-empty when IsExitOrder
}

// Signal is a lighter instruction the executor sizes into an Order using
// host-configured sizing, stop-loss, and take-profit percentages.
type Signal struct {
	Symbol string
	Side   Side
}
