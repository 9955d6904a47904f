// Package models defines the core domain types shared across the
// simulation: bars, orders, fills, positions, exit orders, and signals.
package models

import "github.com/backforge/backforge/pkg/money"

// Bar is one OHLCV record for a single symbol at a single timestamp.
// Timestamps are nanoseconds since the Unix epoch and are unique within
// a symbol's sequence; multiple symbols may share a timestamp.
type Bar struct {
	Symbol   string
	UnixTsNs int64
	Open     money.Money
	High     money.Money
	Low      money.Money
	Close    money.Money
	Volume   int64
}
