// Package limitbook holds resting limit orders per symbol, a max-heap of
// buy limits and a min-heap of sell limits, and converts them to
// executable market orders once the bar's close crosses their price.
package limitbook

import (
	"github.com/backforge/backforge/internal/heap"
	"github.com/backforge/backforge/pkg/models"
	"github.com/backforge/backforge/pkg/money"
)

func buyLimitGreater(a, b models.Order) bool {
	return a.LimitPrice.Cmp(*b.LimitPrice) > 0
}

func sellLimitLess(a, b models.Order) bool {
	return a.LimitPrice.Cmp(*b.LimitPrice) < 0
}

// Book holds resting limit orders, keyed by symbol, in a buy max-heap
// (highest bid on top) and a sell min-heap (lowest ask on top).
type Book struct {
	buys  map[string]*heap.Heap[models.Order]
	sells map[string]*heap.Heap[models.Order]
}

// New returns an empty Book.
func New() *Book {
	return &Book{
		buys:  make(map[string]*heap.Heap[models.Order]),
		sells: make(map[string]*heap.Heap[models.Order]),
	}
}

// Add inserts a resting limit order into the heap for its symbol and
// side. The order must carry a non-nil LimitPrice.
func (b *Book) Add(o models.Order) {
	if o.LimitPrice == nil {
		return
	}
	switch o.Side {
	case models.Buy:
		h, ok := b.buys[o.Symbol]
		if !ok {
			h = heap.New(buyLimitGreater)
			b.buys[o.Symbol] = h
		}
		h.Push(o)
	case models.Sell:
		h, ok := b.sells[o.Symbol]
		if !ok {
			h = heap.New(sellLimitLess)
			b.sells[o.Symbol] = h
		}
		h.Push(o)
	}
}

// ScanSymbol pops every resting order for symbol whose limit price has
// crossed closePrice, stopping at the first one that hasn't — a buy
// limit L crosses when L >= close; a sell limit crosses when L <= close.
func (b *Book) ScanSymbol(symbol string, closePrice money.Money) []models.Order {
	var executable []models.Order

	if h, ok := b.buys[symbol]; ok {
		for {
			top, ok := h.Peek()
			if !ok || top.LimitPrice.Cmp(closePrice) < 0 {
				break
			}
			o, _ := h.Pop()
			executable = append(executable, o)
		}
	}

	if h, ok := b.sells[symbol]; ok {
		for {
			top, ok := h.Peek()
			if !ok || top.LimitPrice.Cmp(closePrice) > 0 {
				break
			}
			o, _ := h.Pop()
			executable = append(executable, o)
		}
	}

	return executable
}

// CancelSymbol clears both the buy and sell heaps for symbol.
func (b *Book) CancelSymbol(symbol string) {
	delete(b.buys, symbol)
	delete(b.sells, symbol)
}

// Len returns the total number of resting limit orders across every
// symbol and side.
func (b *Book) Len() int {
	n := 0
	for _, h := range b.buys {
		n += h.Len()
	}
	for _, h := range b.sells {
		n += h.Len()
	}
	return n
}
