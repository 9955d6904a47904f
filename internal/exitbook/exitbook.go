// Package exitbook holds the stop-loss and take-profit conditional
// orders attached to open positions, scanning them against each bar's
// close and converting triggered entries into market exit orders.
package exitbook

import (
	"github.com/backforge/backforge/internal/heap"
	"github.com/backforge/backforge/pkg/models"
	"github.com/backforge/backforge/pkg/money"
)

func stopLossLess(a, b models.ExitOrder) bool {
	return a.TriggerPrice.Cmp(b.TriggerPrice) < 0
}

func takeProfitLess(a, b models.ExitOrder) bool {
	return a.TriggerPrice.Cmp(b.TriggerPrice) > 0
}

// Book holds all open stop-loss and take-profit exit orders, regardless
// of symbol, in two heaps keyed by trigger price.
type Book struct {
	stopLosses  *heap.Heap[models.ExitOrder]
	takeProfits *heap.Heap[models.ExitOrder]
}

// New returns an empty Book.
func New() *Book {
	return &Book{
		stopLosses:  heap.New(stopLossLess),
		takeProfits: heap.New(takeProfitLess),
	}
}

// Add inserts a new exit order into the book appropriate to its Kind.
func (b *Book) Add(e models.ExitOrder) {
	switch e.Kind {
	case models.StopLoss:
		b.stopLosses.Push(e)
	case models.TakeProfit:
		b.takeProfits.Push(e)
	}
}

// Scan pops every entry off both heaps, keeping each whose trigger
// condition holds against closePrice for its symbol and discarding it
// into the returned triggered slice, and reinserting every other entry.
// Heap ordering alone can't cheaply express "peek while condition holds
// across multiple symbols," so the book is drained and rebuilt each bar.
func (b *Book) Scan(closePrices map[string]money.Money) []models.ExitOrder {
	var triggered []models.ExitOrder

	triggered = append(triggered, scanHeap(b.stopLosses, closePrices)...)
	triggered = append(triggered, scanHeap(b.takeProfits, closePrices)...)

	return triggered
}

func scanHeap(h *heap.Heap[models.ExitOrder], closePrices map[string]money.Money) []models.ExitOrder {
	n := h.Len()
	var triggered []models.ExitOrder
	var reinsert []models.ExitOrder

	for i := 0; i < n; i++ {
		e, ok := h.Pop()
		if !ok {
			break
		}
		price, known := closePrices[e.Symbol]
		if known && e.Triggers(price) {
			triggered = append(triggered, e)
		} else {
			reinsert = append(reinsert, e)
		}
	}
	for _, e := range reinsert {
		h.Push(e)
	}
	return triggered
}

// ReduceByFillUUID walks both heaps once, subtracting qty from every
// entry whose SourceFillUUID matches uuid, dropping entries reduced to
// zero or below, then rebuilding each heap from the survivors.
func (b *Book) ReduceByFillUUID(uuid string, qty float64) {
	b.stopLosses = reduceHeap(b.stopLosses, stopLossLess, uuid, qty)
	b.takeProfits = reduceHeap(b.takeProfits, takeProfitLess, uuid, qty)
}

func reduceHeap(h *heap.Heap[models.ExitOrder], less heap.Less[models.ExitOrder], uuid string, qty float64) *heap.Heap[models.ExitOrder] {
	items := h.Items()
	survivors := items[:0]
	for _, e := range items {
		if e.SourceFillUUID == uuid {
			e.TriggerQuantity -= qty
			if e.TriggerQuantity <= 0 {
				continue
			}
		}
		survivors = append(survivors, e)
	}
	return heap.New(less, survivors...)
}

// Empty reports whether both heaps are empty.
func (b *Book) Empty() bool {
	return b.stopLosses.Empty() && b.takeProfits.Empty()
}

// Len returns the total number of pending exit orders across both heaps.
func (b *Book) Len() int {
	return b.stopLosses.Len() + b.takeProfits.Len()
}
