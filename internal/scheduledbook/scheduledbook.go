// Package scheduledbook holds orders awaiting their slippage-derived
// fill timestamp in a single global min-heap, draining every order whose
// scheduled time has arrived at the start of each bar.
package scheduledbook

import (
	"github.com/backforge/backforge/internal/heap"
	"github.com/backforge/backforge/pkg/models"
)

// Entry pairs an order with the nanosecond timestamp it is scheduled to
// fill at, plus a monotonic sequence number so orders sharing a
// timestamp drain in FIFO insertion order.
type Entry struct {
	Order           models.Order
	ScheduledFillAtNs int64
	seq             uint64
}

func entryLess(a, b Entry) bool {
	if a.ScheduledFillAtNs != b.ScheduledFillAtNs {
		return a.ScheduledFillAtNs < b.ScheduledFillAtNs
	}
	return a.seq < b.seq
}

// Book is the global scheduled-order heap.
type Book struct {
	h       *heap.Heap[Entry]
	nextSeq uint64
}

// New returns an empty Book.
func New() *Book {
	return &Book{h: heap.New(entryLess)}
}

// Add schedules order to fill at scheduledFillAtNs.
func (b *Book) Add(order models.Order, scheduledFillAtNs int64) {
	b.h.Push(Entry{Order: order, ScheduledFillAtNs: scheduledFillAtNs, seq: b.nextSeq})
	b.nextSeq++
}

// DrainDue pops and returns every order scheduled at or before
// nowNs, in ascending (timestamp, insertion-order) sequence.
func (b *Book) DrainDue(nowNs int64) []models.Order {
	var due []models.Order
	for {
		top, ok := b.h.Peek()
		if !ok || top.ScheduledFillAtNs > nowNs {
			break
		}
		e, _ := b.h.Pop()
		due = append(due, e.Order)
	}
	return due
}

// Len returns the number of orders still awaiting their scheduled fill.
func (b *Book) Len() int {
	return b.h.Len()
}
