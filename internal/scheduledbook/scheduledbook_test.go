package scheduledbook

import (
	"testing"

	"github.com/backforge/backforge/pkg/models"
)

func TestDrainDueReturnsOnlyDueOrders(t *testing.T) {
	b := New()
	b.Add(models.Order{Symbol: "AAPL"}, 100)
	b.Add(models.Order{Symbol: "MSFT"}, 200)

	due := b.DrainDue(150)
	if len(due) != 1 || due[0].Symbol != "AAPL" {
		t.Fatalf("expected only AAPL due, got %+v", due)
	}
	if b.Len() != 1 {
		t.Errorf("expected MSFT to remain scheduled, got len %d", b.Len())
	}
}

func TestDrainDueIsFIFOAmongEqualTimestamps(t *testing.T) {
	b := New()
	b.Add(models.Order{Symbol: "A"}, 100)
	b.Add(models.Order{Symbol: "B"}, 100)
	b.Add(models.Order{Symbol: "C"}, 100)

	due := b.DrainDue(100)
	if len(due) != 3 {
		t.Fatalf("expected 3 due orders, got %d", len(due))
	}
	want := []string{"A", "B", "C"}
	for i, w := range want {
		if due[i].Symbol != w {
			t.Errorf("index %d: got %q, want %q", i, due[i].Symbol, w)
		}
	}
}

func TestDrainDueEmptyWhenNoneDue(t *testing.T) {
	b := New()
	b.Add(models.Order{Symbol: "AAPL"}, 1000)
	due := b.DrainDue(500)
	if len(due) != 0 {
		t.Errorf("expected no due orders, got %d", len(due))
	}
}
