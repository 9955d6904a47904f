package slippage

import (
	"testing"

	"github.com/backforge/backforge/internal/manifest"
	"github.com/backforge/backforge/pkg/models"
)

func TestScheduleFillTimeNone(t *testing.T) {
	got := ScheduleFillTime(manifest.SlippageNone, 100, models.Order{Quantity: 10}, 1000, 500)
	if got != 1000 {
		t.Errorf("got %d, want 1000", got)
	}
}

func TestScheduleFillTimeTimeBased(t *testing.T) {
	got := ScheduleFillTime(manifest.SlippageTimeBased, 5, models.Order{Quantity: 10}, 1000, 500)
	want := int64(1000 + 5*1e6)
	if got != want {
		t.Errorf("got %d, want %d", got, want)
	}
}

func TestScheduleFillTimeTimeVolumeBased(t *testing.T) {
	got := ScheduleFillTime(manifest.SlippageTimeVolumeBased, 10, models.Order{Quantity: 100}, 1000, 1000)
	want := int64(1000 + int64(10*(100.0/1000.0)*1e9))
	if got != want {
		t.Errorf("got %d, want %d", got, want)
	}
}

func TestScheduleFillTimeTimeVolumeBasedFallsBackWithNoVolume(t *testing.T) {
	got := ScheduleFillTime(manifest.SlippageTimeVolumeBased, 10, models.Order{Quantity: 100}, 1000, 0)
	if got != 1000 {
		t.Errorf("got %d, want fallback to bar timestamp 1000", got)
	}
}
