package positioning

import (
	"testing"

	"github.com/backforge/backforge/internal/manifest"
	"github.com/backforge/backforge/internal/simulation"
	"github.com/backforge/backforge/pkg/models"
	"github.com/backforge/backforge/pkg/money"
)

func TestApplyFillOpensNewPosition(t *testing.T) {
	s := simulation.New(money.MustParse("10000.00"))
	pos := ApplyFill(s, "AAPL", 10, money.MustParse("100.00"))
	if pos.Quantity != 10 {
		t.Errorf("got quantity %v", pos.Quantity)
	}
	if pos.AveragePrice != money.MustParse("100.00") {
		t.Errorf("got avg price %v", pos.AveragePrice)
	}
}

func TestApplyFillExtendsWeightsAveragePrice(t *testing.T) {
	s := simulation.New(money.MustParse("10000.00"))
	ApplyFill(s, "AAPL", 10, money.MustParse("100.00"))
	pos := ApplyFill(s, "AAPL", 10, money.MustParse("110.00"))
	if pos.Quantity != 20 {
		t.Errorf("got quantity %v", pos.Quantity)
	}
	want := money.MustParse("105.00")
	if pos.AveragePrice != want {
		t.Errorf("got avg price %v, want %v", pos.AveragePrice, want)
	}
}

func TestApplyFillReductionKeepsAveragePrice(t *testing.T) {
	s := simulation.New(money.MustParse("10000.00"))
	ApplyFill(s, "AAPL", 10, money.MustParse("100.00"))
	pos := ApplyFill(s, "AAPL", -4, money.MustParse("120.00"))
	if pos.Quantity != 6 {
		t.Errorf("got quantity %v", pos.Quantity)
	}
	if pos.AveragePrice != money.MustParse("100.00") {
		t.Errorf("expected unchanged average price, got %v", pos.AveragePrice)
	}
}

func TestApplyFillFlipResetsAveragePrice(t *testing.T) {
	s := simulation.New(money.MustParse("10000.00"))
	ApplyFill(s, "AAPL", 10, money.MustParse("100.00"))
	pos := ApplyFill(s, "AAPL", -15, money.MustParse("90.00"))
	if pos.Quantity != -5 {
		t.Errorf("got quantity %v", pos.Quantity)
	}
	if pos.AveragePrice != money.MustParse("90.00") {
		t.Errorf("expected flip to reset avg price to fill price, got %v", pos.AveragePrice)
	}
}

func TestApplyFillFlatRemovesFromMap(t *testing.T) {
	s := simulation.New(money.MustParse("10000.00"))
	ApplyFill(s, "AAPL", 10, money.MustParse("100.00"))
	ApplyFill(s, "AAPL", -10, money.MustParse("100.00"))
	if _, ok := s.Positions["AAPL"]; ok {
		t.Errorf("expected flat position removed from map")
	}
}

func TestConsumeFIFOReleasesMarginAndRealizesPnL(t *testing.T) {
	s := simulation.New(money.MustParse("10000.00"))
	f := models.Fill{UUID: "f1", Symbol: "AAPL", Side: models.Buy, Quantity: 10, Price: money.MustParse("100.00"), MarginUsed: money.MustParse("200.00")}
	s.AppendFill(f)
	s.MarginInUse = money.MustParse("200.00")

	result := ConsumeFIFO(s, "AAPL", models.Sell, 10, money.MustParse("110.00"))
	if result.ClosedQty != 10 {
		t.Errorf("got closed qty %v", result.ClosedQty)
	}
	want := money.MustParse("100.00") // (110-100)*10
	if result.RealizedPnL != want {
		t.Errorf("got realized PnL %v, want %v", result.RealizedPnL, want)
	}
	if result.MarginReleased != money.MustParse("200.00") {
		t.Errorf("got margin released %v", result.MarginReleased)
	}
	if s.MarginInUse != money.Zero {
		t.Errorf("expected margin in use zeroed, got %v", s.MarginInUse)
	}
	if _, ok := s.ActiveBuyFills["f1"]; ok {
		t.Errorf("expected exhausted fill removed from active map")
	}
}

func TestConsumeFIFOPartialConsumption(t *testing.T) {
	s := simulation.New(money.MustParse("10000.00"))
	f := models.Fill{UUID: "f1", Symbol: "AAPL", Side: models.Buy, Quantity: 10, Price: money.MustParse("100.00"), MarginUsed: money.MustParse("200.00")}
	s.AppendFill(f)
	s.MarginInUse = money.MustParse("200.00")

	result := ConsumeFIFO(s, "AAPL", models.Sell, 4, money.MustParse("110.00"))
	if result.ClosedQty != 4 {
		t.Errorf("got closed qty %v", result.ClosedQty)
	}
	if s.ActiveBuyFills["f1"] != 6 {
		t.Errorf("expected 6 remaining open, got %v", s.ActiveBuyFills["f1"])
	}
	if len(result.ConsumedFills) != 1 || result.ConsumedFills[0].UUID != "f1" || result.ConsumedFills[0].Qty != 4 {
		t.Errorf("got consumed fills %+v, want [{f1 4}]", result.ConsumedFills)
	}
}

func TestSizeSignalFixedPercentage(t *testing.T) {
	got := SizeSignal(manifest.SizingFixedPercentage, 0.1, money.MustParse("100000.00"), money.MustParse("100.00"), 1, 0)
	want := 100.0 // 100000*0.1/100
	if got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSizeSignalCappedByMaxPositionSize(t *testing.T) {
	got := SizeSignal(manifest.SizingFixedPercentage, 0.5, money.MustParse("100000.00"), money.MustParse("100.00"), 1, 100)
	if got != 100 {
		t.Errorf("got %v, want cap of 100", got)
	}
}

func TestSizeSignalEqualWeight(t *testing.T) {
	got := SizeSignal(manifest.SizingEqualWeight, 0, money.MustParse("100000.00"), money.MustParse("100.00"), 4, 0)
	want := 250.0 // (100000/4)/100
	if got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}
