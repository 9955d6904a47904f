package engine

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/backforge/backforge/internal/manifest"
	"github.com/backforge/backforge/internal/plugin"
	"github.com/backforge/backforge/internal/simulation"
	"github.com/backforge/backforge/pkg/models"
	"github.com/backforge/backforge/pkg/money"
)

// steadyUptrend generates n daily bars, each 0.5% above the last close,
// stamped 09:30 UTC each day.
func steadyUptrend(symbol string, n int, startPrice float64) []models.Bar {
	bars := make([]models.Bar, n)
	base := time.Date(2023, 1, 2, 9, 30, 0, 0, time.UTC)
	price := startPrice
	for i := 0; i < n; i++ {
		price *= 1.005
		ts := base.AddDate(0, 0, i)
		for ts.Weekday() == time.Saturday || ts.Weekday() == time.Sunday {
			ts = ts.AddDate(0, 0, 1)
		}
		bars[i] = models.Bar{
			Symbol:   symbol,
			UnixTsNs: ts.UnixNano(),
			Open:     money.FromFloat(price * 0.999),
			High:     money.FromFloat(price * 1.002),
			Low:      money.FromFloat(price * 0.998),
			Close:    money.FromFloat(price),
			Volume:   100000,
		}
	}
	return bars
}

func steadyDowntrend(symbol string, n int, startPrice float64) []models.Bar {
	bars := make([]models.Bar, n)
	base := time.Date(2023, 1, 2, 9, 30, 0, 0, time.UTC)
	price := startPrice
	for i := 0; i < n; i++ {
		price *= 0.995
		ts := base.AddDate(0, 0, i)
		for ts.Weekday() == time.Saturday || ts.Weekday() == time.Sunday {
			ts = ts.AddDate(0, 0, 1)
		}
		bars[i] = models.Bar{
			Symbol:   symbol,
			UnixTsNs: ts.UnixNano(),
			Open:     money.FromFloat(price * 1.001),
			High:     money.FromFloat(price * 1.002),
			Low:      money.FromFloat(price * 0.998),
			Close:    money.FromFloat(price),
			Volume:   100000,
		}
	}
	return bars
}

// buyAndHoldStrategy buys once, on the first bar, and never sells.
type buyAndHoldStrategy struct {
	bought bool
}

func (s *buyAndHoldStrategy) Name() string                    { return "buy-and-hold" }
func (s *buyAndHoldStrategy) OnInit(_ map[string]string) error { return nil }
func (s *buyAndHoldStrategy) OnStart() error                  { return nil }
func (s *buyAndHoldStrategy) OnEnd() (json.RawMessage, error) { return nil, nil }

func (s *buyAndHoldStrategy) OnBar(bar models.Bar, _ plugin.StateSnapshot) (plugin.ResultCode, []plugin.Instruction, error) {
	if s.bought {
		return plugin.CodeOK, nil, nil
	}
	s.bought = true
	return plugin.CodeOK, []plugin.Instruction{
		{Kind: plugin.InstructionSignal, Signal: models.Signal{Symbol: bar.Symbol, Side: models.Buy}},
	}, nil
}

func testParams() *manifest.HostParams {
	return &manifest.HostParams{
		InitialCapital:        "100000.00",
		MarketHoursOnly:       false,
		AllowFractionalShares: true,
		AllowShortSelling:     true,
		CommissionType:        manifest.CommissionPerShare,
		SlippageModel:         manifest.SlippageNone,
		FillMaxPctOfVolume:    1.0,
		InitialMarginPct:      1.0,
		MaxLeverage:           1.0,
		PositionSizingMethod:  manifest.SizingFixedPercentage,
		PositionSizeValue:     0.1,
		MaxPositionSize:       1000,
		TimezoneName:          "America/New_York",
		Seed:                  7,
	}
}

func TestRunBuysAndGrowsEquityOnAnUptrend(t *testing.T) {
	params := testParams()
	e, err := New(params, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	bars := steadyUptrend("AAPL", 30, 100)
	strategy := &buyAndHoldStrategy{}
	report, err := e.Run(strategy, bars)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(report.Fills) == 0 {
		t.Fatalf("expected at least one fill")
	}
	if len(report.EquityCurve) != len(bars) {
		t.Fatalf("got %d equity snapshots, want %d", len(report.EquityCurve), len(bars))
	}
	first := report.EquityCurve[0]
	last := report.EquityCurve[len(report.EquityCurve)-1]
	if last.Equity.Cmp(first.Equity) <= 0 {
		t.Errorf("expected equity to grow over a steady uptrend: first=%v last=%v", first.Equity, last.Equity)
	}
}

func TestRunRecordsDrawdownOnADowntrend(t *testing.T) {
	params := testParams()
	e, err := New(params, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	bars := steadyDowntrend("MSFT", 30, 200)
	strategy := &buyAndHoldStrategy{}
	report, err := e.Run(strategy, bars)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	last := report.EquityCurve[len(report.EquityCurve)-1]
	if last.MaxDrawdown <= 0 {
		t.Errorf("expected positive max drawdown on a steady downtrend, got %v", last.MaxDrawdown)
	}
}

func TestNewRejectsInvalidConfiguration(t *testing.T) {
	params := testParams()
	params.CommissionType = "not_a_real_type"
	if _, err := New(params, nil); err == nil {
		t.Errorf("expected a configuration error for an invalid commission_type")
	}
}

func TestRunSurfacesPluginFailureAsFatal(t *testing.T) {
	params := testParams()
	e, err := New(params, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	bars := steadyUptrend("AAPL", 3, 100)
	strategy := &failingStrategy{}
	if _, err := e.Run(strategy, bars); err == nil {
		t.Errorf("expected a plugin-failure error")
	}
}

// TestApplyOrderReducesExitOrderOnPartialFIFOConsumption reproduces the
// partial-consumption scenario: a long fill carries a take-profit exit
// order sized to the fill's full quantity, a manual sell FIFO-consumes
// part of that fill, and the exit order's trigger quantity must shrink
// by the consumed amount instead of over-closing (and flipping short)
// when it later triggers.
func TestApplyOrderReducesExitOrderOnPartialFIFOConsumption(t *testing.T) {
	params := testParams()
	e, err := New(params, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	e.state.CurrentBarPrices["AAPL"] = simulation.BarPrices{Close: money.MustParse("100.00"), Volume: 100000}

	takeProfit := money.MustParse("110.00")
	buy := models.Order{
		Symbol:          "AAPL",
		Side:            models.Buy,
		Quantity:        10,
		OrderType:       models.Market,
		Leverage:        1,
		TakeProfitPrice: &takeProfit,
	}
	if err := e.applyOrder(buy); err != nil {
		t.Fatalf("applyOrder(buy): %v", err)
	}
	if got := e.exits.Len(); got != 1 {
		t.Fatalf("expected 1 exit order after the buy, got %d", got)
	}

	sell := models.Order{Symbol: "AAPL", Side: models.Sell, Quantity: 4, OrderType: models.Market, Leverage: 1}
	if err := e.applyOrder(sell); err != nil {
		t.Fatalf("applyOrder(sell): %v", err)
	}

	triggered := e.exits.Scan(map[string]money.Money{"AAPL": money.MustParse("115.00")})
	if len(triggered) != 1 {
		t.Fatalf("expected the take-profit to trigger, got %d triggered", len(triggered))
	}
	if got := triggered[0].TriggerQuantity; got != 6 {
		t.Errorf("got trigger quantity %v, want 6 (10 - 4 consumed by the partial sell)", got)
	}
}

type failingStrategy struct{}

func (s *failingStrategy) Name() string                     { return "failing" }
func (s *failingStrategy) OnInit(_ map[string]string) error { return nil }
func (s *failingStrategy) OnStart() error                   { return nil }
func (s *failingStrategy) OnEnd() (json.RawMessage, error)   { return nil, nil }
func (s *failingStrategy) OnBar(models.Bar, plugin.StateSnapshot) (plugin.ResultCode, []plugin.Instruction, error) {
	return plugin.CodeError, nil, nil
}
