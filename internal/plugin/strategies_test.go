package plugin

import (
	"testing"

	"github.com/backforge/backforge/pkg/models"
	"github.com/backforge/backforge/pkg/money"
)

func bar(symbol string, tsNs int64, close float64) models.Bar {
	p := money.FromFloat(close)
	return models.Bar{Symbol: symbol, UnixTsNs: tsNs, Open: p, High: p, Low: p, Close: p, Volume: 1000}
}

func TestBuiltinStrategiesReturnsFive(t *testing.T) {
	strategies := BuiltinStrategies()
	if len(strategies) != 5 {
		t.Fatalf("got %d built-in strategies, want 5", len(strategies))
	}
	for _, s := range strategies {
		if s.Name() == "" {
			t.Errorf("expected non-empty strategy name")
		}
	}
}

func TestSMACrossoverNoSignalWithInsufficientHistory(t *testing.T) {
	s := NewSMACrossover(2, 4)
	code, instructions, err := s.OnBar(bar("AAPL", 1, 100), StateSnapshot{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != CodeOK {
		t.Errorf("expected CodeOK, got %v", code)
	}
	if len(instructions) != 0 {
		t.Errorf("expected no instructions before enough history, got %d", len(instructions))
	}
}

func TestRSIMeanReversionBuysWhenOversold(t *testing.T) {
	s := NewRSIMeanReversion(14, 30, 70)
	var code ResultCode
	var instructions []Instruction
	var err error
	// A strictly declining series drives RSI toward 0 (oversold).
	price := 100.0
	for i := 0; i < 20; i++ {
		code, instructions, err = s.OnBar(bar("AAPL", int64(i), price), StateSnapshot{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		price -= 1
	}
	if code != CodeOK {
		t.Errorf("expected CodeOK, got %v", code)
	}
	found := false
	for _, ins := range instructions {
		if ins.Kind == InstructionSignal && ins.Signal.Side == models.Buy {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a buy signal after a strictly declining series drove RSI oversold")
	}
}

func TestVWAPBreakoutBuysAboveVWAP(t *testing.T) {
	s := NewVWAPBreakout(5)
	for i := 0; i < 4; i++ {
		s.OnBar(bar("AAPL", int64(i), 100), StateSnapshot{})
	}
	_, instructions, err := s.OnBar(bar("AAPL", 5, 150), StateSnapshot{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, ins := range instructions {
		if ins.Signal.Side == models.Buy {
			found = true
		}
	}
	if !found {
		t.Errorf("expected buy signal on breakout above VWAP")
	}
}
