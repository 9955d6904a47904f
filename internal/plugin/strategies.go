package plugin

import (
	"encoding/json"

	"github.com/backforge/backforge/internal/analysis/technical"
	"github.com/backforge/backforge/pkg/models"
)

// BuiltinStrategies returns the built-in strategies with their default
// parameters.
func BuiltinStrategies() []Strategy {
	return []Strategy{
		NewSMACrossover(20, 50),
		NewRSIMeanReversion(14, 30, 70),
		NewSuperTrendStrategy(7, 3.0),
		NewVWAPBreakout(20),
		NewMACDCrossover(12, 26, 9),
	}
}

func barToCandle(bar models.Bar) technical.Candle {
	return technical.Candle{
		Open:   bar.Open.ToFloat(),
		High:   bar.High.ToFloat(),
		Low:    bar.Low.ToFloat(),
		Close:  bar.Close.ToFloat(),
		Volume: float64(bar.Volume),
	}
}

func positionQty(state StateSnapshot, symbol string) float64 {
	for _, p := range state.Positions {
		if p.Symbol == symbol {
			return p.Quantity
		}
	}
	return 0
}

// ────────────────────────────────────────────────────────────────────
// 1. SMA Crossover — buys when the fast SMA crosses above the slow SMA,
// emits a sell signal while long when it crosses back below.
// ────────────────────────────────────────────────────────────────────

type SMACrossover struct {
	FastPeriod int
	SlowPeriod int
	candles    []technical.Candle
}

func NewSMACrossover(fast, slow int) *SMACrossover {
	return &SMACrossover{FastPeriod: fast, SlowPeriod: slow}
}

func (s *SMACrossover) Name() string                        { return "SMA Crossover" }
func (s *SMACrossover) OnInit(_ map[string]string) error     { return nil }
func (s *SMACrossover) OnStart() error                       { return nil }
func (s *SMACrossover) OnEnd() (json.RawMessage, error)      { return nil, nil }

func (s *SMACrossover) OnBar(bar models.Bar, state StateSnapshot) (ResultCode, []Instruction, error) {
	s.candles = append(s.candles, barToCandle(bar))
	if len(s.candles) < s.SlowPeriod+2 {
		return CodeOK, nil, nil
	}

	closes := closesOf(s.candles)
	fastSMA := technical.SMA(closes, s.FastPeriod)
	slowSMA := technical.SMA(closes, s.SlowPeriod)
	if fastSMA == nil || slowSMA == nil {
		return CodeOK, nil, nil
	}

	idx := len(closes) - 1
	prev := idx - 1
	fastNow, slowNow := fastSMA[idx], slowSMA[idx]
	fastPrev, slowPrev := fastSMA[prev], slowSMA[prev]

	qty := positionQty(state, bar.Symbol)
	var instructions []Instruction

	if fastPrev <= slowPrev && fastNow > slowNow && qty <= 0 {
		instructions = append(instructions, Instruction{Kind: InstructionSignal, Signal: models.Signal{Symbol: bar.Symbol, Side: models.Buy}})
	}
	if fastPrev >= slowPrev && fastNow < slowNow && qty > 0 {
		instructions = append(instructions, Instruction{Kind: InstructionSignal, Signal: models.Signal{Symbol: bar.Symbol, Side: models.Sell}})
	}

	return CodeOK, instructions, nil
}

// ────────────────────────────────────────────────────────────────────
// 2. RSI Mean Reversion — buys when RSI drops below the oversold
// threshold, sells when it rises above the overbought threshold.
// ────────────────────────────────────────────────────────────────────

type RSIMeanReversion struct {
	Period             int
	Oversold           float64
	Overbought         float64
	candles            []technical.Candle
}

func NewRSIMeanReversion(period int, oversold, overbought float64) *RSIMeanReversion {
	return &RSIMeanReversion{Period: period, Oversold: oversold, Overbought: overbought}
}

func (s *RSIMeanReversion) Name() string                    { return "RSI Mean Reversion" }
func (s *RSIMeanReversion) OnInit(_ map[string]string) error { return nil }
func (s *RSIMeanReversion) OnStart() error                  { return nil }
func (s *RSIMeanReversion) OnEnd() (json.RawMessage, error) { return nil, nil }

func (s *RSIMeanReversion) OnBar(bar models.Bar, state StateSnapshot) (ResultCode, []Instruction, error) {
	s.candles = append(s.candles, barToCandle(bar))
	if len(s.candles) < s.Period+1 {
		return CodeOK, nil, nil
	}

	rsi := technical.RSILatest(s.candles, s.Period)
	qty := positionQty(state, bar.Symbol)
	var instructions []Instruction

	if rsi < s.Oversold && qty <= 0 {
		instructions = append(instructions, Instruction{Kind: InstructionSignal, Signal: models.Signal{Symbol: bar.Symbol, Side: models.Buy}})
	}
	if rsi > s.Overbought && qty > 0 {
		instructions = append(instructions, Instruction{Kind: InstructionSignal, Signal: models.Signal{Symbol: bar.Symbol, Side: models.Sell}})
	}

	return CodeOK, instructions, nil
}

// ────────────────────────────────────────────────────────────────────
// 3. SuperTrend — follows the SuperTrend flip direction.
// ────────────────────────────────────────────────────────────────────

type SuperTrendStrategy struct {
	Period     int
	Multiplier float64
	candles    []technical.Candle
	lastTrend  string
}

func NewSuperTrendStrategy(period int, mult float64) *SuperTrendStrategy {
	return &SuperTrendStrategy{Period: period, Multiplier: mult}
}

func (s *SuperTrendStrategy) Name() string                    { return "SuperTrend" }
func (s *SuperTrendStrategy) OnInit(_ map[string]string) error { return nil }
func (s *SuperTrendStrategy) OnStart() error                  { return nil }
func (s *SuperTrendStrategy) OnEnd() (json.RawMessage, error) { return nil, nil }

func (s *SuperTrendStrategy) OnBar(bar models.Bar, state StateSnapshot) (ResultCode, []Instruction, error) {
	s.candles = append(s.candles, barToCandle(bar))
	if len(s.candles) < s.Period+1 {
		return CodeOK, nil, nil
	}

	st := technical.SuperTrendLatest(s.candles, s.Period, s.Multiplier)
	qty := positionQty(state, bar.Symbol)
	var instructions []Instruction

	if st.Trend == "UP" && s.lastTrend != "UP" && qty <= 0 {
		instructions = append(instructions, Instruction{Kind: InstructionSignal, Signal: models.Signal{Symbol: bar.Symbol, Side: models.Buy}})
	}
	if st.Trend == "DOWN" && s.lastTrend != "DOWN" && qty > 0 {
		instructions = append(instructions, Instruction{Kind: InstructionSignal, Signal: models.Signal{Symbol: bar.Symbol, Side: models.Sell}})
	}
	s.lastTrend = st.Trend

	return CodeOK, instructions, nil
}

// ────────────────────────────────────────────────────────────────────
// 4. VWAP Breakout — buys when price breaks above VWAP, sells on a
// break back below.
// ────────────────────────────────────────────────────────────────────

type VWAPBreakout struct {
	Lookback int
	candles  []technical.Candle
}

func NewVWAPBreakout(lookback int) *VWAPBreakout {
	return &VWAPBreakout{Lookback: lookback}
}

func (s *VWAPBreakout) Name() string                    { return "VWAP Breakout" }
func (s *VWAPBreakout) OnInit(_ map[string]string) error { return nil }
func (s *VWAPBreakout) OnStart() error                  { return nil }
func (s *VWAPBreakout) OnEnd() (json.RawMessage, error) { return nil, nil }

func (s *VWAPBreakout) OnBar(bar models.Bar, state StateSnapshot) (ResultCode, []Instruction, error) {
	s.candles = append(s.candles, barToCandle(bar))
	if len(s.candles) < s.Lookback {
		return CodeOK, nil, nil
	}
	window := s.candles
	if len(window) > s.Lookback {
		window = window[len(window)-s.Lookback:]
	}

	vwap := technical.VWAPLatest(window)
	close := bar.Close.ToFloat()
	qty := positionQty(state, bar.Symbol)
	var instructions []Instruction

	if close > vwap && qty <= 0 {
		instructions = append(instructions, Instruction{Kind: InstructionSignal, Signal: models.Signal{Symbol: bar.Symbol, Side: models.Buy}})
	}
	if close < vwap && qty > 0 {
		instructions = append(instructions, Instruction{Kind: InstructionSignal, Signal: models.Signal{Symbol: bar.Symbol, Side: models.Sell}})
	}

	return CodeOK, instructions, nil
}

// ────────────────────────────────────────────────────────────────────
// 5. MACD Crossover — buys on a bullish histogram flip, sells on
// bearish.
// ────────────────────────────────────────────────────────────────────

type MACDCrossover struct {
	Fast, Slow, Signal int
	candles            []technical.Candle
}

func NewMACDCrossover(fast, slow, signal int) *MACDCrossover {
	return &MACDCrossover{Fast: fast, Slow: slow, Signal: signal}
}

func (s *MACDCrossover) Name() string                    { return "MACD Crossover" }
func (s *MACDCrossover) OnInit(_ map[string]string) error { return nil }
func (s *MACDCrossover) OnStart() error                  { return nil }
func (s *MACDCrossover) OnEnd() (json.RawMessage, error) { return nil, nil }

func (s *MACDCrossover) OnBar(bar models.Bar, state StateSnapshot) (ResultCode, []Instruction, error) {
	s.candles = append(s.candles, barToCandle(bar))
	if len(s.candles) < s.Slow+s.Signal+2 {
		return CodeOK, nil, nil
	}

	points := technical.MACD(s.candles, s.Fast, s.Slow, s.Signal)
	if len(points) < 2 {
		return CodeOK, nil, nil
	}
	now := points[len(points)-1]
	prev := points[len(points)-2]

	qty := positionQty(state, bar.Symbol)
	var instructions []Instruction

	if prev.Histogram <= 0 && now.Histogram > 0 && qty <= 0 {
		instructions = append(instructions, Instruction{Kind: InstructionSignal, Signal: models.Signal{Symbol: bar.Symbol, Side: models.Buy}})
	}
	if prev.Histogram >= 0 && now.Histogram < 0 && qty > 0 {
		instructions = append(instructions, Instruction{Kind: InstructionSignal, Signal: models.Signal{Symbol: bar.Symbol, Side: models.Sell}})
	}

	return CodeOK, instructions, nil
}

func closesOf(candles []technical.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}
