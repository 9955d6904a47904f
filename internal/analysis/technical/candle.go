// Package technical implements the float64-domain indicators used by the
// built-in strategies: moving averages, RSI, MACD, Bollinger Bands, ATR,
// SuperTrend, and VWAP. Every function operates on plain float64 slices
// or the local Candle type — the simulation core's fixed-point Bar is
// converted to Candle at the plugin boundary, keeping indicator math in
// ordinary floating point where the precision loss is immaterial.
package technical

// Candle is one OHLCV sample in the float64 domain used for indicator
// math, converted from the simulation core's money.Money-denominated Bar.
type Candle struct {
	Open, High, Low, Close float64
	Volume                 float64
}
