// Package simulation holds the mutable state of one backtest run: cash,
// margin in use, open positions, the append-only fill log, the active-fill
// maps used for FIFO matching, and the equity curve.
package simulation

import (
	"github.com/backforge/backforge/pkg/models"
	"github.com/backforge/backforge/pkg/money"
)

// BarPrices is the most recent bar's OHLC for one symbol.
type BarPrices struct {
	Open, High, Low, Close money.Money
	Volume                 int64
}

// State is the full ledger of one backtest run. Fills are append-only;
// ActiveBuyFills and ActiveSellFills track remaining open quantity per
// fill uuid for O(1) availability checks during FIFO matching. NewFills
// and NewExitOrders are per-bar deltas, exposed to the plugin and cleared
// at the end of every processed bar.
type State struct {
	Cash        money.Money
	MarginInUse money.Money

	Positions map[string]models.Position

	Fills          []models.Fill
	ActiveBuyFills map[string]float64 // fill uuid -> remaining open qty
	ActiveSellFills map[string]float64

	// ActiveMarginForFills is the margin reservation attributed to each
	// still-open fill uuid, released proportionally as that fill's open
	// quantity is FIFO-consumed.
	ActiveMarginForFills map[string]money.Money

	CurrentBarPrices map[string]BarPrices

	NewFills       []models.Fill
	NewExitOrders  []models.ExitOrder

	EquityCurve []models.EquitySnapshot

	InitialCapital money.Money
	PeakEquity     money.Money
	MaxDrawdown    float64
}

// New returns a freshly initialized State with the given starting cash.
func New(initialCapital money.Money) *State {
	return &State{
		Cash:                 initialCapital,
		Positions:            make(map[string]models.Position),
		ActiveBuyFills:       make(map[string]float64),
		ActiveSellFills:      make(map[string]float64),
		ActiveMarginForFills: make(map[string]money.Money),
		CurrentBarPrices:     make(map[string]BarPrices),
		InitialCapital:       initialCapital,
		PeakEquity:           initialCapital,
	}
}

// ClearBarDeltas empties the per-bar new-fills and new-exit-orders slices.
// The engine calls it at the end of every processed bar, after the
// equity snapshot is recorded.
func (s *State) ClearBarDeltas() {
	s.NewFills = s.NewFills[:0]
	s.NewExitOrders = s.NewExitOrders[:0]
}

// PositionQuantity returns a symbol's signed quantity, or 0 if the symbol
// has no open position.
func (s *State) PositionQuantity(symbol string) float64 {
	if p, ok := s.Positions[symbol]; ok {
		return p.Quantity
	}
	return 0
}

// AppendFill records a new fill in both the append-only log and the
// per-bar delta slice, and seeds its active-fill tracking entry.
func (s *State) AppendFill(f models.Fill) {
	s.Fills = append(s.Fills, f)
	s.NewFills = append(s.NewFills, f)
	switch f.Side {
	case models.Buy:
		s.ActiveBuyFills[f.UUID] = f.Quantity
	case models.Sell:
		s.ActiveSellFills[f.UUID] = f.Quantity
	}
	s.ActiveMarginForFills[f.UUID] = f.MarginUsed
}

// Equity computes cash + margin_in_use + sum over positions of
// (current_close - avg_price) * quantity, using CurrentBarPrices for the
// close of each held symbol.
func (s *State) Equity() money.Money {
	equity := s.Cash.Add(s.MarginInUse)
	for symbol, pos := range s.Positions {
		if pos.IsFlat() {
			continue
		}
		bp, ok := s.CurrentBarPrices[symbol]
		if !ok {
			continue
		}
		diff := bp.Close.Sub(pos.AveragePrice)
		equity = equity.Add(diff.MulFloat(pos.Quantity))
	}
	return equity
}

// AvailableMargin returns equity minus margin currently in use.
func (s *State) AvailableMargin() money.Money {
	return s.Equity().Sub(s.MarginInUse)
}

// RecordEquitySnapshot computes equity, return, and drawdown for the
// given bar timestamp, updates PeakEquity/MaxDrawdown, and appends the
// snapshot to the equity curve.
func (s *State) RecordEquitySnapshot(timestampNs int64) models.EquitySnapshot {
	equity := s.Equity()
	if equity.Cmp(s.PeakEquity) > 0 {
		s.PeakEquity = equity
	}

	var drawdown float64
	const epsilon = 1e-9
	peakFloat := s.PeakEquity.ToFloat()
	if peakFloat > epsilon {
		drawdown = (peakFloat - equity.ToFloat()) / peakFloat
	}
	if drawdown > s.MaxDrawdown {
		s.MaxDrawdown = drawdown
	}

	var ret float64
	if initFloat := s.InitialCapital.ToFloat(); initFloat != 0 {
		ret = (equity.ToFloat() - initFloat) / initFloat
	}

	snap := models.EquitySnapshot{
		TimestampNs: timestampNs,
		Equity:      equity,
		Return:      ret,
		MaxDrawdown: s.MaxDrawdown,
	}
	s.EquityCurve = append(s.EquityCurve, snap)
	return snap
}
