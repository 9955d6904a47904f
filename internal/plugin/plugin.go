// Package plugin defines the strategy capability boundary: the
// instructions a strategy emits, the state it is allowed to observe, and
// the lifecycle the engine drives it through.
package plugin

import (
	"encoding/json"

	"github.com/backforge/backforge/pkg/models"
	"github.com/backforge/backforge/pkg/money"
)

// InstructionKind discriminates the two instruction variants. Instruction
// is a flat struct switched on Kind rather than an interface hierarchy,
// so the engine dispatches with a single switch instead of a virtual call.
type InstructionKind int

const (
	InstructionSignal InstructionKind = iota
	InstructionOrder
)

// Instruction is either a Signal (sized by the engine's position-sizing
// policy) or a fully-specified Order, discriminated by Kind.
type Instruction struct {
	Kind   InstructionKind
	Signal models.Signal
	Order  models.Order
}

// ResultCode is the outcome of one on_bar callback invocation.
type ResultCode int

const (
	CodeOK ResultCode = iota
	CodeError
)

// StateSnapshot is the read-only view of simulation state exposed to a
// strategy's on_bar callback.
type StateSnapshot struct {
	Cash          money.Money
	Positions     []models.Position
	NewFills      []models.Fill
	NewExitOrders []models.ExitOrder
	EquityCurve   []models.EquitySnapshot
}

// Strategy is the capability a plugin implements. OnInit receives
// free-form host-supplied options; OnStart runs once before the first
// bar; OnBar runs once per bar and returns a result code plus zero or
// more instructions; OnEnd returns a free-form JSON report.
type Strategy interface {
	Name() string
	OnInit(options map[string]string) error
	OnStart() error
	OnBar(bar models.Bar, state StateSnapshot) (ResultCode, []Instruction, error)
	OnEnd() (json.RawMessage, error)
}
