// Package engine drives the per-bar simulation loop: gating bars by
// market hours, draining the scheduled and limit order books, scanning
// the exit-order book, invoking the strategy's on_bar callback, and
// recording the equity curve.
package engine

import "errors"

// The engine's errors fall into six kinds. Configuration and Data and
// Plugin errors are fatal and abort the current backtest; Input, Stale
// exit, and Margin/cash violations are recovered as a logged
// ExecutionResult and the engine continues.
var (
	// ErrConfiguration is fatal: a missing or out-of-range host
	// parameter, caught before any bar is processed.
	ErrConfiguration = errors.New("engine: invalid configuration")

	// ErrPluginFailure is fatal: a plugin callback returned a non-zero
	// result code or raised an error.
	ErrPluginFailure = errors.New("engine: plugin callback failed")

	// ErrMissingBarData is the fatal Data kind: on_bar ran against a
	// declared symbol with no known bar data. Engine.Run does not return
	// it, since it takes its symbols from the bars it is given.
	ErrMissingBarData = errors.New("engine: missing bar data for declared symbol")
)
