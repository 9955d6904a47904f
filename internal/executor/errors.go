package executor

import "errors"

var (
	// ErrSourceFillInactive is returned for an exit order whose source
	// fill has already been fully closed by another exit — the normal
	// redundant-exit-cancellation path, not reported to the user as an
	// error by the engine.
	ErrSourceFillInactive = errors.New("executor: source fill no longer active")

	// ErrZeroFillableQuantity is returned when volume-capping and
	// fractional-share flooring leave nothing to fill.
	ErrZeroFillableQuantity = errors.New("executor: fillable quantity is zero")

	// ErrUnknownSymbolPrice is returned when the current bar carries no
	// price for the order's symbol.
	ErrUnknownSymbolPrice = errors.New("executor: unknown symbol price")

	// ErrInvalidQuantity is returned for a non-positive order quantity.
	ErrInvalidQuantity = errors.New("executor: order quantity must be positive")

	// ErrLeverageOutOfRange is returned when the order's leverage falls
	// outside [1, max_leverage].
	ErrLeverageOutOfRange = errors.New("executor: leverage out of range")

	// ErrShortSellingDisabled is returned when the host disallows short
	// selling and the fill would produce a negative position.
	ErrShortSellingDisabled = errors.New("executor: short selling disabled")

	// ErrInsufficientMargin is returned when the available margin cannot
	// cover the fill's margin requirement plus commission.
	ErrInsufficientMargin = errors.New("executor: insufficient margin")

	// ErrInsufficientCash is returned when a pure closing buy cannot be
	// covered by available cash.
	ErrInsufficientCash = errors.New("executor: insufficient cash")
)
