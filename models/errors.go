package models

import "errors"

// Business-rule rejections. These are state-dependent, never retried
// automatically, and safe to show to the end user verbatim.
var (
	// ErrMarketNotOpen is returned when a trade or transition targets a
	// market whose status does not allow it.
	ErrMarketNotOpen = errors.New("market not open")

	// ErrMarketDeleted is returned when the market has been soft-deleted.
	ErrMarketDeleted = errors.New("market has been deleted")

	// ErrSideSaturated is returned when the chosen side is already priced
	// inside the configured guard band.
	ErrSideSaturated = errors.New("betting disabled at saturated odds")

	// ErrLossCapExceeded is returned when a trade would push outstanding
	// shares past the money actually collected into the market.
	ErrLossCapExceeded = errors.New("bet would exceed the creator's capped loss")

	// ErrAlreadyResolved is returned on any resolve attempt against a
	// RESOLVED or INVALID market.
	ErrAlreadyResolved = errors.New("market already resolved")

	// ErrInsufficientBalance is returned when the actor cannot afford the
	// stake or seed.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrNotCreator is returned when a creator-only operation is attempted
	// by someone else.
	ErrNotCreator = errors.New("only the market creator may do this")

	ErrInvalidSide    = errors.New("side must be YES or NO")
	ErrInvalidOutcome = errors.New("outcome must be YES, NO or INVALID")
)
