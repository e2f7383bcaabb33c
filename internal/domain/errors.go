package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the engine's failure taxonomy. Nothing in the core is
// permitted to panic past its own boundary; every public operation returns
// either a value or one of these markers (possibly wrapped with detail).
var (
	// ErrInvalidInput marks a non-numeric or negative user entry, rejected
	// at the store boundary and never stored.
	ErrInvalidInput = errors.New("invalid input")

	// ErrStalePrice marks a price snapshot older than its class TTL.
	ErrStalePrice = errors.New("stale price")

	// ErrFuturePrice marks a clock-skewed, future-dated price snapshot.
	ErrFuturePrice = errors.New("future-dated price")

	// ErrOutOfRangePrice marks a quoted value outside the plausibility band.
	ErrOutOfRangePrice = errors.New("price out of plausible range")

	// ErrStaleOrMissingPrice marks a nisab evaluation attempted without a
	// usable gold or silver snapshot. Callers fall back to the last valid
	// threshold or the static default, never to zero.
	ErrStaleOrMissingPrice = errors.New("stale or missing price snapshot")

	// ErrConversionRateUnavailable marks a failed rate lookup. The affected
	// field is left unconverted and surfaced as a warning, not a failure.
	ErrConversionRateUnavailable = errors.New("conversion rate unavailable")

	// ErrUpstreamUnavailable marks a price/nisab fetch network failure.
	// It always degrades to a fallback payload before reaching a client.
	ErrUpstreamUnavailable = errors.New("upstream price source unavailable")
)

// ValidationError signals a rejected store write. It carries enough context
// for a caller to report the offending field without parsing the message.
type ValidationError struct {
	Category AssetCategory
	Field    string
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid value for %s.%s: %s", e.Category, e.Field, e.Reason)
}

// Unwrap lets callers match ValidationError against ErrInvalidInput.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}
