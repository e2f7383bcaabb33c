package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// StateRepository defines the interface for calculator-state persistence.
// Implementations own a single keyed blob per calculator.
type StateRepository interface {
	// Load retrieves the persisted state, migrating older schema versions.
	// A missing blob yields a freshly initialized state, not an error.
	Load(ctx context.Context) (*CalculatorState, error)

	// Save persists the state, replacing any previous blob.
	Save(ctx context.Context, state *CalculatorState) error
}

// RateProvider supplies exchange rates for currency conversion. One lookup
// per currency pair per operation; callers must not re-derive rates
// per field.
type RateProvider interface {
	// Rate returns the multiplier converting one unit of from into to.
	Rate(ctx context.Context, from, to string) (decimal.Decimal, error)
}

// MetalPriceProvider supplies gold/silver spot prices per gram.
type MetalPriceProvider interface {
	// MetalPrices returns the current pair in the requested currency.
	// refresh forces a bypass of any provider-side cache.
	MetalPrices(ctx context.Context, currency string, refresh bool) (*MetalPrices, error)
}

// QuoteProvider supplies market quotes for stock and crypto symbols.
type QuoteProvider interface {
	Quote(ctx context.Context, symbol, currency string) (*PriceSnapshot, error)
}
