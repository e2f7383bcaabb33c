package pricecache

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mrabdussalam/zakat-calculator-sub003/internal/domain"
)

// Plausibility band for USD-denominated metal prices, per gram. Prices
// outside these bounds are almost certainly cached garbage from an upstream
// feed, not market moves.
var (
	goldMinUSD   = decimal.NewFromInt(50)
	goldMaxUSD   = decimal.NewFromInt(120)
	silverMinUSD = decimal.NewFromFloat(0.5)
	silverMaxUSD = decimal.NewFromInt(3)
)

// expectedUSDRates approximates USD-to-X rates for widening the strict-mode
// plausibility band to non-USD quotes. The band is scaled by the expected
// rate and then relaxed by +/-50%; precision does not matter here, only
// order of magnitude.
var expectedUSDRates = map[string]decimal.Decimal{
	"USD": decimal.NewFromInt(1),
	"EUR": decimal.NewFromFloat(0.92),
	"GBP": decimal.NewFromFloat(0.79),
	"SAR": decimal.NewFromFloat(3.75),
	"AED": decimal.NewFromFloat(3.67),
	"INR": decimal.NewFromFloat(83),
	"PKR": decimal.NewFromFloat(278),
	"IDR": decimal.NewFromFloat(15600),
	"MYR": decimal.NewFromFloat(4.7),
	"TRY": decimal.NewFromFloat(32),
	"EGP": decimal.NewFromFloat(48),
	"CAD": decimal.NewFromFloat(1.36),
	"AUD": decimal.NewFromFloat(1.52),
}

var bandMargin = decimal.NewFromFloat(0.5)

// Options tunes a single validation call.
type Options struct {
	// MaxAge is the freshness TTL. Zero means TTLMetals.
	MaxAge time.Duration

	// AllowFutureDates accepts timestamps ahead of the local clock.
	AllowFutureDates bool

	// Strict additionally rejects metal prices outside the plausibility
	// band for their currency.
	Strict bool
}

// Result is the advisory outcome of a validation. The validator never
// returns an error: rejection is a decision, not a failure.
type Result struct {
	IsValid bool
	Reason  string
}

func valid() Result {
	return Result{IsValid: true}
}

func invalid(format string, args ...any) Result {
	return Result{IsValid: false, Reason: fmt.Sprintf(format, args...)}
}

// Validator screens externally sourced price data before it is accepted
// into the store. External feeds occasionally return zero, null,
// clock-skewed, or plainly wrong values; accepting them would silently
// corrupt the nisab comparison and the zakat amount.
type Validator struct {
	now func() time.Time
}

// NewValidator returns a validator using the system clock.
func NewValidator() *Validator {
	return &Validator{now: time.Now}
}

// NewValidatorAt returns a validator with an injected clock, for tests.
func NewValidatorAt(now func() time.Time) *Validator {
	return &Validator{now: now}
}

// ValidateSnapshot screens a single-value quote (stock, crypto, or one
// metal side).
func (v *Validator) ValidateSnapshot(s *domain.PriceSnapshot, opts Options) Result {
	if s == nil {
		return invalid("missing price snapshot")
	}
	if r := v.checkTimestamp(s.Timestamp, opts); !r.IsValid {
		return r
	}
	if r := checkQuote("price", s.Price); !r.IsValid {
		return r
	}
	return valid()
}

// ValidateMetals screens a gold/silver pair. Strict mode additionally
// applies the per-gram plausibility band in the quote currency.
func (v *Validator) ValidateMetals(m *domain.MetalPrices, opts Options) Result {
	if m == nil {
		return invalid("missing metal prices")
	}
	if r := v.checkTimestamp(m.Timestamp, opts); !r.IsValid {
		return r
	}
	if r := checkQuote("gold", m.GoldPerGram); !r.IsValid {
		return r
	}
	if r := checkQuote("silver", m.SilverPerGram); !r.IsValid {
		return r
	}
	if opts.Strict {
		if r := checkBand("gold", m.GoldPerGram, goldMinUSD, goldMaxUSD, m.Currency); !r.IsValid {
			return r
		}
		if r := checkBand("silver", m.SilverPerGram, silverMinUSD, silverMaxUSD, m.Currency); !r.IsValid {
			return r
		}
	}
	return valid()
}

func (v *Validator) checkTimestamp(ts time.Time, opts Options) Result {
	if ts.IsZero() {
		return invalid("missing timestamp")
	}
	now := v.now()
	if !opts.AllowFutureDates && ts.After(now) {
		return invalid("timestamp is in the future: %s", ts.Format(time.RFC3339))
	}
	maxAge := opts.MaxAge
	if maxAge == 0 {
		maxAge = TTLMetals
	}
	if age := now.Sub(ts); age > maxAge {
		return invalid("snapshot is stale: age %s exceeds %s", age.Round(time.Second), maxAge)
	}
	return valid()
}

func checkQuote(label string, value decimal.Decimal) Result {
	if value.LessThanOrEqual(decimal.Zero) {
		return invalid("%s price must be positive, got %s", label, value)
	}
	return valid()
}

// checkBand rejects quotes outside the USD plausibility band. Non-USD
// quotes scale the band by the expected exchange rate and widen it by the
// margin; unknown currencies skip the check rather than reject blindly.
func checkBand(label string, value, minUSD, maxUSD decimal.Decimal, currency string) Result {
	rate, ok := expectedUSDRates[currency]
	if !ok {
		return valid()
	}
	lower := minUSD.Mul(rate)
	upper := maxUSD.Mul(rate)
	if currency != "USD" {
		lower = lower.Mul(decimal.NewFromInt(1).Sub(bandMargin))
		upper = upper.Mul(decimal.NewFromInt(1).Add(bandMargin))
	}
	if value.LessThan(lower) || value.GreaterThan(upper) {
		return invalid("%s price %s %s is outside the plausible range [%s, %s]",
			label, value, currency, lower, upper)
	}
	return valid()
}
