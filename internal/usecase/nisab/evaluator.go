package nisab

import (
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mrabdussalam/zakat-calculator-sub003/internal/domain"
	"github.com/mrabdussalam/zakat-calculator-sub003/internal/usecase/pricecache"
)

// Static fallback prices, per gram in USD, used only when no live or cached
// threshold is available. A zero threshold would make all wealth appear
// zakatable, so the chain never bottoms out at zero.
var (
	fallbackGoldPerGramUSD   = decimal.NewFromFloat(75.0)
	fallbackSilverPerGramUSD = decimal.NewFromFloat(0.95)
)

// Evaluator computes the nisab eligibility floor from gold and silver spot
// prices and remembers the last threshold that passed validation.
type Evaluator struct {
	validator *pricecache.Validator

	mu       sync.RWMutex
	lastGood *domain.NisabThreshold
}

// NewEvaluator creates an Evaluator screening inputs with the given validator.
func NewEvaluator(validator *pricecache.Validator) *Evaluator {
	return &Evaluator{validator: validator}
}

// Evaluate derives the threshold from the two snapshots:
// goldValue = price/gram x 85g, silverValue = price/gram x 595g, and the
// binding metal is whichever value is lower (the Islamic ruling uses the
// lower threshold so more wealth qualifies for zakat, not less).
// Both snapshots must pass freshness and range validation; otherwise the
// evaluation fails with ErrStaleOrMissingPrice and the caller must fall
// back to Fallback(), never to a zero threshold.
func (e *Evaluator) Evaluate(gold, silver *domain.PriceSnapshot) (*domain.NisabThreshold, error) {
	opts := pricecache.Options{MaxAge: pricecache.TTLNisab}
	if r := e.validator.ValidateSnapshot(gold, opts); !r.IsValid {
		return nil, fmt.Errorf("gold snapshot rejected (%s): %w", r.Reason, domain.ErrStaleOrMissingPrice)
	}
	if r := e.validator.ValidateSnapshot(silver, opts); !r.IsValid {
		return nil, fmt.Errorf("silver snapshot rejected (%s): %w", r.Reason, domain.ErrStaleOrMissingPrice)
	}
	if gold.Currency != silver.Currency {
		return nil, fmt.Errorf("gold quoted in %s but silver in %s: %w",
			gold.Currency, silver.Currency, domain.ErrStaleOrMissingPrice)
	}

	threshold := compute(gold.Price, silver.Price, gold.Currency, gold.Timestamp, silver.Timestamp)

	e.mu.Lock()
	e.lastGood = threshold
	e.mu.Unlock()

	return threshold, nil
}

// Fallback returns the last threshold that passed validation, or the static
// default priced in USD when none exists yet. The second return reports
// whether the static default was used.
func (e *Evaluator) Fallback() (*domain.NisabThreshold, bool) {
	e.mu.RLock()
	last := e.lastGood
	e.mu.RUnlock()
	if last != nil {
		copied := *last
		return &copied, false
	}

	zap.L().Warn("no valid nisab threshold available, using static fallback prices")
	now := time.Now()
	t := compute(fallbackGoldPerGramUSD, fallbackSilverPerGramUSD, "USD", now, now)
	return t, true
}

// Seed primes the last-good threshold from persisted state on startup.
func (e *Evaluator) Seed(t *domain.NisabThreshold) {
	if t == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.lastGood == nil {
		copied := *t
		e.lastGood = &copied
	}
}

// MeetsNisab reports whether the zakatable total reaches the binding floor.
func MeetsNisab(zakatable decimal.Decimal, threshold *domain.NisabThreshold) bool {
	return zakatable.GreaterThanOrEqual(threshold.Threshold())
}

func compute(goldPerGram, silverPerGram decimal.Decimal, currency string, goldAt, silverAt time.Time) *domain.NisabThreshold {
	goldValue := goldPerGram.Mul(domain.NisabGoldGrams)
	silverValue := silverPerGram.Mul(domain.NisabSilverGrams)

	binding := domain.MetalSilver
	if goldValue.LessThan(silverValue) {
		binding = domain.MetalGold
	}

	at := goldAt
	if silverAt.After(goldAt) {
		at = silverAt
	}

	return &domain.NisabThreshold{
		GoldValue:    goldValue,
		SilverValue:  silverValue,
		Currency:     currency,
		Timestamp:    at,
		BindingMetal: binding,
	}
}
