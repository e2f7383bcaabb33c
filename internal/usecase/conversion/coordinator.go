package conversion

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mrabdussalam/zakat-calculator-sub003/internal/domain"
	"github.com/mrabdussalam/zakat-calculator-sub003/internal/usecase/assetstore"
)

// DefaultActionWindow bounds how long a conversion record suppresses a
// repeat of the same (from, to) request. Two identical requests inside the
// window belong to one user action and must not double-convert.
const DefaultActionWindow = 5 * time.Second

// conversionHistoryLimit caps the records kept in the persisted blob.
const conversionHistoryLimit = 20

// NisabRefresher re-prices the nisab threshold in a new currency. The
// threshold must be re-priced from fresh metal quotes, never re-converted,
// because metal spot prices are not a linear function of a stale rate.
type NisabRefresher interface {
	Refresh(ctx context.Context, currency string) (*domain.NisabThreshold, error)
}

// Outcome reports what a conversion did. A NoOp outcome means the
// idempotence guard suppressed a duplicate request.
type Outcome struct {
	Record    *domain.ConversionRecord
	NoOp      bool
	Converted int
	Skipped   int
	Warnings  []string
}

// Coordinator rewrites every stored monetary value when the user switches
// base currency. It is the only writer besides the store itself, and it
// serializes conversions so a second request cannot interleave with one in
// flight.
type Coordinator struct {
	store  *assetstore.Store
	rates  domain.RateProvider
	nisab  NisabRefresher
	window time.Duration

	mu sync.Mutex
}

// NewCoordinator creates a coordinator. A non-positive window falls back to
// DefaultActionWindow.
func NewCoordinator(store *assetstore.Store, rates domain.RateProvider, nisab NisabRefresher, window time.Duration) *Coordinator {
	if window <= 0 {
		window = DefaultActionWindow
	}
	return &Coordinator{store: store, rates: rates, nisab: nisab, window: window}
}

// Convert re-expresses all stored values in the target currency. The order
// of steps matters: the new base currency is persisted before any value is
// rewritten so no dependent read observes a half-converted state, and the
// nisab threshold is re-priced (not re-converted) afterwards. A failed rate
// lookup leaves the affected fields unconverted and surfaces warnings; the
// operation never rolls back a partial success.
func (c *Coordinator) Convert(ctx context.Context, from, to string) (*Outcome, error) {
	if !domain.ValidCurrency(from) || !domain.ValidCurrency(to) {
		return nil, fmt.Errorf("unknown currency pair %s->%s: %w", from, to, domain.ErrInvalidInput)
	}
	if from == to {
		return nil, fmt.Errorf("source and target currency are both %s: %w", from, domain.ErrInvalidInput)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Idempotence guard: a matching record inside the action window means
	// this exact conversion already ran.
	if last := c.store.Snapshot().LastConversion(); last != nil &&
		last.Matches(from, to) && time.Since(last.Timestamp) <= c.window {
		record := *last
		zap.L().Info("conversion suppressed by idempotence guard",
			zap.String("from", from), zap.String("to", to))
		return &Outcome{Record: &record, NoOp: true}, nil
	}

	// Step 1: persist the new base currency before touching any value.
	if err := c.store.Rewrite(ctx, func(s *domain.CalculatorState) {
		s.BaseCurrency = to
	}); err != nil {
		return nil, err
	}

	outcome := &Outcome{}

	// One rate lookup per source currency for the whole operation.
	rateCache := make(map[string]decimal.Decimal)
	lookup := func(src string) (decimal.Decimal, bool) {
		if rate, ok := rateCache[src]; ok {
			return rate, true
		}
		rate, err := c.rates.Rate(ctx, src, to)
		if err != nil {
			outcome.Warnings = append(outcome.Warnings,
				fmt.Sprintf("rate %s->%s unavailable: %v", src, to, err))
			return decimal.Decimal{}, false
		}
		rateCache[src] = rate
		return rate, true
	}

	// Steps 2-3: rewrite plain monetary fields from the old base, and
	// tagged sub-entries each from their own currency tag.
	if err := c.store.Rewrite(ctx, func(s *domain.CalculatorState) {
		c.rewriteFields(s, from, to, lookup, outcome)
		c.rewriteEntries(s, from, to, lookup, outcome)
	}); err != nil {
		return nil, err
	}

	// Step 4: re-price the nisab threshold in the target currency.
	if threshold, err := c.nisab.Refresh(ctx, to); err != nil {
		outcome.Warnings = append(outcome.Warnings,
			fmt.Sprintf("nisab re-pricing in %s failed: %v", to, err))
	} else if err := c.store.SetLastNisab(ctx, threshold); err != nil {
		outcome.Warnings = append(outcome.Warnings,
			fmt.Sprintf("persisting re-priced nisab failed: %v", err))
	}

	// Step 5: record the completed conversion.
	record := domain.ConversionRecord{
		ID:           uuid.New(),
		FromCurrency: from,
		ToCurrency:   to,
		Timestamp:    time.Now(),
	}
	if err := c.store.Rewrite(ctx, func(s *domain.CalculatorState) {
		s.Conversions = append(s.Conversions, record)
		if len(s.Conversions) > conversionHistoryLimit {
			s.Conversions = s.Conversions[len(s.Conversions)-conversionHistoryLimit:]
		}
	}); err != nil {
		return nil, err
	}
	outcome.Record = &record

	zap.L().Info("base currency converted",
		zap.String("from", from), zap.String("to", to),
		zap.Int("converted", outcome.Converted),
		zap.Int("skipped", outcome.Skipped),
		zap.Int("warnings", len(outcome.Warnings)))
	return outcome, nil
}

// rewriteFields converts every declared monetary field from the old base.
func (c *Coordinator) rewriteFields(s *domain.CalculatorState, from, to string, lookup func(string) (decimal.Decimal, bool), outcome *Outcome) {
	fields := domain.MonetaryFields()
	rate, ok := lookup(from)
	if !ok {
		outcome.Skipped += len(fields)
		return
	}
	for _, f := range fields {
		f.Set(s, domain.RoundToMinorUnits(f.Get(s).Mul(rate), to))
		outcome.Converted++
	}
}

// rewriteEntries converts structured sub-entries that carry their own
// currency tag. Only entries tagged with the old base are rewritten and
// retagged; entries in a third currency keep their tag and are converted
// from it at valuation time, never from the old base blindly.
func (c *Coordinator) rewriteEntries(s *domain.CalculatorState, from, to string, lookup func(string) (decimal.Decimal, bool), outcome *Outcome) {
	convert := func(amount decimal.Decimal, tag string) (decimal.Decimal, string, bool) {
		if tag != from || tag == to {
			return amount, tag, false
		}
		rate, ok := lookup(from)
		if !ok {
			outcome.Skipped++
			return amount, tag, false
		}
		return domain.RoundToMinorUnits(amount.Mul(rate), to), to, true
	}

	for i := range s.Cash.ForeignEntries {
		e := &s.Cash.ForeignEntries[i]
		if amount, tag, ok := convert(e.Amount, e.Currency); ok {
			e.Amount, e.Currency = amount, tag
			outcome.Converted++
		}
	}
	for i := range s.Stocks.ActiveHoldings {
		h := &s.Stocks.ActiveHoldings[i]
		if price, tag, ok := convert(h.CurrentPrice, h.Currency); ok {
			h.CurrentPrice, h.Currency = price, tag
			outcome.Converted++
		}
	}
	for i := range s.Stocks.PassiveFunds {
		f := &s.Stocks.PassiveFunds[i]
		if f.Currency != from || f.Currency == to {
			continue
		}
		rate, ok := lookup(from)
		if !ok {
			outcome.Skipped++
			continue
		}
		f.MarketValue = domain.RoundToMinorUnits(f.MarketValue.Mul(rate), to)
		f.CompanyCash = domain.RoundToMinorUnits(f.CompanyCash.Mul(rate), to)
		f.CompanyReceivables = domain.RoundToMinorUnits(f.CompanyReceivables.Mul(rate), to)
		f.CompanyInventory = domain.RoundToMinorUnits(f.CompanyInventory.Mul(rate), to)
		f.Currency = to
		outcome.Converted++
	}
	for i := range s.Crypto.Holdings {
		h := &s.Crypto.Holdings[i]
		if price, tag, ok := convert(h.CurrentPrice, h.Currency); ok {
			h.CurrentPrice, h.Currency = price, tag
			outcome.Converted++
		}
	}
}
