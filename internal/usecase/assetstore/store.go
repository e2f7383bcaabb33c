package assetstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mrabdussalam/zakat-calculator-sub003/internal/domain"
)

// EventType classifies store lifecycle and mutation notifications.
type EventType string

const (
	EventReady           EventType = "READY"
	EventValueChanged    EventType = "VALUE_CHANGED"
	EventReset           EventType = "RESET"
	EventCurrencyChanged EventType = "CURRENCY_CHANGED"
	EventHawlChanged     EventType = "HAWL_CHANGED"
)

// Event is delivered to subscribers after a mutation has been persisted.
type Event struct {
	Type     EventType
	Category domain.AssetCategory
}

// Store is the single mutable owner of all raw category records. Consumers
// hold a reference and read through typed accessors; the only external
// writer of monetary fields is the currency-conversion coordinator, through
// Rewrite. Hydration is explicit: reads before Hydrate see zeroed defaults
// and Ready() reports false.
type Store struct {
	repo domain.StateRepository

	mu    sync.RWMutex
	state *domain.CalculatorState
	ready bool
	subs  []chan Event
}

// New creates a store backed by the given repository. Call Hydrate before
// serving reads.
func New(repo domain.StateRepository) *Store {
	return &Store{
		repo:  repo,
		state: domain.NewCalculatorState(),
	}
}

// Hydrate loads persisted state, marks the store ready, and notifies
// subscribers. Safe to call once at startup.
func (s *Store) Hydrate(ctx context.Context) error {
	state, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("hydrating asset store: %w", err)
	}

	s.mu.Lock()
	s.state = state
	s.ready = true
	s.mu.Unlock()

	zap.L().Info("asset store hydrated",
		zap.String("base_currency", state.BaseCurrency),
		zap.Int("state_version", state.Version))
	s.publish(Event{Type: EventReady})
	return nil
}

// Ready reports whether persisted state has been loaded.
func (s *Store) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Subscribe returns a channel receiving store events. Slow subscribers drop
// events rather than block mutations.
func (s *Store) Subscribe() <-chan Event {
	ch := make(chan Event, 16)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

func (s *Store) publish(e Event) {
	s.mu.RLock()
	subs := s.subs
	s.mu.RUnlock()
	for _, ch := range subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// SetValue writes one numeric sub-field. Amounts and weights must be zero
// or positive; an invalid value is rejected with a ValidationError and the
// store is left untouched.
func (s *Store) SetValue(ctx context.Context, category domain.AssetCategory, field string, value decimal.Decimal) error {
	if !domain.ValidCategory(category) {
		return &domain.ValidationError{Category: category, Field: field, Reason: "unknown category"}
	}
	spec, ok := domain.Field(category, field)
	if !ok {
		return &domain.ValidationError{Category: category, Field: field, Reason: "unknown field"}
	}
	if value.IsNegative() {
		return &domain.ValidationError{Category: category, Field: field, Reason: "value must not be negative"}
	}

	s.mu.Lock()
	previous := spec.Get(s.state)
	spec.Set(s.state, value)
	err := s.persistLocked(ctx)
	if err != nil {
		spec.Set(s.state, previous)
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.publish(Event{Type: EventValueChanged, Category: category})
	return nil
}

// Value reads one numeric sub-field.
func (s *Store) Value(category domain.AssetCategory, field string) (decimal.Decimal, error) {
	spec, ok := domain.Field(category, field)
	if !ok {
		return decimal.Zero, &domain.ValidationError{Category: category, Field: field, Reason: "unknown field"}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return spec.Get(s.state), nil
}

// ResetCategory zeroes every numeric field of the category and empties its
// structured sub-entries without changing their shape (slices become empty,
// never nil). The category's reset epoch increments so a reset stays
// distinguishable from genuine zero-valued input. Hawl flags are preserved.
func (s *Store) ResetCategory(ctx context.Context, category domain.AssetCategory) error {
	if !domain.ValidCategory(category) {
		return &domain.ValidationError{Category: category, Reason: "unknown category"}
	}
	fields, _ := domain.Schema(category)

	s.mu.Lock()
	for _, f := range fields {
		f.Set(s.state, decimal.Zero)
	}
	switch category {
	case domain.CategoryCash:
		s.state.Cash.ForeignEntries = []domain.ForeignCashEntry{}
	case domain.CategoryStocks:
		s.state.Stocks.ActiveHoldings = []domain.StockHolding{}
		s.state.Stocks.PassiveFunds = []domain.PassiveFund{}
	case domain.CategoryCrypto:
		s.state.Crypto.Holdings = []domain.CoinHolding{}
	case domain.CategoryRetirement:
		s.state.Retirement.DeferLocked = false
	}
	s.state.ResetEpochs[category]++
	err := s.persistLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.publish(Event{Type: EventReset, Category: category})
	return nil
}

// ResetEpoch returns the category's reset counter.
func (s *Store) ResetEpoch(category domain.AssetCategory) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.ResetEpochs[category]
}

// SetHawl records whether the category satisfies the holding-period
// requirement.
func (s *Store) SetHawl(ctx context.Context, category domain.AssetCategory, satisfied bool) error {
	if !domain.ValidCategory(category) {
		return &domain.ValidationError{Category: category, Reason: "unknown category"}
	}
	s.mu.Lock()
	s.state.Hawl[category] = satisfied
	err := s.persistLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.publish(Event{Type: EventHawlChanged, Category: category})
	return nil
}

// Hawl reports the category's holding-period flag. Defaults to true.
func (s *Store) Hawl(category domain.AssetCategory) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	satisfied, ok := s.state.Hawl[category]
	if !ok {
		return true
	}
	return satisfied
}

// BaseCurrency returns the currency every stored monetary value is
// expressed in.
func (s *Store) BaseCurrency() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.BaseCurrency
}

// Snapshot returns a deep copy of the full state for readers.
func (s *Store) Snapshot() *domain.CalculatorState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// SetLastMetalPrices caches the most recent accepted metal snapshot in the
// persisted blob.
func (s *Store) SetLastMetalPrices(ctx context.Context, prices *domain.MetalPrices) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.LastMetalPrices = prices
	return s.persistLocked(ctx)
}

// SetLastNisab caches the most recent accepted nisab threshold.
func (s *Store) SetLastNisab(ctx context.Context, threshold *domain.NisabThreshold) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.LastNisab = threshold
	return s.persistLocked(ctx)
}

// Rewrite applies fn to the live state under the store lock and persists
// the result. Reserved for the currency-conversion coordinator, which is
// the only component permitted to rewrite monetary fields in place.
func (s *Store) Rewrite(ctx context.Context, fn func(*domain.CalculatorState)) error {
	s.mu.Lock()
	fn(s.state)
	err := s.persistLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.publish(Event{Type: EventCurrencyChanged})
	return nil
}

// persistLocked writes the state through the repository. Callers hold mu.
func (s *Store) persistLocked(ctx context.Context) error {
	if err := s.repo.Save(ctx, s.state); err != nil {
		return fmt.Errorf("persisting calculator state: %w", err)
	}
	return nil
}
