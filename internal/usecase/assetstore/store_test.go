package assetstore

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrabdussalam/zakat-calculator-sub003/internal/domain"
)

// memoryRepo is an in-memory StateRepository for store tests.
type memoryRepo struct {
	mu      sync.Mutex
	state   *domain.CalculatorState
	saves   int
	saveErr error
}

func (r *memoryRepo) Load(ctx context.Context) (*domain.CalculatorState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == nil {
		return domain.NewCalculatorState(), nil
	}
	return r.state.Clone(), nil
}

func (r *memoryRepo) Save(ctx context.Context, state *domain.CalculatorState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.state = state.Clone()
	r.saves++
	return nil
}

func newTestStore(t *testing.T) (*Store, *memoryRepo) {
	t.Helper()
	repo := &memoryRepo{}
	store := New(repo)
	require.NoError(t, store.Hydrate(context.Background()))
	return store, repo
}

func TestHydrate_MarksReadyAndPublishes(t *testing.T) {
	repo := &memoryRepo{}
	store := New(repo)
	events := store.Subscribe()

	assert.False(t, store.Ready(), "store must not report ready before hydration")
	require.NoError(t, store.Hydrate(context.Background()))
	assert.True(t, store.Ready())

	select {
	case e := <-events:
		assert.Equal(t, EventReady, e.Type)
	default:
		t.Fatal("expected a READY event after hydration")
	}
}

func TestSetValue_PersistsAndPublishes(t *testing.T) {
	store, repo := newTestStore(t)
	events := store.Subscribe()
	ctx := context.Background()

	err := store.SetValue(ctx, domain.CategoryCash, "cash_on_hand", decimal.NewFromInt(600))
	require.NoError(t, err)

	value, err := store.Value(domain.CategoryCash, "cash_on_hand")
	require.NoError(t, err)
	assert.True(t, value.Equal(decimal.NewFromInt(600)))
	assert.True(t, repo.state.Cash.OnHand.Equal(decimal.NewFromInt(600)), "value must be persisted")

	select {
	case e := <-events:
		assert.Equal(t, EventValueChanged, e.Type)
		assert.Equal(t, domain.CategoryCash, e.Category)
	default:
		t.Fatal("expected a VALUE_CHANGED event")
	}
}

func TestSetValue_RejectsNegative(t *testing.T) {
	store, repo := newTestStore(t)
	saves := repo.saves

	err := store.SetValue(context.Background(), domain.CategoryCash, "cash_on_hand", decimal.NewFromInt(-1))

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, saves, repo.saves, "a rejected write must not persist")
}

func TestSetValue_RejectsUnknownCategoryAndField(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	assert.Error(t, store.SetValue(ctx, "yachts", "hull_value", decimal.NewFromInt(1)))
	assert.Error(t, store.SetValue(ctx, domain.CategoryCash, "no_such_field", decimal.NewFromInt(1)))
}

func TestSetValue_RollsBackOnPersistFailure(t *testing.T) {
	store, repo := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetValue(ctx, domain.CategoryCash, "cash_on_hand", decimal.NewFromInt(100)))

	repo.saveErr = errors.New("disk full")
	err := store.SetValue(ctx, domain.CategoryCash, "cash_on_hand", decimal.NewFromInt(999))
	require.Error(t, err)

	value, err := store.Value(domain.CategoryCash, "cash_on_hand")
	require.NoError(t, err)
	assert.True(t, value.Equal(decimal.NewFromInt(100)), "in-memory state must roll back when persistence fails")
}

func TestResetCategory_ZeroesFieldsAndBumpsEpoch(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetValue(ctx, domain.CategoryCash, "cash_on_hand", decimal.NewFromInt(600)))
	require.NoError(t, store.AddForeignCash(ctx, domain.ForeignCashEntry{
		Amount: decimal.NewFromInt(200), Currency: "EUR",
	}))
	require.NoError(t, store.SetHawl(ctx, domain.CategoryCash, false))

	before := store.ResetEpoch(domain.CategoryCash)
	require.NoError(t, store.ResetCategory(ctx, domain.CategoryCash))

	value, err := store.Value(domain.CategoryCash, "cash_on_hand")
	require.NoError(t, err)
	assert.True(t, value.IsZero())

	snap := store.Snapshot()
	assert.NotNil(t, snap.Cash.ForeignEntries, "reset empties entries but keeps the slice present")
	assert.Empty(t, snap.Cash.ForeignEntries)

	assert.Equal(t, before+1, store.ResetEpoch(domain.CategoryCash), "reset must be distinguishable from zero input")
	assert.False(t, store.Hawl(domain.CategoryCash), "reset preserves the hawl flag")
}

func TestHawl_DefaultsToSatisfied(t *testing.T) {
	store, _ := newTestStore(t)

	for _, category := range domain.Categories {
		assert.True(t, store.Hawl(category), "hawl for %s should default to satisfied", category)
	}
}

func TestSetHawl_RoundTrips(t *testing.T) {
	store, repo := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetHawl(ctx, domain.CategoryStocks, false))
	assert.False(t, store.Hawl(domain.CategoryStocks))
	assert.False(t, repo.state.Hawl[domain.CategoryStocks])

	require.NoError(t, store.SetHawl(ctx, domain.CategoryStocks, true))
	assert.True(t, store.Hawl(domain.CategoryStocks))
}

func TestSnapshot_IsIsolatedFromStore(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetValue(ctx, domain.CategoryCash, "cash_on_hand", decimal.NewFromInt(100)))

	snap := store.Snapshot()
	snap.Cash.OnHand = decimal.NewFromInt(999999)
	snap.Hawl[domain.CategoryCash] = false

	value, err := store.Value(domain.CategoryCash, "cash_on_hand")
	require.NoError(t, err)
	assert.True(t, value.Equal(decimal.NewFromInt(100)), "mutating a snapshot must not touch the store")
	assert.True(t, store.Hawl(domain.CategoryCash))
}

func TestForeignCashEntries_AddValidateRemove(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	err := store.AddForeignCash(ctx, domain.ForeignCashEntry{Amount: decimal.NewFromInt(-5), Currency: "EUR"})
	assert.Error(t, err)

	err = store.AddForeignCash(ctx, domain.ForeignCashEntry{Amount: decimal.NewFromInt(5), Currency: "NOPE"})
	assert.Error(t, err)

	require.NoError(t, store.AddForeignCash(ctx, domain.ForeignCashEntry{Amount: decimal.NewFromInt(200), Currency: "EUR"}))
	require.NoError(t, store.AddForeignCash(ctx, domain.ForeignCashEntry{Amount: decimal.NewFromInt(300), Currency: "GBP"}))
	require.Len(t, store.Snapshot().Cash.ForeignEntries, 2)

	assert.Error(t, store.RemoveForeignCash(ctx, 5), "out-of-range index is rejected")
	require.NoError(t, store.RemoveForeignCash(ctx, 0))

	entries := store.Snapshot().Cash.ForeignEntries
	require.Len(t, entries, 1)
	assert.Equal(t, "GBP", entries[0].Currency)
}

func TestPassiveFund_DefaultsToQuickMethod(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddPassiveFund(ctx, domain.PassiveFund{
		Symbol:      "VTI",
		MarketValue: decimal.NewFromInt(10000),
		Currency:    "USD",
	}))

	funds := store.Snapshot().Stocks.PassiveFunds
	require.Len(t, funds, 1)
	assert.Equal(t, domain.MethodQuick, funds[0].Method)
}

func TestCoinHolding_RequiresSymbol(t *testing.T) {
	store, _ := newTestStore(t)

	err := store.AddCoinHolding(context.Background(), domain.CoinHolding{
		Quantity: decimal.NewFromInt(1), CurrentPrice: decimal.NewFromInt(100), Currency: "USD",
	})
	assert.Error(t, err)
}

func TestSubscribe_SlowSubscriberDoesNotBlock(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	// Unread channel with a 16-slot buffer; overfill it.
	store.Subscribe()
	for i := 0; i < 40; i++ {
		require.NoError(t, store.SetValue(ctx, domain.CategoryCash, "cash_on_hand", decimal.NewFromInt(int64(i))))
	}

	value, err := store.Value(domain.CategoryCash, "cash_on_hand")
	require.NoError(t, err)
	assert.True(t, value.Equal(decimal.NewFromInt(39)))
}
