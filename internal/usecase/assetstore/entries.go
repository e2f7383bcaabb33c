package assetstore

import (
	"context"

	"github.com/mrabdussalam/zakat-calculator-sub003/internal/domain"
)

// Structured sub-entry management for the categories that carry lists
// (foreign cash, stock holdings, passive funds, coin holdings). Entries are
// validated before insertion; removal is by index.

// AddForeignCash appends a foreign-currency cash entry.
func (s *Store) AddForeignCash(ctx context.Context, entry domain.ForeignCashEntry) error {
	if entry.Amount.IsNegative() {
		return &domain.ValidationError{Category: domain.CategoryCash, Field: "foreign_entries", Reason: "amount must not be negative"}
	}
	if !domain.ValidCurrency(entry.Currency) {
		return &domain.ValidationError{Category: domain.CategoryCash, Field: "foreign_entries", Reason: "unknown currency " + entry.Currency}
	}

	s.mu.Lock()
	s.state.Cash.ForeignEntries = append(s.state.Cash.ForeignEntries, entry)
	err := s.persistLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.publish(Event{Type: EventValueChanged, Category: domain.CategoryCash})
	return nil
}

// RemoveForeignCash deletes the entry at index.
func (s *Store) RemoveForeignCash(ctx context.Context, index int) error {
	s.mu.Lock()
	if index < 0 || index >= len(s.state.Cash.ForeignEntries) {
		s.mu.Unlock()
		return &domain.ValidationError{Category: domain.CategoryCash, Field: "foreign_entries", Reason: "index out of range"}
	}
	s.state.Cash.ForeignEntries = append(
		s.state.Cash.ForeignEntries[:index],
		s.state.Cash.ForeignEntries[index+1:]...)
	err := s.persistLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.publish(Event{Type: EventValueChanged, Category: domain.CategoryCash})
	return nil
}

// AddStockHolding appends an active-trading equity position.
func (s *Store) AddStockHolding(ctx context.Context, h domain.StockHolding) error {
	if h.Symbol == "" {
		return &domain.ValidationError{Category: domain.CategoryStocks, Field: "active_holdings", Reason: "symbol is required"}
	}
	if h.Quantity.IsNegative() || h.CurrentPrice.IsNegative() {
		return &domain.ValidationError{Category: domain.CategoryStocks, Field: "active_holdings", Reason: "quantity and price must not be negative"}
	}
	if !domain.ValidCurrency(h.Currency) {
		return &domain.ValidationError{Category: domain.CategoryStocks, Field: "active_holdings", Reason: "unknown currency " + h.Currency}
	}

	s.mu.Lock()
	s.state.Stocks.ActiveHoldings = append(s.state.Stocks.ActiveHoldings, h)
	err := s.persistLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.publish(Event{Type: EventValueChanged, Category: domain.CategoryStocks})
	return nil
}

// RemoveStockHolding deletes the active holding at index.
func (s *Store) RemoveStockHolding(ctx context.Context, index int) error {
	s.mu.Lock()
	if index < 0 || index >= len(s.state.Stocks.ActiveHoldings) {
		s.mu.Unlock()
		return &domain.ValidationError{Category: domain.CategoryStocks, Field: "active_holdings", Reason: "index out of range"}
	}
	s.state.Stocks.ActiveHoldings = append(
		s.state.Stocks.ActiveHoldings[:index],
		s.state.Stocks.ActiveHoldings[index+1:]...)
	err := s.persistLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.publish(Event{Type: EventValueChanged, Category: domain.CategoryStocks})
	return nil
}

// AddPassiveFund appends a passive/fund position.
func (s *Store) AddPassiveFund(ctx context.Context, f domain.PassiveFund) error {
	if f.Symbol == "" {
		return &domain.ValidationError{Category: domain.CategoryStocks, Field: "passive_funds", Reason: "symbol is required"}
	}
	if f.MarketValue.IsNegative() {
		return &domain.ValidationError{Category: domain.CategoryStocks, Field: "passive_funds", Reason: "market value must not be negative"}
	}
	if !domain.ValidCurrency(f.Currency) {
		return &domain.ValidationError{Category: domain.CategoryStocks, Field: "passive_funds", Reason: "unknown currency " + f.Currency}
	}
	if f.Method == "" {
		f.Method = domain.MethodQuick
	}
	if f.Method != domain.MethodQuick && f.Method != domain.MethodDetailed {
		return &domain.ValidationError{Category: domain.CategoryStocks, Field: "passive_funds", Reason: "method must be QUICK or DETAILED"}
	}

	s.mu.Lock()
	s.state.Stocks.PassiveFunds = append(s.state.Stocks.PassiveFunds, f)
	err := s.persistLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.publish(Event{Type: EventValueChanged, Category: domain.CategoryStocks})
	return nil
}

// RemovePassiveFund deletes the passive fund at index.
func (s *Store) RemovePassiveFund(ctx context.Context, index int) error {
	s.mu.Lock()
	if index < 0 || index >= len(s.state.Stocks.PassiveFunds) {
		s.mu.Unlock()
		return &domain.ValidationError{Category: domain.CategoryStocks, Field: "passive_funds", Reason: "index out of range"}
	}
	s.state.Stocks.PassiveFunds = append(
		s.state.Stocks.PassiveFunds[:index],
		s.state.Stocks.PassiveFunds[index+1:]...)
	err := s.persistLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.publish(Event{Type: EventValueChanged, Category: domain.CategoryStocks})
	return nil
}

// AddCoinHolding appends a cryptocurrency position.
func (s *Store) AddCoinHolding(ctx context.Context, h domain.CoinHolding) error {
	if h.Symbol == "" {
		return &domain.ValidationError{Category: domain.CategoryCrypto, Field: "holdings", Reason: "symbol is required"}
	}
	if h.Quantity.IsNegative() || h.CurrentPrice.IsNegative() {
		return &domain.ValidationError{Category: domain.CategoryCrypto, Field: "holdings", Reason: "quantity and price must not be negative"}
	}
	if !domain.ValidCurrency(h.Currency) {
		return &domain.ValidationError{Category: domain.CategoryCrypto, Field: "holdings", Reason: "unknown currency " + h.Currency}
	}

	s.mu.Lock()
	s.state.Crypto.Holdings = append(s.state.Crypto.Holdings, h)
	err := s.persistLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.publish(Event{Type: EventValueChanged, Category: domain.CategoryCrypto})
	return nil
}

// RemoveCoinHolding deletes the coin holding at index.
func (s *Store) RemoveCoinHolding(ctx context.Context, index int) error {
	s.mu.Lock()
	if index < 0 || index >= len(s.state.Crypto.Holdings) {
		s.mu.Unlock()
		return &domain.ValidationError{Category: domain.CategoryCrypto, Field: "holdings", Reason: "index out of range"}
	}
	s.state.Crypto.Holdings = append(
		s.state.Crypto.Holdings[:index],
		s.state.Crypto.Holdings[index+1:]...)
	err := s.persistLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.publish(Event{Type: EventValueChanged, Category: domain.CategoryCrypto})
	return nil
}
