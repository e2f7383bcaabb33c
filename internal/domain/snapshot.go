package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Nisab weight constants (grams). The gold nisab is 85g of gold; the silver
// nisab is 595g of silver.
var (
	NisabGoldGrams   = decimal.NewFromInt(85)
	NisabSilverGrams = decimal.NewFromInt(595)
)

// ZakatRate is the zakat rate applied to the zakatable total (2.5%).
var ZakatRate = decimal.NewFromFloat(0.025)

// MetalType identifies a precious metal.
type MetalType string

const (
	MetalGold   MetalType = "gold"
	MetalSilver MetalType = "silver"
)

// PriceSnapshot is the value + timestamp + source-currency contract every
// upstream price feed satisfies. Price is per unit: per gram for metals,
// per share/coin for quotes.
type PriceSnapshot struct {
	Price     decimal.Decimal `json:"price"`
	Currency  string          `json:"currency"`
	Timestamp time.Time       `json:"timestamp"`
	Source    string          `json:"source"`
	IsCache   bool            `json:"is_cache"`
}

// MetalPrices is a paired gold/silver quote, per gram, in a single currency.
type MetalPrices struct {
	GoldPerGram   decimal.Decimal `json:"gold"`
	SilverPerGram decimal.Decimal `json:"silver"`
	Currency      string          `json:"currency"`
	Timestamp     time.Time       `json:"last_updated"`
	Source        string          `json:"source"`
	IsCache       bool            `json:"is_cache"`
}

// Gold returns the gold side of the pair as a standalone snapshot.
func (m *MetalPrices) Gold() *PriceSnapshot {
	return &PriceSnapshot{Price: m.GoldPerGram, Currency: m.Currency, Timestamp: m.Timestamp, Source: m.Source, IsCache: m.IsCache}
}

// Silver returns the silver side of the pair as a standalone snapshot.
func (m *MetalPrices) Silver() *PriceSnapshot {
	return &PriceSnapshot{Price: m.SilverPerGram, Currency: m.Currency, Timestamp: m.Timestamp, Source: m.Source, IsCache: m.IsCache}
}

// NisabThreshold is the eligibility floor derived from metal spot prices.
// BindingMetal is always the metal producing the lower threshold, so more
// wealth qualifies for zakat, not less.
type NisabThreshold struct {
	GoldValue    decimal.Decimal `json:"gold_value"`
	SilverValue  decimal.Decimal `json:"silver_value"`
	Currency     string          `json:"currency"`
	Timestamp    time.Time       `json:"timestamp"`
	BindingMetal MetalType       `json:"binding_metal"`
}

// Threshold returns the binding (lower) threshold value.
func (n *NisabThreshold) Threshold() decimal.Decimal {
	if n.BindingMetal == MetalGold {
		return n.GoldValue
	}
	return n.SilverValue
}

// ConversionRecord marks a completed base-currency conversion. Its only
// purpose is idempotence: a second conversion request for the same
// (from, to) pair within one action window must be a no-op.
type ConversionRecord struct {
	ID           uuid.UUID `json:"id"`
	FromCurrency string    `json:"from_currency"`
	ToCurrency   string    `json:"to_currency"`
	Timestamp    time.Time `json:"timestamp"`
}

// Matches reports whether the record covers the given currency pair.
func (r ConversionRecord) Matches(from, to string) bool {
	return r.FromCurrency == from && r.ToCurrency == to
}
