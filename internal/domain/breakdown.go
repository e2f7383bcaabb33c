package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// BreakdownItem is the valuation of a single line within a category.
type BreakdownItem struct {
	Value       decimal.Decimal `json:"value"`
	IsZakatable bool            `json:"is_zakatable"`
	IsExempt    bool            `json:"is_exempt"`
	Zakatable   decimal.Decimal `json:"zakatable"`
	ZakatDue    decimal.Decimal `json:"zakat_due"`
}

// Breakdown is the derived zakatable/exempt/total split for one category.
// It is never stored; calculators produce it from the current records and
// prices on every read.
type Breakdown struct {
	Total     decimal.Decimal          `json:"total"`
	Zakatable decimal.Decimal          `json:"zakatable"`
	ZakatDue  decimal.Decimal          `json:"zakat_due"`
	Items     map[string]BreakdownItem `json:"items"`
}

// NewBreakdown returns an empty breakdown with an initialized item map.
func NewBreakdown() Breakdown {
	return Breakdown{Items: make(map[string]BreakdownItem)}
}

// AddItem records a line item and folds it into the running totals.
func (b *Breakdown) AddItem(key string, value decimal.Decimal, zakatable decimal.Decimal, isZakatable bool) {
	item := BreakdownItem{
		Value:       value,
		IsZakatable: isZakatable,
		IsExempt:    !isZakatable,
	}
	if isZakatable {
		item.Zakatable = zakatable
		item.ZakatDue = zakatable.Mul(ZakatRate)
	} else {
		item.Zakatable = decimal.Zero
		item.ZakatDue = decimal.Zero
	}
	b.Items[key] = item
	b.Total = b.Total.Add(value)
	b.Zakatable = b.Zakatable.Add(item.Zakatable)
	b.ZakatDue = b.Zakatable.Mul(ZakatRate)
}

// CheckInvariants verifies the derived-total invariants:
// zakatable equals the sum of zakatable items, zakatDue equals
// zakatable x 2.5%, and total equals the sum of item values.
func (b *Breakdown) CheckInvariants() error {
	tolerance := decimal.NewFromFloat(0.01)

	var itemTotal, itemZakatable decimal.Decimal
	for key, item := range b.Items {
		itemTotal = itemTotal.Add(item.Value)
		if item.IsZakatable {
			itemZakatable = itemZakatable.Add(item.Zakatable)
		} else if !item.Zakatable.IsZero() {
			return fmt.Errorf("exempt item %q carries a zakatable amount", key)
		}
	}

	if b.Total.Sub(itemTotal).Abs().GreaterThan(tolerance) {
		return fmt.Errorf("total %s does not match item sum %s", b.Total, itemTotal)
	}
	if b.Zakatable.Sub(itemZakatable).Abs().GreaterThan(tolerance) {
		return fmt.Errorf("zakatable %s does not match item sum %s", b.Zakatable, itemZakatable)
	}
	if b.ZakatDue.Sub(b.Zakatable.Mul(ZakatRate)).Abs().GreaterThan(tolerance) {
		return fmt.Errorf("zakat due %s is not 2.5%% of zakatable %s", b.ZakatDue, b.Zakatable)
	}
	return nil
}
