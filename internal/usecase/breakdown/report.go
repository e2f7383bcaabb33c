package breakdown

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/mrabdussalam/zakat-calculator-sub003/internal/domain"
)

// Report is the combined view across every category. Zakatable is gated by
// each category's hawl flag and reduced by the liability deduction, floored
// at zero; ZakatDue is always 2.5% of the final Zakatable.
type Report struct {
	Currency   string                                 `json:"currency"`
	Total      decimal.Decimal                        `json:"total"`
	Zakatable  decimal.Decimal                        `json:"zakatable"`
	Deductions decimal.Decimal                        `json:"deductions"`
	ZakatDue   decimal.Decimal                        `json:"zakat_due"`
	Categories map[domain.AssetCategory]domain.Breakdown `json:"categories"`
	Warnings   []string                               `json:"warnings,omitempty"`
}

// Combined runs every category calculator against the state and folds the
// results. A category whose hawl flag is false still contributes to Total,
// but its zakatable amount does not count toward the amount due.
func (c *Calculator) Combined(ctx context.Context, state *domain.CalculatorState, metal MetalPrices) Report {
	report := Report{
		Currency:   state.BaseCurrency,
		Categories: make(map[domain.AssetCategory]domain.Breakdown, len(domain.Categories)),
	}
	base := state.BaseCurrency

	cash, warns := c.Cash(ctx, state.Cash, base)
	report.Warnings = append(report.Warnings, warns...)

	metals := c.Metals(state.Metals, metal)

	stocks, warns := c.Stocks(ctx, state.Stocks, base)
	report.Warnings = append(report.Warnings, warns...)

	crypto, warns := c.Crypto(ctx, state.Crypto, base)
	report.Warnings = append(report.Warnings, warns...)

	realEstate := c.RealEstate(state.RealEstate)
	retirement := c.Retirement(state.Retirement)
	debt, deductible := c.Debt(state.Debt)

	perCategory := map[domain.AssetCategory]domain.Breakdown{
		domain.CategoryCash:           cash,
		domain.CategoryPreciousMetals: metals,
		domain.CategoryStocks:         stocks,
		domain.CategoryCrypto:         crypto,
		domain.CategoryRealEstate:     realEstate,
		domain.CategoryRetirement:     retirement,
		domain.CategoryDebt:           debt,
	}

	var eligible decimal.Decimal
	for _, category := range domain.Categories {
		b := perCategory[category]
		report.Categories[category] = b
		report.Total = report.Total.Add(b.Total)
		if state.Hawl[category] {
			eligible = eligible.Add(b.Zakatable)
		}
	}

	report.Deductions = deductible
	zakatable := eligible.Sub(deductible)
	if zakatable.IsNegative() {
		zakatable = decimal.Zero
	}
	report.Zakatable = zakatable
	report.ZakatDue = zakatable.Mul(domain.ZakatRate)
	return report
}
