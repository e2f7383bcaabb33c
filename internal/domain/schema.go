package domain

import (
	"github.com/shopspring/decimal"
)

// FieldSpec declares one numeric sub-field of a category record. The store
// and the conversion coordinator both iterate over this schema instead of
// reflecting over untyped maps: Monetary marks the fields that must be
// rewritten on a base-currency change (weights, quantities, and rates are
// unit-free and never converted).
type FieldSpec struct {
	Name     string
	Monetary bool
	ref      func(*CalculatorState) *decimal.Decimal
}

// Get reads the field's current value from the state.
func (f FieldSpec) Get(s *CalculatorState) decimal.Decimal {
	return *f.ref(s)
}

// Set writes the field's value into the state.
func (f FieldSpec) Set(s *CalculatorState, v decimal.Decimal) {
	*f.ref(s) = v
}

var categorySchema = map[AssetCategory][]FieldSpec{
	CategoryCash: {
		{Name: "cash_on_hand", Monetary: true, ref: func(s *CalculatorState) *decimal.Decimal { return &s.Cash.OnHand }},
		{Name: "bank_deposits", Monetary: true, ref: func(s *CalculatorState) *decimal.Decimal { return &s.Cash.BankDeposits }},
		{Name: "digital_wallets", Monetary: true, ref: func(s *CalculatorState) *decimal.Decimal { return &s.Cash.DigitalWallets }},
	},
	CategoryPreciousMetals: {
		// Weights in grams, never converted.
		{Name: "gold_regular", ref: func(s *CalculatorState) *decimal.Decimal { return &s.Metals.GoldRegular }},
		{Name: "gold_occasional", ref: func(s *CalculatorState) *decimal.Decimal { return &s.Metals.GoldOccasional }},
		{Name: "gold_investment", ref: func(s *CalculatorState) *decimal.Decimal { return &s.Metals.GoldInvestment }},
		{Name: "silver_regular", ref: func(s *CalculatorState) *decimal.Decimal { return &s.Metals.SilverRegular }},
		{Name: "silver_occasional", ref: func(s *CalculatorState) *decimal.Decimal { return &s.Metals.SilverOccasional }},
		{Name: "silver_investment", ref: func(s *CalculatorState) *decimal.Decimal { return &s.Metals.SilverInvestment }},
	},
	// Stocks and crypto carry only structured sub-entries; their scalar
	// schema is empty.
	CategoryStocks: {},
	CategoryCrypto: {},
	CategoryRealEstate: {
		{Name: "primary_residence_value", Monetary: true, ref: func(s *CalculatorState) *decimal.Decimal { return &s.RealEstate.PrimaryResidenceValue }},
		{Name: "rental_property_value", Monetary: true, ref: func(s *CalculatorState) *decimal.Decimal { return &s.RealEstate.RentalPropertyValue }},
		{Name: "rental_income", Monetary: true, ref: func(s *CalculatorState) *decimal.Decimal { return &s.RealEstate.RentalIncome }},
		{Name: "rental_expenses", Monetary: true, ref: func(s *CalculatorState) *decimal.Decimal { return &s.RealEstate.RentalExpenses }},
		{Name: "property_for_sale_value", Monetary: true, ref: func(s *CalculatorState) *decimal.Decimal { return &s.RealEstate.ForSaleValue }},
	},
	CategoryRetirement: {
		{Name: "accessible_balance", Monetary: true, ref: func(s *CalculatorState) *decimal.Decimal { return &s.Retirement.AccessibleBalance }},
		{Name: "locked_balance", Monetary: true, ref: func(s *CalculatorState) *decimal.Decimal { return &s.Retirement.LockedBalance }},
		// Rates are fractions, not amounts.
		{Name: "withdrawal_penalty_rate", ref: func(s *CalculatorState) *decimal.Decimal { return &s.Retirement.WithdrawalPenaltyRate }},
		{Name: "withdrawal_tax_rate", ref: func(s *CalculatorState) *decimal.Decimal { return &s.Retirement.WithdrawalTaxRate }},
	},
	CategoryDebt: {
		{Name: "receivables", Monetary: true, ref: func(s *CalculatorState) *decimal.Decimal { return &s.Debt.Receivables }},
		{Name: "short_term_liabilities", Monetary: true, ref: func(s *CalculatorState) *decimal.Decimal { return &s.Debt.ShortTermLiabilities }},
		{Name: "long_term_monthly_installment", Monetary: true, ref: func(s *CalculatorState) *decimal.Decimal { return &s.Debt.LongTermMonthlyInstallment }},
	},
}

// Schema returns the declared field list for a category.
func Schema(category AssetCategory) ([]FieldSpec, bool) {
	fields, ok := categorySchema[category]
	return fields, ok
}

// Field looks up a single field by category and name.
func Field(category AssetCategory, name string) (FieldSpec, bool) {
	for _, f := range categorySchema[category] {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// MonetaryFields returns every monetary field across all categories, in the
// stable category order. The conversion coordinator iterates over this list.
func MonetaryFields() []FieldSpec {
	var fields []FieldSpec
	for _, c := range Categories {
		for _, f := range categorySchema[c] {
			if f.Monetary {
				fields = append(fields, f)
			}
		}
	}
	return fields
}
