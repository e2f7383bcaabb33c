package domain

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// ValidCurrency reports whether code is a known ISO 4217 currency code.
func ValidCurrency(code string) bool {
	return money.GetCurrency(code) != nil
}

// RoundToMinorUnits rounds an amount to the currency's minor-unit precision
// (two decimal places for most currencies, zero for e.g. JPY). Unknown
// currencies round to two places.
func RoundToMinorUnits(amount decimal.Decimal, code string) decimal.Decimal {
	places := int32(2)
	if c := money.GetCurrency(code); c != nil {
		places = int32(c.Fraction)
	}
	return amount.Round(places)
}
