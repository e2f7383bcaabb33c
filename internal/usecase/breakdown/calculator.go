package breakdown

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mrabdussalam/zakat-calculator-sub003/internal/domain"
)

// Flat quick-method rate for passive/fund stock holdings: 30% of market
// value approximates the company's liquid (zakatable) asset share.
var quickMethodRate = decimal.NewFromFloat(0.30)

// MetalPrices carries the per-gram spot prices, already expressed in the
// calculator's base currency.
type MetalPrices struct {
	GoldPerGram   decimal.Decimal
	SilverPerGram decimal.Decimal
}

// Calculator derives zakatable/exempt breakdowns from category records.
// Every method is a pure read: the calculator never mutates the store.
// Foreign-denominated values are converted from their own currency tag
// through the rate provider; a failed lookup keeps the raw value and
// surfaces a warning instead of dropping the holding.
type Calculator struct {
	rates domain.RateProvider
}

// NewCalculator creates a Calculator converting through the given provider.
func NewCalculator(rates domain.RateProvider) *Calculator {
	return &Calculator{rates: rates}
}

// Cash values liquid cash. Every sub-field is zakatable; foreign entries
// convert to the base currency before summing.
func (c *Calculator) Cash(ctx context.Context, rec domain.CashRecord, base string) (domain.Breakdown, []string) {
	b := domain.NewBreakdown()
	var warnings []string

	b.AddItem("cash_on_hand", rec.OnHand, rec.OnHand, true)
	b.AddItem("bank_deposits", rec.BankDeposits, rec.BankDeposits, true)
	b.AddItem("digital_wallets", rec.DigitalWallets, rec.DigitalWallets, true)

	for i, entry := range rec.ForeignEntries {
		key := fmt.Sprintf("foreign:%d:%s", i, entry.Currency)
		value, warn := c.toBase(ctx, entry.Amount, entry.Currency, base, key)
		if warn != "" {
			warnings = append(warnings, warn)
		}
		b.AddItem(key, value, value, true)
	}
	return b, warnings
}

// Metals values precious-metal weights at the current per-gram prices.
// Daily-worn ("regular") jewelry is exempt; occasional and investment
// holdings are zakatable.
func (c *Calculator) Metals(rec domain.MetalsRecord, prices MetalPrices) domain.Breakdown {
	b := domain.NewBreakdown()

	addWeight := func(key string, grams, perGram decimal.Decimal, zakatable bool) {
		value := grams.Mul(perGram)
		b.AddItem(key, value, value, zakatable)
	}

	addWeight("gold_regular", rec.GoldRegular, prices.GoldPerGram, false)
	addWeight("gold_occasional", rec.GoldOccasional, prices.GoldPerGram, true)
	addWeight("gold_investment", rec.GoldInvestment, prices.GoldPerGram, true)
	addWeight("silver_regular", rec.SilverRegular, prices.SilverPerGram, false)
	addWeight("silver_occasional", rec.SilverOccasional, prices.SilverPerGram, true)
	addWeight("silver_investment", rec.SilverInvestment, prices.SilverPerGram, true)
	return b
}

// Stocks values equity positions. Active-trading holdings are fully
// zakatable at market value. Passive/fund holdings use either the flat 30%
// quick method or the detailed company-financials method, per holding.
func (c *Calculator) Stocks(ctx context.Context, rec domain.StocksRecord, base string) (domain.Breakdown, []string) {
	b := domain.NewBreakdown()
	var warnings []string

	for i, h := range rec.ActiveHoldings {
		key := fmt.Sprintf("active:%d:%s", i, h.Symbol)
		value, warn := c.toBase(ctx, h.Quantity.Mul(h.CurrentPrice), h.Currency, base, key)
		if warn != "" {
			warnings = append(warnings, warn)
		}
		b.AddItem(key, value, value, true)
	}

	for i, f := range rec.PassiveFunds {
		key := fmt.Sprintf("passive:%d:%s", i, f.Symbol)
		value, warn := c.toBase(ctx, f.MarketValue, f.Currency, base, key)
		if warn != "" {
			warnings = append(warnings, warn)
		}

		var zakatable decimal.Decimal
		switch f.Method {
		case domain.MethodDetailed:
			if f.TotalShares.IsZero() {
				warnings = append(warnings, fmt.Sprintf("%s: detailed method requires total shares, using quick method", key))
				zakatable = value.Mul(quickMethodRate)
				break
			}
			share := f.SharesOwned.Div(f.TotalShares)
			liquid := f.CompanyCash.Add(f.CompanyReceivables).Add(f.CompanyInventory)
			zakatable, warn = c.toBase(ctx, share.Mul(liquid), f.Currency, base, key)
			if warn != "" {
				warnings = append(warnings, warn)
			}
		default:
			zakatable = value.Mul(quickMethodRate)
		}
		b.AddItem(key, value, zakatable, true)
	}
	return b, warnings
}

// Crypto values coin holdings at market price. Fully zakatable, no
// exemption tier.
func (c *Calculator) Crypto(ctx context.Context, rec domain.CryptoRecord, base string) (domain.Breakdown, []string) {
	b := domain.NewBreakdown()
	var warnings []string

	for i, h := range rec.Holdings {
		key := fmt.Sprintf("coin:%d:%s", i, h.Symbol)
		value, warn := c.toBase(ctx, h.Quantity.Mul(h.CurrentPrice), h.Currency, base, key)
		if warn != "" {
			warnings = append(warnings, warn)
		}
		b.AddItem(key, value, value, true)
	}
	return b, warnings
}

// RealEstate values property. The primary residence is fully exempt. A
// rental property is exempt on the asset itself, but its net rental income
// (income minus directly attributable expenses) is zakatable. Property held
// for sale is zakatable at full market value.
func (c *Calculator) RealEstate(rec domain.RealEstateRecord) domain.Breakdown {
	b := domain.NewBreakdown()

	b.AddItem("primary_residence", rec.PrimaryResidenceValue, decimal.Zero, false)
	b.AddItem("rental_property", rec.RentalPropertyValue, decimal.Zero, false)

	netIncome := rec.RentalIncome.Sub(rec.RentalExpenses)
	if netIncome.IsNegative() {
		netIncome = decimal.Zero
	}
	b.AddItem("rental_net_income", netIncome, netIncome, true)
	b.AddItem("property_for_sale", rec.ForSaleValue, rec.ForSaleValue, true)
	return b
}

// Retirement values retirement accounts. The accessible balance is fully
// zakatable. The locked balance is zakatable net of early-withdrawal
// penalty and tax, unless the holder defers it until it becomes accessible.
func (c *Calculator) Retirement(rec domain.RetirementRecord) domain.Breakdown {
	b := domain.NewBreakdown()

	b.AddItem("accessible_balance", rec.AccessibleBalance, rec.AccessibleBalance, true)

	if rec.DeferLocked {
		b.AddItem("locked_balance", rec.LockedBalance, decimal.Zero, false)
		return b
	}
	netRate := decimal.NewFromInt(1).Sub(rec.WithdrawalPenaltyRate).Sub(rec.WithdrawalTaxRate)
	if netRate.IsNegative() {
		netRate = decimal.Zero
	}
	net := rec.LockedBalance.Mul(netRate)
	b.AddItem("locked_balance", rec.LockedBalance, net, true)
	return b
}

// Debt values receivables ("good debt" expected to be collected, fully
// zakatable) and computes the liability deduction: short-term debt in full
// plus up to twelve monthly installments of long-term debt. The deduction
// applies at the combined level, not inside this breakdown.
func (c *Calculator) Debt(rec domain.DebtRecord) (domain.Breakdown, decimal.Decimal) {
	b := domain.NewBreakdown()
	b.AddItem("receivables", rec.Receivables, rec.Receivables, true)

	deductible := rec.ShortTermLiabilities.
		Add(rec.LongTermMonthlyInstallment.Mul(decimal.NewFromInt(12)))
	return b, deductible
}

// toBase converts an amount from its own currency tag into the base
// currency. On a failed lookup the raw amount is kept and a warning is
// returned; partial data beats a hard failure.
func (c *Calculator) toBase(ctx context.Context, amount decimal.Decimal, currency, base, key string) (decimal.Decimal, string) {
	if currency == "" || currency == base || amount.IsZero() {
		return amount, ""
	}
	rate, err := c.rates.Rate(ctx, currency, base)
	if err != nil {
		return amount, fmt.Sprintf("%s: rate %s->%s unavailable, value left in %s", key, currency, base, currency)
	}
	return domain.RoundToMinorUnits(amount.Mul(rate), base), ""
}
