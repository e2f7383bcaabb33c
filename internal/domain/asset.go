package domain

import (
	"github.com/shopspring/decimal"
)

// AssetCategory identifies one of the asset classes the calculator tracks.
type AssetCategory string

const (
	CategoryCash           AssetCategory = "cash"
	CategoryPreciousMetals AssetCategory = "precious-metals"
	CategoryStocks         AssetCategory = "stocks"
	CategoryCrypto         AssetCategory = "crypto"
	CategoryRealEstate     AssetCategory = "real-estate"
	CategoryRetirement     AssetCategory = "retirement"
	CategoryDebt           AssetCategory = "debt-receivable"
)

// Categories lists every asset category in a stable order.
var Categories = []AssetCategory{
	CategoryCash,
	CategoryPreciousMetals,
	CategoryStocks,
	CategoryCrypto,
	CategoryRealEstate,
	CategoryRetirement,
	CategoryDebt,
}

// ValidCategory reports whether c names a known asset category.
func ValidCategory(c AssetCategory) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ForeignCashEntry is a cash holding denominated in a currency other than
// the calculator's base currency.
type ForeignCashEntry struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// CashRecord holds liquid cash positions expressed in the base currency,
// plus any foreign-currency entries that are converted at valuation time.
type CashRecord struct {
	OnHand         decimal.Decimal    `json:"cash_on_hand"`
	BankDeposits   decimal.Decimal    `json:"bank_deposits"`
	DigitalWallets decimal.Decimal    `json:"digital_wallets"`
	ForeignEntries []ForeignCashEntry `json:"foreign_entries"`
}

// MetalsRecord holds precious-metal weights in grams, split by wear state.
// "Regular" (daily-worn jewelry) is exempt; "occasional" and "investment"
// are zakatable.
type MetalsRecord struct {
	GoldRegular      decimal.Decimal `json:"gold_regular"`
	GoldOccasional   decimal.Decimal `json:"gold_occasional"`
	GoldInvestment   decimal.Decimal `json:"gold_investment"`
	SilverRegular    decimal.Decimal `json:"silver_regular"`
	SilverOccasional decimal.Decimal `json:"silver_occasional"`
	SilverInvestment decimal.Decimal `json:"silver_investment"`
}

// StockHolding is an actively traded position, zakatable at full market value.
type StockHolding struct {
	Symbol       string          `json:"symbol"`
	Quantity     decimal.Decimal `json:"quantity"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	Currency     string          `json:"currency"`
}

// PassiveValuationMethod selects how a passive/fund holding is valued for zakat.
type PassiveValuationMethod string

const (
	// MethodQuick applies a flat 30% of market value.
	MethodQuick PassiveValuationMethod = "QUICK"
	// MethodDetailed uses the holder's share of the company's liquid assets
	// (cash + receivables + inventory).
	MethodDetailed PassiveValuationMethod = "DETAILED"
)

// PassiveFund is a long-term/fund position valued by either the quick or the
// detailed (company financials) method, selected per holding.
type PassiveFund struct {
	Symbol             string                 `json:"symbol"`
	MarketValue        decimal.Decimal        `json:"market_value"`
	Currency           string                 `json:"currency"`
	Method             PassiveValuationMethod `json:"method"`
	SharesOwned        decimal.Decimal        `json:"shares_owned"`
	TotalShares        decimal.Decimal        `json:"total_shares"`
	CompanyCash        decimal.Decimal        `json:"company_cash"`
	CompanyReceivables decimal.Decimal        `json:"company_receivables"`
	CompanyInventory   decimal.Decimal        `json:"company_inventory"`
}

// StocksRecord holds equity positions.
type StocksRecord struct {
	ActiveHoldings []StockHolding `json:"active_holdings"`
	PassiveFunds   []PassiveFund  `json:"passive_funds"`
}

// CoinHolding is a cryptocurrency position, zakatable at full market value.
type CoinHolding struct {
	Symbol       string          `json:"symbol"`
	Quantity     decimal.Decimal `json:"quantity"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	Currency     string          `json:"currency"`
}

// CryptoRecord holds cryptocurrency positions.
type CryptoRecord struct {
	Holdings []CoinHolding `json:"holdings"`
}

// RealEstateRecord holds property values. The primary residence is exempt,
// a rental property is exempt on the asset but zakatable on net rental
// income, and property held for sale is zakatable at full market value.
type RealEstateRecord struct {
	PrimaryResidenceValue decimal.Decimal `json:"primary_residence_value"`
	RentalPropertyValue   decimal.Decimal `json:"rental_property_value"`
	RentalIncome          decimal.Decimal `json:"rental_income"`
	RentalExpenses        decimal.Decimal `json:"rental_expenses"`
	ForSaleValue          decimal.Decimal `json:"property_for_sale_value"`
}

// RetirementRecord holds retirement account balances. The accessible balance
// is fully zakatable; the locked balance is zakatable net of withdrawal
// penalty and tax, unless the holder defers it until access.
type RetirementRecord struct {
	AccessibleBalance     decimal.Decimal `json:"accessible_balance"`
	LockedBalance         decimal.Decimal `json:"locked_balance"`
	WithdrawalPenaltyRate decimal.Decimal `json:"withdrawal_penalty_rate"`
	WithdrawalTaxRate     decimal.Decimal `json:"withdrawal_tax_rate"`
	DeferLocked           bool            `json:"defer_locked"`
}

// DebtRecord holds receivables and deductible liabilities. Receivables
// expected to be collected are zakatable. Liabilities due within the next
// twelve lunar months are deductible: short-term debt in full, long-term
// debt up to twelve monthly installments.
type DebtRecord struct {
	Receivables                decimal.Decimal `json:"receivables"`
	ShortTermLiabilities       decimal.Decimal `json:"short_term_liabilities"`
	LongTermMonthlyInstallment decimal.Decimal `json:"long_term_monthly_installment"`
}
