package domain

// StateVersion is the current persisted-state schema version. Loading an
// older blob triggers a backfill of the fields that version lacked.
const StateVersion = 3

// DefaultBaseCurrency is used when no persisted state exists yet.
const DefaultBaseCurrency = "USD"

// CalculatorState is the single keyed blob the persistence collaborator
// stores: per-category records, hawl flags, the last accepted price
// snapshot, the last nisab threshold, and the current base currency.
// The store is its sole owner; the conversion coordinator is the only other
// writer permitted to rewrite its monetary fields.
type CalculatorState struct {
	Version      int    `json:"version"`
	BaseCurrency string `json:"base_currency"`

	Cash       CashRecord       `json:"cash"`
	Metals     MetalsRecord     `json:"precious_metals"`
	Stocks     StocksRecord     `json:"stocks"`
	Crypto     CryptoRecord     `json:"crypto"`
	RealEstate RealEstateRecord `json:"real_estate"`
	Retirement RetirementRecord `json:"retirement"`
	Debt       DebtRecord       `json:"debt_receivable"`

	Hawl map[AssetCategory]bool `json:"hawl"`

	// ResetEpochs increments on every explicit category reset, so a reset
	// is distinguishable from genuine zero-valued input.
	ResetEpochs map[AssetCategory]int64 `json:"reset_epochs"`

	LastMetalPrices *MetalPrices     `json:"last_metal_prices,omitempty"`
	LastNisab       *NisabThreshold  `json:"last_nisab,omitempty"`
	Conversions     []ConversionRecord `json:"conversions,omitempty"`
}

// NewCalculatorState returns a freshly initialized state at the current
// schema version. Hawl defaults to true for every category.
func NewCalculatorState() *CalculatorState {
	s := &CalculatorState{
		Version:      StateVersion,
		BaseCurrency: DefaultBaseCurrency,
		Hawl:         make(map[AssetCategory]bool, len(Categories)),
		ResetEpochs:  make(map[AssetCategory]int64, len(Categories)),
	}
	for _, c := range Categories {
		s.Hawl[c] = true
		s.ResetEpochs[c] = 0
	}
	s.normalizeShapes()
	return s
}

// Migrate backfills fields that older schema versions lacked and bumps the
// version. It is safe to call on an up-to-date state.
func (s *CalculatorState) Migrate() {
	if s.BaseCurrency == "" {
		s.BaseCurrency = DefaultBaseCurrency
	}
	if s.Hawl == nil {
		s.Hawl = make(map[AssetCategory]bool, len(Categories))
	}
	if s.ResetEpochs == nil {
		s.ResetEpochs = make(map[AssetCategory]int64, len(Categories))
	}
	for _, c := range Categories {
		if _, ok := s.Hawl[c]; !ok {
			s.Hawl[c] = true
		}
		if _, ok := s.ResetEpochs[c]; !ok {
			s.ResetEpochs[c] = 0
		}
	}
	s.normalizeShapes()
	s.Version = StateVersion
}

// normalizeShapes keeps structural sub-entries present as empty slices, not
// nil, so a reset or migration never changes the blob's shape.
func (s *CalculatorState) normalizeShapes() {
	if s.Cash.ForeignEntries == nil {
		s.Cash.ForeignEntries = []ForeignCashEntry{}
	}
	if s.Stocks.ActiveHoldings == nil {
		s.Stocks.ActiveHoldings = []StockHolding{}
	}
	if s.Stocks.PassiveFunds == nil {
		s.Stocks.PassiveFunds = []PassiveFund{}
	}
	if s.Crypto.Holdings == nil {
		s.Crypto.Holdings = []CoinHolding{}
	}
	if s.Conversions == nil {
		s.Conversions = []ConversionRecord{}
	}
}

// Clone returns a deep copy. Readers get clones so the store remains the
// single mutable source of truth.
func (s *CalculatorState) Clone() *CalculatorState {
	copied := *s

	copied.Cash.ForeignEntries = append([]ForeignCashEntry{}, s.Cash.ForeignEntries...)
	copied.Stocks.ActiveHoldings = append([]StockHolding{}, s.Stocks.ActiveHoldings...)
	copied.Stocks.PassiveFunds = append([]PassiveFund{}, s.Stocks.PassiveFunds...)
	copied.Crypto.Holdings = append([]CoinHolding{}, s.Crypto.Holdings...)
	copied.Conversions = append([]ConversionRecord{}, s.Conversions...)

	copied.Hawl = make(map[AssetCategory]bool, len(s.Hawl))
	for k, v := range s.Hawl {
		copied.Hawl[k] = v
	}
	copied.ResetEpochs = make(map[AssetCategory]int64, len(s.ResetEpochs))
	for k, v := range s.ResetEpochs {
		copied.ResetEpochs[k] = v
	}

	if s.LastMetalPrices != nil {
		m := *s.LastMetalPrices
		copied.LastMetalPrices = &m
	}
	if s.LastNisab != nil {
		n := *s.LastNisab
		copied.LastNisab = &n
	}
	return &copied
}

// LastConversion returns the most recent conversion record, or nil.
func (s *CalculatorState) LastConversion() *ConversionRecord {
	if len(s.Conversions) == 0 {
		return nil
	}
	return &s.Conversions[len(s.Conversions)-1]
}
