package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrabdussalam/zakat-calculator-sub003/internal/domain"
	"github.com/mrabdussalam/zakat-calculator-sub003/internal/usecase/assetstore"
	"github.com/mrabdussalam/zakat-calculator-sub003/internal/usecase/breakdown"
	"github.com/mrabdussalam/zakat-calculator-sub003/internal/usecase/conversion"
	"github.com/mrabdussalam/zakat-calculator-sub003/internal/usecase/nisab"
	"github.com/mrabdussalam/zakat-calculator-sub003/internal/usecase/pricecache"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memoryRepo struct {
	mu    sync.Mutex
	state *domain.CalculatorState
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
	r.state = state.Clone()
	return nil
}

// stubMetals serves canned metal prices, or an error.
type stubMetals struct {
	prices *domain.MetalPrices
	err    error
}

func (s *stubMetals) MetalPrices(ctx context.Context, currency string, refresh bool) (*domain.MetalPrices, error) {
	if s.err != nil {
		return nil, s.err
	}
	copied := *s.prices
	copied.Currency = currency
	return &copied, nil
}

// stubQuotes serves one canned snapshot for every symbol.
type stubQuotes struct {
	snapshot *domain.PriceSnapshot
	err      error
}

func (s *stubQuotes) Quote(ctx context.Context, symbol, currency string) (*domain.PriceSnapshot, error) {
	if s.err != nil {
		return nil, s.err
	}
	copied := *s.snapshot
	return &copied, nil
}

type funcRates func(ctx context.Context, from, to string) (decimal.Decimal, error)

func (f funcRates) Rate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	return f(ctx, from, to)
}

func unitRates() funcRates {
	return func(ctx context.Context, from, to string) (decimal.Decimal, error) {
		return decimal.NewFromInt(1), nil
	}
}

func freshMetals() *domain.MetalPrices {
	return &domain.MetalPrices{
		GoldPerGram:   decimal.NewFromFloat(93.98),
		SilverPerGram: decimal.NewFromFloat(1.02),
		Currency:      "USD",
		Timestamp:     time.Now().Add(-time.Minute),
	}
}

type testEngine struct {
	router *gin.Engine
	store  *assetstore.Store
}

func newTestEngine(t *testing.T, metals domain.MetalPriceProvider) *testEngine {
	t.Helper()

	store := assetstore.New(&memoryRepo{})
	require.NoError(t, store.Hydrate(context.Background()))

	validator := pricecache.NewValidator()
	evaluator := nisab.NewEvaluator(validator)
	nisabSvc := nisab.NewService(evaluator, metals)
	calculator := breakdown.NewCalculator(unitRates())
	coordinator := conversion.NewCoordinator(store, unitRates(), nisabSvc, conversion.DefaultActionWindow)

	quotes := &stubQuotes{snapshot: &domain.PriceSnapshot{
		Price:     decimal.NewFromFloat(150.50),
		Currency:  "USD",
		Timestamp: time.Now(),
	}}

	router := gin.New()
	SetupRoutes(router.Group("/api"), store, calculator, nisabSvc, coordinator, metals, quotes, quotes)
	return &testEngine{router: router, store: store}
}

func (e *testEngine) do(method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func jsonDecode(w *httptest.ResponseRecorder, v any) error {
	return json.Unmarshal(w.Body.Bytes(), v)
}

type nisabResponse struct {
	NisabThreshold decimal.Decimal `json:"nisabThreshold"`
	Currency       string          `json:"currency"`
	Metadata       struct {
		UsedMetalType    string `json:"usedMetalType"`
		ConversionFailed bool   `json:"conversionFailed"`
		Source           string `json:"source"`
	} `json:"metadata"`
}

func TestGetNisab_LiveQuote(t *testing.T) {
	e := newTestEngine(t, &stubMetals{prices: freshMetals()})

	w := e.do(http.MethodGet, "/api/nisab", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp nisabResponse
	require.NoError(t, jsonDecode(w, &resp))
	assert.True(t, resp.NisabThreshold.Equal(decimal.NewFromFloat(606.9)),
		"silver binds at these prices, got %s", resp.NisabThreshold)
	assert.Equal(t, "USD", resp.Currency)
	assert.Equal(t, "silver", resp.Metadata.UsedMetalType)
	assert.Equal(t, "live", resp.Metadata.Source)
	assert.False(t, resp.Metadata.ConversionFailed)

	// The accepted threshold is cached in the persisted blob.
	require.NotNil(t, e.store.Snapshot().LastNisab)
}

func TestGetNisab_UpstreamFailureStillAnswers200(t *testing.T) {
	e := newTestEngine(t, &stubMetals{err: domain.ErrUpstreamUnavailable})

	w := e.do(http.MethodGet, "/api/nisab?currency=EUR", "")
	require.Equal(t, http.StatusOK, w.Code, "nisab must never fail outright")

	var resp nisabResponse
	require.NoError(t, jsonDecode(w, &resp))
	assert.Equal(t, "fallback", resp.Metadata.Source)
	assert.True(t, resp.NisabThreshold.GreaterThan(decimal.Zero))
	// Static fallback is priced in USD, not the requested EUR.
	assert.True(t, resp.Metadata.ConversionFailed)
	assert.Equal(t, "USD", resp.Currency)
}

func TestSetValue_RoundTrip(t *testing.T) {
	e := newTestEngine(t, &stubMetals{prices: freshMetals()})

	w := e.do(http.MethodPut, "/api/assets/cash/fields/cash_on_hand", `{"value": 600}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = e.do(http.MethodGet, "/api/assets/cash", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Record struct {
			OnHand decimal.Decimal `json:"cash_on_hand"`
		} `json:"record"`
		Hawl bool `json:"hawl"`
	}
	require.NoError(t, jsonDecode(w, &resp))
	assert.True(t, resp.Record.OnHand.Equal(decimal.NewFromInt(600)))
	assert.True(t, resp.Hawl)
}

func TestSetValue_Rejections(t *testing.T) {
	e := newTestEngine(t, &stubMetals{prices: freshMetals()})

	w := e.do(http.MethodPut, "/api/assets/cash/fields/cash_on_hand", `{"value": -5}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPut, "/api/assets/cash/fields/no_such_field", `{"value": 5}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPut, "/api/assets/cash/fields/cash_on_hand", `{"value": "not a number"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetCategory_UnknownIs404(t *testing.T) {
	e := newTestEngine(t, &stubMetals{prices: freshMetals()})

	w := e.do(http.MethodGet, "/api/assets/yachts", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResetCategory_BumpsEpoch(t *testing.T) {
	e := newTestEngine(t, &stubMetals{prices: freshMetals()})

	w := e.do(http.MethodPut, "/api/assets/cash/fields/cash_on_hand", `{"value": 600}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(http.MethodDelete, "/api/assets/cash", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		ResetEpoch int64 `json:"reset_epoch"`
	}
	require.NoError(t, jsonDecode(w, &resp))
	assert.Equal(t, int64(1), resp.ResetEpoch)

	value, err := e.store.Value(domain.CategoryCash, "cash_on_hand")
	require.NoError(t, err)
	assert.True(t, value.IsZero())
}

func TestSetHawl(t *testing.T) {
	e := newTestEngine(t, &stubMetals{prices: freshMetals()})

	w := e.do(http.MethodPut, "/api/hawl/cash", `{"satisfied": false}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, e.store.Hawl(domain.CategoryCash))

	// The flag is required, not defaulted.
	w = e.do(http.MethodPut, "/api/hawl/cash", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestForeignCashEntryEndpoints(t *testing.T) {
	e := newTestEngine(t, &stubMetals{prices: freshMetals()})

	w := e.do(http.MethodPost, "/api/assets/cash/foreign", `{"amount": "200", "currency": "EUR"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Len(t, e.store.Snapshot().Cash.ForeignEntries, 1)

	w = e.do(http.MethodDelete, "/api/assets/cash/foreign/7", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodDelete, "/api/assets/cash/foreign/0", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, e.store.Snapshot().Cash.ForeignEntries)
}

func TestQuoteEndpoint_RequiresSymbol(t *testing.T) {
	e := newTestEngine(t, &stubMetals{prices: freshMetals()})

	w := e.do(http.MethodGet, "/api/prices/stocks", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodGet, "/api/prices/stocks?symbol=AAPL", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Symbol string          `json:"symbol"`
		Price  decimal.Decimal `json:"price"`
	}
	require.NoError(t, jsonDecode(w, &resp))
	assert.Equal(t, "AAPL", resp.Symbol)
	assert.True(t, resp.Price.Equal(decimal.NewFromFloat(150.50)))
}

func TestGetBreakdown_EndToEnd(t *testing.T) {
	e := newTestEngine(t, &stubMetals{prices: freshMetals()})

	w := e.do(http.MethodPut, "/api/assets/cash/fields/cash_on_hand", `{"value": 600}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = e.do(http.MethodPut, "/api/assets/precious-metals/fields/gold_investment", `{"value": 90}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = e.do(http.MethodGet, "/api/breakdown", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Report struct {
			Total     decimal.Decimal `json:"total"`
			Zakatable decimal.Decimal `json:"zakatable"`
			ZakatDue  decimal.Decimal `json:"zakat_due"`
		} `json:"report"`
		MeetsNisab bool `json:"meetsNisab"`
		Degraded   struct {
			MetalPrices bool `json:"metalPrices"`
			Nisab       bool `json:"nisab"`
		} `json:"degraded"`
	}
	require.NoError(t, jsonDecode(w, &resp))

	// 600 cash + 90g gold at 93.98 = 9058.20, due 226.455, above nisab 606.90.
	assert.True(t, resp.Report.Total.Equal(decimal.NewFromFloat(9058.2)), "total was %s", resp.Report.Total)
	assert.True(t, resp.Report.ZakatDue.Equal(decimal.NewFromFloat(226.455)), "due was %s", resp.Report.ZakatDue)
	assert.True(t, resp.MeetsNisab)
	assert.False(t, resp.Degraded.MetalPrices)
	assert.False(t, resp.Degraded.Nisab)
}

func TestGetBreakdown_DegradedWhenMetalsUnavailable(t *testing.T) {
	e := newTestEngine(t, &stubMetals{err: domain.ErrUpstreamUnavailable})

	w := e.do(http.MethodGet, "/api/breakdown", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Degraded struct {
			MetalPrices bool `json:"metalPrices"`
			Nisab       bool `json:"nisab"`
		} `json:"degraded"`
	}
	require.NoError(t, jsonDecode(w, &resp))
	assert.True(t, resp.Degraded.MetalPrices)
	assert.True(t, resp.Degraded.Nisab)
}

func TestConvertCurrency_Validation(t *testing.T) {
	e := newTestEngine(t, &stubMetals{prices: freshMetals()})

	w := e.do(http.MethodPost, "/api/currency", `{"from": "USD"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPost, "/api/currency", `{"from": "USD", "to": "USD"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPost, "/api/currency", `{"from": "USD", "to": "EUR"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "EUR", e.store.BaseCurrency())
}
