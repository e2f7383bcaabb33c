package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/mrabdussalam/zakat-calculator-sub003/internal/domain"
	"github.com/mrabdussalam/zakat-calculator-sub003/internal/usecase/pricecache"
)

// fetchTimeout bounds every upstream call so the UI never blocks on a dead
// feed.
const fetchTimeout = 8 * time.Second

// Static per-gram USD prices, the last resort of the metals fallback chain.
var (
	staticGoldPerGramUSD   = decimal.NewFromFloat(75.0)
	staticSilverPerGramUSD = decimal.NewFromFloat(0.95)
)

type metalsResponse struct {
	Gold        float64 `json:"gold"`
	Silver      float64 `json:"silver"`
	Currency    string  `json:"currency"`
	IsCache     bool    `json:"isCache"`
	LastUpdated string  `json:"lastUpdated"`
}

// MetalsClient fetches gold/silver spot prices per gram. Responses are
// screened by the cache validator before acceptance; a rejected or failed
// fetch falls back to the last good pair, then to static constants.
type MetalsClient struct {
	client    *resty.Client
	baseURL   string
	rates     domain.RateProvider
	validator *pricecache.Validator

	mu       sync.RWMutex
	lastGood map[string]*domain.MetalPrices
}

var _ domain.MetalPriceProvider = (*MetalsClient)(nil)

// NewMetalsClient creates the client. rates is used only by the static
// fallback to express the USD constants in the requested currency.
func NewMetalsClient(baseURL string, rates domain.RateProvider, validator *pricecache.Validator) *MetalsClient {
	client := resty.New()
	client.SetTimeout(fetchTimeout)

	return &MetalsClient{
		client:    client,
		baseURL:   baseURL,
		rates:     rates,
		validator: validator,
		lastGood:  make(map[string]*domain.MetalPrices),
	}
}

// MetalPrices returns the current gold/silver pair in the requested
// currency, per gram. refresh bypasses the client-side cache.
func (c *MetalsClient) MetalPrices(ctx context.Context, currency string, refresh bool) (*domain.MetalPrices, error) {
	if !refresh {
		if cached := c.cached(currency); cached != nil {
			return cached, nil
		}
	}

	sources := []Source[*domain.MetalPrices]{
		{Name: "metals-api", Fetch: func(ctx context.Context) (*domain.MetalPrices, error) {
			return c.fetchUpstream(ctx, currency)
		}},
		{Name: "last-good", Fetch: func(ctx context.Context) (*domain.MetalPrices, error) {
			return c.lastGoodOrError(currency)
		}},
		{Name: "static-default", Fetch: func(ctx context.Context) (*domain.MetalPrices, error) {
			return c.staticDefault(ctx, currency)
		}},
	}

	result, err := FetchWithFallback(ctx, sources)
	if err != nil {
		return nil, err
	}
	prices := result.Value
	prices.Source = result.Source
	prices.IsCache = prices.IsCache || result.Degraded

	if result.Source == "metals-api" {
		c.remember(currency, prices)
	}
	return prices, nil
}

func (c *MetalsClient) fetchUpstream(ctx context.Context, currency string) (*domain.MetalPrices, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("currency", currency).
		Get(c.baseURL + "/prices/metals")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("metals endpoint returned HTTP %d", resp.StatusCode())
	}

	var body metalsResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("failed to decode metals response: %w", err)
	}

	timestamp, err := time.Parse(time.RFC3339, body.LastUpdated)
	if err != nil {
		timestamp = time.Now()
	}

	prices := &domain.MetalPrices{
		GoldPerGram:   decimal.NewFromFloat(body.Gold),
		SilverPerGram: decimal.NewFromFloat(body.Silver),
		Currency:      body.Currency,
		Timestamp:     timestamp,
		IsCache:       body.IsCache,
	}

	opts := pricecache.Options{MaxAge: pricecache.TTLMetals, Strict: true}
	if r := c.validator.ValidateMetals(prices, opts); !r.IsValid {
		return nil, fmt.Errorf("metals snapshot rejected: %s", r.Reason)
	}
	return prices, nil
}

func (c *MetalsClient) cached(currency string) *domain.MetalPrices {
	c.mu.RLock()
	defer c.mu.RUnlock()
	prices, ok := c.lastGood[currency]
	if !ok || time.Since(prices.Timestamp) > pricecache.TTLMetals {
		return nil
	}
	copied := *prices
	copied.IsCache = true
	return &copied
}

func (c *MetalsClient) lastGoodOrError(currency string) (*domain.MetalPrices, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	prices, ok := c.lastGood[currency]
	if !ok {
		return nil, fmt.Errorf("no cached metal prices for %s", currency)
	}
	copied := *prices
	copied.IsCache = true
	return &copied, nil
}

func (c *MetalsClient) remember(currency string, prices *domain.MetalPrices) {
	c.mu.Lock()
	defer c.mu.Unlock()
	copied := *prices
	c.lastGood[currency] = &copied
}

// staticDefault prices the hardcoded USD constants in the requested
// currency. If even the rate lookup fails, the USD constants are returned
// as-is: a wrong-currency floor still beats a zero floor.
func (c *MetalsClient) staticDefault(ctx context.Context, currency string) (*domain.MetalPrices, error) {
	gold, silver := staticGoldPerGramUSD, staticSilverPerGramUSD
	quoted := currency
	if currency != "USD" {
		rate, err := c.rates.Rate(ctx, "USD", currency)
		if err != nil {
			quoted = "USD"
		} else {
			gold = gold.Mul(rate)
			silver = silver.Mul(rate)
		}
	}
	return &domain.MetalPrices{
		GoldPerGram:   gold,
		SilverPerGram: silver,
		Currency:      quoted,
		Timestamp:     time.Now(),
		IsCache:       true,
	}, nil
}
