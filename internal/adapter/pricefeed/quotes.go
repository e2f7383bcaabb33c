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

type quoteResponse struct {
	Symbol      string  `json:"symbol"`
	Price       float64 `json:"price"`
	Currency    string  `json:"currency"`
	LastUpdated string  `json:"lastUpdated"`
}

// QuoteClient fetches stock or crypto market quotes. One instance per asset
// class, pointed at that class's upstream path; both share the 5-minute
// quote TTL.
type QuoteClient struct {
	client    *resty.Client
	baseURL   string
	path      string
	validator *pricecache.Validator

	mu       sync.RWMutex
	lastGood map[string]*domain.PriceSnapshot
}

var _ domain.QuoteProvider = (*QuoteClient)(nil)

// NewStockClient creates a quote client for equities.
func NewStockClient(baseURL string, validator *pricecache.Validator) *QuoteClient {
	return newQuoteClient(baseURL, "/prices/stocks", validator)
}

// NewCryptoClient creates a quote client for cryptocurrencies.
func NewCryptoClient(baseURL string, validator *pricecache.Validator) *QuoteClient {
	return newQuoteClient(baseURL, "/prices/crypto", validator)
}

func newQuoteClient(baseURL, path string, validator *pricecache.Validator) *QuoteClient {
	client := resty.New()
	client.SetTimeout(fetchTimeout)

	return &QuoteClient{
		client:    client,
		baseURL:   baseURL,
		path:      path,
		validator: validator,
		lastGood:  make(map[string]*domain.PriceSnapshot),
	}
}

// Quote returns the current price for symbol in the requested currency,
// falling back to the last accepted quote when the upstream fails or
// returns garbage.
func (c *QuoteClient) Quote(ctx context.Context, symbol, currency string) (*domain.PriceSnapshot, error) {
	key := symbol + "/" + currency

	sources := []Source[*domain.PriceSnapshot]{
		{Name: "quote-api", Fetch: func(ctx context.Context) (*domain.PriceSnapshot, error) {
			return c.fetchUpstream(ctx, symbol, currency)
		}},
		{Name: "last-good", Fetch: func(ctx context.Context) (*domain.PriceSnapshot, error) {
			return c.lastGoodOrError(key)
		}},
	}

	result, err := FetchWithFallback(ctx, sources)
	if err != nil {
		return nil, err
	}
	snapshot := result.Value
	snapshot.Source = result.Source
	snapshot.IsCache = snapshot.IsCache || result.Degraded

	if result.Source == "quote-api" {
		c.remember(key, snapshot)
	}
	return snapshot, nil
}

func (c *QuoteClient) fetchUpstream(ctx context.Context, symbol, currency string) (*domain.PriceSnapshot, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("symbol", symbol).
		SetQueryParam("currency", currency).
		Get(c.baseURL + c.path)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("quote endpoint returned HTTP %d", resp.StatusCode())
	}

	var body quoteResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("failed to decode quote response: %w", err)
	}

	timestamp, err := time.Parse(time.RFC3339, body.LastUpdated)
	if err != nil {
		timestamp = time.Now()
	}

	snapshot := &domain.PriceSnapshot{
		Price:     decimal.NewFromFloat(body.Price),
		Currency:  body.Currency,
		Timestamp: timestamp,
	}

	opts := pricecache.Options{MaxAge: pricecache.TTLQuotes}
	if r := c.validator.ValidateSnapshot(snapshot, opts); !r.IsValid {
		return nil, fmt.Errorf("quote for %s rejected: %s", symbol, r.Reason)
	}
	return snapshot, nil
}

func (c *QuoteClient) lastGoodOrError(key string) (*domain.PriceSnapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snapshot, ok := c.lastGood[key]
	if !ok {
		return nil, fmt.Errorf("no cached quote for %s", key)
	}
	copied := *snapshot
	copied.IsCache = true
	return &copied, nil
}

func (c *QuoteClient) remember(key string, snapshot *domain.PriceSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	copied := *snapshot
	c.lastGood[key] = &copied
}
