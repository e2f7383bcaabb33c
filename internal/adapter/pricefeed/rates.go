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

type ratesResponse struct {
	Result   string             `json:"result"`
	BaseCode string             `json:"base_code"`
	Rates    map[string]float64 `json:"rates"`
}

type rateTable struct {
	rates     map[string]decimal.Decimal
	fetchedAt time.Time
}

// RatesClient fetches exchange-rate tables and serves individual pair
// lookups from a per-base cache. A pair missing from the table is a
// ErrConversionRateUnavailable, not a fetch failure.
type RatesClient struct {
	client  *resty.Client
	baseURL string

	mu     sync.RWMutex
	tables map[string]rateTable
}

var _ domain.RateProvider = (*RatesClient)(nil)

// NewRatesClient creates the client.
func NewRatesClient(baseURL string) *RatesClient {
	client := resty.New()
	client.SetTimeout(fetchTimeout)

	return &RatesClient{
		client:  client,
		baseURL: baseURL,
		tables:  make(map[string]rateTable),
	}
}

// Rate returns the multiplier converting one unit of from into to.
func (c *RatesClient) Rate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	if from == to {
		return decimal.NewFromInt(1), nil
	}

	table, err := c.table(ctx, from)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("rate table for %s: %w", from, err)
	}
	rate, ok := table.rates[to]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("no %s->%s rate in table: %w", from, to, domain.ErrConversionRateUnavailable)
	}
	if rate.LessThanOrEqual(decimal.Zero) {
		return decimal.Decimal{}, fmt.Errorf("non-positive %s->%s rate %s: %w", from, to, rate, domain.ErrConversionRateUnavailable)
	}
	return rate, nil
}

func (c *RatesClient) table(ctx context.Context, base string) (rateTable, error) {
	c.mu.RLock()
	cached, ok := c.tables[base]
	c.mu.RUnlock()
	if ok && time.Since(cached.fetchedAt) <= pricecache.TTLExchangeRate {
		return cached, nil
	}

	resp, err := c.client.R().
		SetContext(ctx).
		Get(c.baseURL + "/" + base)
	if err != nil {
		if ok {
			// Stale table beats no table for a conversion warning path.
			return cached, nil
		}
		return rateTable{}, fmt.Errorf("%w: %w", domain.ErrConversionRateUnavailable, err)
	}
	if resp.StatusCode() != 200 {
		if ok {
			return cached, nil
		}
		return rateTable{}, fmt.Errorf("rates endpoint returned HTTP %d: %w", resp.StatusCode(), domain.ErrConversionRateUnavailable)
	}

	var body ratesResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return rateTable{}, fmt.Errorf("failed to decode rates response: %w", err)
	}
	if body.Result != "success" || len(body.Rates) == 0 {
		return rateTable{}, fmt.Errorf("rates response unusable (result=%q): %w", body.Result, domain.ErrConversionRateUnavailable)
	}

	table := rateTable{rates: make(map[string]decimal.Decimal, len(body.Rates)), fetchedAt: time.Now()}
	for code, rate := range body.Rates {
		table.rates[code] = decimal.NewFromFloat(rate)
	}

	c.mu.Lock()
	c.tables[base] = table
	c.mu.Unlock()
	return table, nil
}
