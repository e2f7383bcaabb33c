package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrabdussalam/zakat-calculator-sub003/internal/domain"
)

// GetNisab returns the eligibility floor in the requested currency. It
// always answers 200: any upstream failure degrades to the last good
// threshold or the static default, tagged metadata.source=fallback, so the
// UI never blocks on nisab unavailability.
func (h *Handler) GetNisab(c *gin.Context) {
	currency := currencyParam(c, h.store)
	refresh := c.Query("refresh") == "true"

	threshold, degraded := h.nisabSvc.Current(c.Request.Context(), currency, refresh)
	if !degraded {
		// Cache the accepted threshold in the persisted blob; a save
		// failure degrades the response, it does not fail it.
		if err := h.store.SetLastNisab(c.Request.Context(), threshold); err != nil {
			degraded = true
		}
	}

	source := "live"
	if degraded {
		source = "fallback"
	}
	conversionFailed := degraded && threshold.Currency != currency

	c.JSON(http.StatusOK, gin.H{
		"nisabThreshold": threshold.Threshold(),
		"thresholds": gin.H{
			"gold":   threshold.GoldValue,
			"silver": threshold.SilverValue,
		},
		"currency":  threshold.Currency,
		"timestamp": threshold.Timestamp.Format(time.RFC3339),
		"metadata": gin.H{
			"calculatedThresholds": gin.H{
				"gold": gin.H{
					"price":     threshold.GoldValue.Div(domain.NisabGoldGrams),
					"weight":    domain.NisabGoldGrams,
					"threshold": threshold.GoldValue,
					"unit":      "gram",
				},
				"silver": gin.H{
					"price":     threshold.SilverValue.Div(domain.NisabSilverGrams),
					"weight":    domain.NisabSilverGrams,
					"threshold": threshold.SilverValue,
					"unit":      "gram",
				},
			},
			"usedMetalType":    threshold.BindingMetal,
			"conversionFailed": conversionFailed,
			"source":           source,
		},
	})
}

// GetMetalPrices returns gold/silver prices per gram in the requested
// currency.
func (h *Handler) GetMetalPrices(c *gin.Context) {
	currency := currencyParam(c, h.store)
	refresh := c.Query("refresh") == "true"

	prices, err := h.metals.MetalPrices(c.Request.Context(), currency, refresh)
	if err != nil {
		respondError(c, err)
		return
	}

	// Remember the pair for offline fallback on the next start.
	_ = h.store.SetLastMetalPrices(c.Request.Context(), prices)

	c.JSON(http.StatusOK, gin.H{
		"gold":        prices.GoldPerGram,
		"silver":      prices.SilverPerGram,
		"currency":    prices.Currency,
		"isCache":     prices.IsCache,
		"lastUpdated": prices.Timestamp.Format(time.RFC3339),
	})
}

// GetStockQuote returns a stock quote.
func (h *Handler) GetStockQuote(c *gin.Context) {
	h.quote(c, h.stocks)
}

// GetCryptoQuote returns a crypto quote.
func (h *Handler) GetCryptoQuote(c *gin.Context) {
	h.quote(c, h.crypto)
}

func (h *Handler) quote(c *gin.Context, provider domain.QuoteProvider) {
	symbol := c.Query("symbol")
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol is required"})
		return
	}
	currency := currencyParam(c, h.store)

	snapshot, err := provider.Quote(c.Request.Context(), symbol, currency)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"symbol":      symbol,
		"price":       snapshot.Price,
		"currency":    snapshot.Currency,
		"isCache":     snapshot.IsCache,
		"lastUpdated": snapshot.Timestamp.Format(time.RFC3339),
	})
}
