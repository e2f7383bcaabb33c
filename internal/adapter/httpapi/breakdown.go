package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrabdussalam/zakat-calculator-sub003/internal/usecase/breakdown"
	"github.com/mrabdussalam/zakat-calculator-sub003/internal/usecase/nisab"
)

// GetBreakdown returns the combined zakatable/exempt report plus the nisab
// comparison. Degraded price data is flagged, never silently presented as
// authoritative.
func (h *Handler) GetBreakdown(c *gin.Context) {
	ctx := c.Request.Context()
	state := h.store.Snapshot()

	metalDegraded := false
	metal := breakdown.MetalPrices{}
	prices, err := h.metals.MetalPrices(ctx, state.BaseCurrency, false)
	if err != nil {
		// Metals valuation proceeds at zero prices but the response is
		// clearly marked degraded.
		metalDegraded = true
	} else {
		metal.GoldPerGram = prices.GoldPerGram
		metal.SilverPerGram = prices.SilverPerGram
		metalDegraded = prices.IsCache
	}

	report := h.calculator.Combined(ctx, state, metal)
	threshold, nisabDegraded := h.nisabSvc.Current(ctx, state.BaseCurrency, false)

	c.JSON(http.StatusOK, gin.H{
		"report":     report,
		"nisab":      threshold,
		"meetsNisab": nisab.MeetsNisab(report.Zakatable, threshold),
		"degraded": gin.H{
			"metalPrices": metalDegraded,
			"nisab":       nisabDegraded,
		},
	})
}

type convertRequest struct {
	From string `json:"from" binding:"required"`
	To   string `json:"to" binding:"required"`
}

// ConvertCurrency switches the calculator's base currency, rewriting every
// stored monetary value exactly once.
func (h *Handler) ConvertCurrency(c *gin.Context) {
	var req convertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to currencies are required"})
		return
	}

	outcome, err := h.coordinator.Convert(c.Request.Context(), req.From, req.To)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"record":    outcome.Record,
		"noOp":      outcome.NoOp,
		"converted": outcome.Converted,
		"skipped":   outcome.Skipped,
		"warnings":  outcome.Warnings,
	})
}
