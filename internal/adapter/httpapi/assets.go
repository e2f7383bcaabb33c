package httpapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/mrabdussalam/zakat-calculator-sub003/internal/domain"
)

// GetAllAssets returns the full state snapshot.
func (h *Handler) GetAllAssets(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Snapshot())
}

// GetCategory returns one category's record.
func (h *Handler) GetCategory(c *gin.Context) {
	category := domain.AssetCategory(c.Param("category"))
	if !domain.ValidCategory(category) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown category " + string(category)})
		return
	}

	snapshot := h.store.Snapshot()
	var record any
	switch category {
	case domain.CategoryCash:
		record = snapshot.Cash
	case domain.CategoryPreciousMetals:
		record = snapshot.Metals
	case domain.CategoryStocks:
		record = snapshot.Stocks
	case domain.CategoryCrypto:
		record = snapshot.Crypto
	case domain.CategoryRealEstate:
		record = snapshot.RealEstate
	case domain.CategoryRetirement:
		record = snapshot.Retirement
	case domain.CategoryDebt:
		record = snapshot.Debt
	}

	c.JSON(http.StatusOK, gin.H{
		"category":    category,
		"record":      record,
		"hawl":        snapshot.Hawl[category],
		"reset_epoch": snapshot.ResetEpochs[category],
	})
}

type setValueRequest struct {
	// Value accepts a JSON number or numeric string; NaN and infinities do
	// not survive decimal decoding.
	Value decimal.Decimal `json:"value"`
}

// SetValue writes one numeric sub-field.
func (h *Handler) SetValue(c *gin.Context) {
	category := domain.AssetCategory(c.Param("category"))
	field := c.Param("field")

	var req setValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "value must be a finite number"})
		return
	}

	if err := h.store.SetValue(c.Request.Context(), category, field, req.Value); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category, "field": field, "value": req.Value})
}

// ResetCategory zeroes a category. The caller states its intent explicitly;
// a reset is never inferred from values.
func (h *Handler) ResetCategory(c *gin.Context) {
	category := domain.AssetCategory(c.Param("category"))
	if err := h.store.ResetCategory(c.Request.Context(), category); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"category":    category,
		"reset_epoch": h.store.ResetEpoch(category),
	})
}

type setHawlRequest struct {
	Satisfied *bool `json:"satisfied" binding:"required"`
}

// SetHawl records the holding-period flag for a category.
func (h *Handler) SetHawl(c *gin.Context) {
	category := domain.AssetCategory(c.Param("category"))

	var req setHawlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "satisfied must be a boolean"})
		return
	}

	if err := h.store.SetHawl(c.Request.Context(), category, *req.Satisfied); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category, "hawl": *req.Satisfied})
}

// AddForeignCash appends a foreign-currency cash entry.
func (h *Handler) AddForeignCash(c *gin.Context) {
	var entry domain.ForeignCashEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid foreign cash entry"})
		return
	}
	if err := h.store.AddForeignCash(c.Request.Context(), entry); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// RemoveForeignCash deletes a foreign cash entry by index.
func (h *Handler) RemoveForeignCash(c *gin.Context) {
	h.removeByIndex(c, h.store.RemoveForeignCash)
}

// AddStockHolding appends an active-trading position.
func (h *Handler) AddStockHolding(c *gin.Context) {
	var holding domain.StockHolding
	if err := c.ShouldBindJSON(&holding); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid stock holding"})
		return
	}
	if err := h.store.AddStockHolding(c.Request.Context(), holding); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, holding)
}

// RemoveStockHolding deletes an active holding by index.
func (h *Handler) RemoveStockHolding(c *gin.Context) {
	h.removeByIndex(c, h.store.RemoveStockHolding)
}

// AddPassiveFund appends a passive/fund position.
func (h *Handler) AddPassiveFund(c *gin.Context) {
	var fund domain.PassiveFund
	if err := c.ShouldBindJSON(&fund); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid passive fund"})
		return
	}
	if err := h.store.AddPassiveFund(c.Request.Context(), fund); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, fund)
}

// RemovePassiveFund deletes a passive fund by index.
func (h *Handler) RemovePassiveFund(c *gin.Context) {
	h.removeByIndex(c, h.store.RemovePassiveFund)
}

// AddCoinHolding appends a crypto position.
func (h *Handler) AddCoinHolding(c *gin.Context) {
	var holding domain.CoinHolding
	if err := c.ShouldBindJSON(&holding); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid coin holding"})
		return
	}
	if err := h.store.AddCoinHolding(c.Request.Context(), holding); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, holding)
}

// RemoveCoinHolding deletes a coin holding by index.
func (h *Handler) RemoveCoinHolding(c *gin.Context) {
	h.removeByIndex(c, h.store.RemoveCoinHolding)
}

func (h *Handler) removeByIndex(c *gin.Context, remove func(ctx context.Context, index int) error) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "index must be an integer"})
		return
	}
	if err := remove(c.Request.Context(), index); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": index})
}
