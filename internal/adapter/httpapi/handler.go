package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrabdussalam/zakat-calculator-sub003/internal/domain"
	"github.com/mrabdussalam/zakat-calculator-sub003/internal/usecase/assetstore"
	"github.com/mrabdussalam/zakat-calculator-sub003/internal/usecase/breakdown"
	"github.com/mrabdussalam/zakat-calculator-sub003/internal/usecase/conversion"
	"github.com/mrabdussalam/zakat-calculator-sub003/internal/usecase/nisab"
)

// Handler exposes the valuation engine over HTTP.
type Handler struct {
	store       *assetstore.Store
	calculator  *breakdown.Calculator
	nisabSvc    *nisab.Service
	coordinator *conversion.Coordinator
	metals      domain.MetalPriceProvider
	stocks      domain.QuoteProvider
	crypto      domain.QuoteProvider
}

// SetupRoutes registers all engine routes on the group and returns the
// handler.
func SetupRoutes(r *gin.RouterGroup,
	store *assetstore.Store,
	calculator *breakdown.Calculator,
	nisabSvc *nisab.Service,
	coordinator *conversion.Coordinator,
	metals domain.MetalPriceProvider,
	stocks domain.QuoteProvider,
	crypto domain.QuoteProvider,
) *Handler {
	h := &Handler{
		store:       store,
		calculator:  calculator,
		nisabSvc:    nisabSvc,
		coordinator: coordinator,
		metals:      metals,
		stocks:      stocks,
		crypto:      crypto,
	}

	r.GET("/nisab", h.GetNisab)

	prices := r.Group("/prices")
	{
		prices.GET("/metals", h.GetMetalPrices)
		prices.GET("/stocks", h.GetStockQuote)
		prices.GET("/crypto", h.GetCryptoQuote)
	}

	assets := r.Group("/assets")
	{
		assets.GET("", h.GetAllAssets)
		assets.GET("/:category", h.GetCategory)
		assets.PUT("/:category/fields/:field", h.SetValue)
		assets.DELETE("/:category", h.ResetCategory)

		assets.POST("/cash/foreign", h.AddForeignCash)
		assets.DELETE("/cash/foreign/:index", h.RemoveForeignCash)
		assets.POST("/stocks/active", h.AddStockHolding)
		assets.DELETE("/stocks/active/:index", h.RemoveStockHolding)
		assets.POST("/stocks/passive", h.AddPassiveFund)
		assets.DELETE("/stocks/passive/:index", h.RemovePassiveFund)
		assets.POST("/crypto/holdings", h.AddCoinHolding)
		assets.DELETE("/crypto/holdings/:index", h.RemoveCoinHolding)
	}

	r.PUT("/hawl/:category", h.SetHawl)
	r.GET("/breakdown", h.GetBreakdown)
	r.POST("/currency", h.ConvertCurrency)

	return h
}

// RequestLogger is a minimal gin middleware logging each request through
// the global zap logger.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		zap.L().Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}

// respondError maps engine errors onto HTTP statuses. Validation errors are
// the caller's fault; everything else is a server-side problem.
func respondError(c *gin.Context, err error) {
	var validation *domain.ValidationError
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":    validation.Error(),
			"category": validation.Category,
			"field":    validation.Field,
		})
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func currencyParam(c *gin.Context, store *assetstore.Store) string {
	currency := c.Query("currency")
	if currency == "" {
		currency = store.BaseCurrency()
	}
	return currency
}
