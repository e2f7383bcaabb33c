package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/mrabdussalam/zakat-calculator-sub003/internal/adapter/httpapi"
	"github.com/mrabdussalam/zakat-calculator-sub003/internal/adapter/pricefeed"
	"github.com/mrabdussalam/zakat-calculator-sub003/internal/adapter/repository/sqlite"
	"github.com/mrabdussalam/zakat-calculator-sub003/internal/config"
	"github.com/mrabdussalam/zakat-calculator-sub003/internal/usecase/assetstore"
	"github.com/mrabdussalam/zakat-calculator-sub003/internal/usecase/breakdown"
	"github.com/mrabdussalam/zakat-calculator-sub003/internal/usecase/conversion"
	"github.com/mrabdussalam/zakat-calculator-sub003/internal/usecase/nisab"
	"github.com/mrabdussalam/zakat-calculator-sub003/internal/usecase/pricecache"
)

func main() {
	// Environment variables may come from a .env file in development.
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	zap.ReplaceGlobals(logger)
	defer func() { _ = logger.Sync() }()

	cfg := config.Load()

	// 1. Persistence
	db, err := sqlite.NewDB(cfg.DatabasePath)
	if err != nil {
		zap.L().Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()

	stateRepo, err := sqlite.NewStateRepository(db)
	if err != nil {
		zap.L().Fatal("Failed to initialize state repository", zap.Error(err))
	}

	// 2. Store (single mutable source of truth)
	store := assetstore.New(stateRepo)
	ctx := context.Background()
	if err := store.Hydrate(ctx); err != nil {
		zap.L().Fatal("Failed to hydrate asset store", zap.Error(err))
	}

	// 3. Price feeds and validation
	validator := pricecache.NewValidator()
	rates := pricefeed.NewRatesClient(cfg.RatesAPIURL)
	metals := pricefeed.NewMetalsClient(cfg.MetalsAPIURL, rates, validator)
	stockQuotes := pricefeed.NewStockClient(cfg.QuotesAPIURL, validator)
	cryptoQuotes := pricefeed.NewCryptoClient(cfg.QuotesAPIURL, validator)

	// 4. Services (use cases)
	evaluator := nisab.NewEvaluator(validator)
	evaluator.Seed(store.Snapshot().LastNisab)
	nisabService := nisab.NewService(evaluator, metals)
	calculator := breakdown.NewCalculator(rates)
	coordinator := conversion.NewCoordinator(store, rates, nisabService, conversion.DefaultActionWindow)

	// 5. HTTP server
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), httpapi.RequestLogger())
	httpapi.SetupRoutes(router.Group("/api"), store, calculator, nisabService, coordinator, metals, stockQuotes, cryptoQuotes)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		zap.L().Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	waitForShutdown(server)
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the
// server.
func waitForShutdown(server *http.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	zap.L().Info("Shutting down gracefully", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		zap.L().Error("Shutdown error", zap.Error(err))
	}
	zap.L().Info("HTTP server stopped")
}
