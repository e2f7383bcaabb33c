package nisab

import (
	"context"

	"go.uber.org/zap"

	"github.com/mrabdussalam/zakat-calculator-sub003/internal/domain"
)

// Service composes the metal price feed with the evaluator. Current never
// fails: any upstream problem degrades to the last good threshold or the
// static default, so callers can always render a floor.
type Service struct {
	evaluator *Evaluator
	metals    domain.MetalPriceProvider
}

// NewService creates the nisab service.
func NewService(evaluator *Evaluator, metals domain.MetalPriceProvider) *Service {
	return &Service{evaluator: evaluator, metals: metals}
}

// Current returns the threshold in the requested currency. degraded is true
// when the result came from the fallback chain rather than a fresh quote.
func (s *Service) Current(ctx context.Context, currency string, refresh bool) (threshold *domain.NisabThreshold, degraded bool) {
	prices, err := s.metals.MetalPrices(ctx, currency, refresh)
	if err != nil {
		zap.L().Warn("metal price fetch failed, falling back",
			zap.String("currency", currency), zap.Error(err))
		t, _ := s.evaluator.Fallback()
		return t, true
	}

	t, err := s.evaluator.Evaluate(prices.Gold(), prices.Silver())
	if err != nil {
		zap.L().Warn("nisab evaluation rejected snapshots, falling back", zap.Error(err))
		t, _ = s.evaluator.Fallback()
		return t, true
	}
	return t, prices.IsCache
}

// Refresh re-prices the threshold from freshly fetched quotes in the given
// currency. Unlike Current it surfaces failure instead of degrading, so the
// conversion coordinator can report a warning rather than silently caching
// a fallback threshold.
func (s *Service) Refresh(ctx context.Context, currency string) (*domain.NisabThreshold, error) {
	prices, err := s.metals.MetalPrices(ctx, currency, true)
	if err != nil {
		return nil, err
	}
	return s.evaluator.Evaluate(prices.Gold(), prices.Silver())
}
