package pricefeed

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mrabdussalam/zakat-calculator-sub003/internal/domain"
)

// Source is one entry in an ordered fallback chain: a primary API, a
// secondary API, or a hardcoded last resort.
type Source[T any] struct {
	Name  string
	Fetch func(ctx context.Context) (T, error)
}

// Result tags a fetched value with where it came from. Degraded is true
// whenever anything but the first source answered.
type Result[T any] struct {
	Value   T
	Source  string
	Degraded bool
}

// FetchWithFallback tries each source in order and returns the first
// success. Every feed shares this one chain instead of re-implementing
// "try API A, then B, then constant" at each call site. If every source
// fails the error wraps ErrUpstreamUnavailable.
func FetchWithFallback[T any](ctx context.Context, sources []Source[T]) (Result[T], error) {
	var errs []error
	for i, src := range sources {
		value, err := src.Fetch(ctx)
		if err != nil {
			zap.L().Warn("price source failed",
				zap.String("source", src.Name), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", src.Name, err))
			continue
		}
		return Result[T]{Value: value, Source: src.Name, Degraded: i > 0}, nil
	}
	return Result[T]{}, fmt.Errorf("all %d sources failed (%w): %w",
		len(sources), domain.ErrUpstreamUnavailable, errors.Join(errs...))
}
