package pricefeed

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrabdussalam/zakat-calculator-sub003/internal/domain"
)

func TestFetchWithFallback_FirstSourceWins(t *testing.T) {
	secondCalled := false
	sources := []Source[int]{
		{Name: "primary", Fetch: func(ctx context.Context) (int, error) { return 42, nil }},
		{Name: "secondary", Fetch: func(ctx context.Context) (int, error) {
			secondCalled = true
			return 0, nil
		}},
	}

	result, err := FetchWithFallback(context.Background(), sources)
	require.NoError(t, err)
	assert.Equal(t, 42, result.Value)
	assert.Equal(t, "primary", result.Source)
	assert.False(t, result.Degraded)
	assert.False(t, secondCalled, "a later source must not be touched after a success")
}

func TestFetchWithFallback_SkipsToNextOnError(t *testing.T) {
	sources := []Source[int]{
		{Name: "primary", Fetch: func(ctx context.Context) (int, error) {
			return 0, errors.New("timeout")
		}},
		{Name: "last-good", Fetch: func(ctx context.Context) (int, error) { return 7, nil }},
	}

	result, err := FetchWithFallback(context.Background(), sources)
	require.NoError(t, err)
	assert.Equal(t, 7, result.Value)
	assert.Equal(t, "last-good", result.Source)
	assert.True(t, result.Degraded, "anything past the first source is a degraded answer")
}

func TestFetchWithFallback_AllSourcesFail(t *testing.T) {
	boom := errors.New("boom")
	sources := []Source[int]{
		{Name: "a", Fetch: func(ctx context.Context) (int, error) { return 0, boom }},
		{Name: "b", Fetch: func(ctx context.Context) (int, error) { return 0, boom }},
	}

	_, err := FetchWithFallback(context.Background(), sources)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	assert.ErrorIs(t, err, boom, "individual source errors stay inspectable")
}
