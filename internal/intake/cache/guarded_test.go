package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hydration/internal/intake/models"
	"hydration/internal/platform/logger"
	id "hydration/pkg/domain"
	"hydration/pkg/platform/circuit"
)

type flakyBackend struct {
	err         error
	gets        int
	invalidates int
}

func (f *flakyBackend) Get(context.Context, id.UserID, string) (*models.DailySummary, bool, error) {
	f.gets++
	if f.err != nil {
		return nil, false, f.err
	}
	return &models.DailySummary{Date: "2024-06-15"}, true, nil
}

func (f *flakyBackend) Set(context.Context, id.UserID, *models.DailySummary) error { return f.err }

func (f *flakyBackend) Invalidate(context.Context, id.UserID, string) error {
	f.invalidates++
	return f.err
}

func TestGuardedCacheSkipsBackendWhileOpen(t *testing.T) {
	backend := &flakyBackend{err: errors.New("connection refused")}
	breaker := circuit.New("summary-cache", circuit.WithFailureThreshold(2))
	g := NewGuardedCache(backend, breaker, logger.Discard())
	ctx := context.Background()
	userID := id.NewUserID()

	for range 2 {
		_, _, err := g.Get(ctx, userID, "2024-06-15")
		require.Error(t, err)
	}
	require.True(t, breaker.IsOpen())

	_, ok, err := g.Get(ctx, userID, "2024-06-15")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 2, backend.gets)

	_ = g.Invalidate(ctx, userID, "2024-06-15")
	assert.Equal(t, 1, backend.invalidates)

	backend.err = nil
	require.NoError(t, g.Invalidate(ctx, userID, "2024-06-15"))
	assert.False(t, breaker.IsOpen())

	s, ok, err := g.Get(ctx, userID, "2024-06-15")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2024-06-15", s.Date)
}
