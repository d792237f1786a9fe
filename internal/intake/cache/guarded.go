package cache

import (
	"context"
	"log/slog"

	"hydration/internal/intake/models"
	id "hydration/pkg/domain"
	"hydration/pkg/platform/circuit"
)

// Backend is the cache being guarded.
type Backend interface {
	Get(ctx context.Context, userID id.UserID, date string) (*models.DailySummary, bool, error)
	Set(ctx context.Context, userID id.UserID, summary *models.DailySummary) error
	Invalidate(ctx context.Context, userID id.UserID, date string) error
}

// GuardedCache stops reading from and writing to a failing backend until a
// probe succeeds. Invalidations are always attempted so a recovered backend
// never serves a summary that was changed during the outage window.
type GuardedCache struct {
	backend Backend
	breaker *circuit.Breaker
	logger  *slog.Logger
}

func NewGuardedCache(backend Backend, breaker *circuit.Breaker, logger *slog.Logger) *GuardedCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &GuardedCache{backend: backend, breaker: breaker, logger: logger}
}

func (g *GuardedCache) Get(ctx context.Context, userID id.UserID, date string) (*models.DailySummary, bool, error) {
	if !g.breaker.Allow() {
		return nil, false, nil
	}
	s, ok, err := g.backend.Get(ctx, userID, date)
	g.record(ctx, err)
	return s, ok, err
}

func (g *GuardedCache) Set(ctx context.Context, userID id.UserID, summary *models.DailySummary) error {
	if !g.breaker.Allow() {
		return nil
	}
	err := g.backend.Set(ctx, userID, summary)
	g.record(ctx, err)
	return err
}

func (g *GuardedCache) Invalidate(ctx context.Context, userID id.UserID, date string) error {
	err := g.backend.Invalidate(ctx, userID, date)
	g.record(ctx, err)
	return err
}

func (g *GuardedCache) record(ctx context.Context, err error) {
	if err == nil {
		if _, change := g.breaker.RecordSuccess(); change.Closed {
			g.logger.InfoContext(ctx, "summary cache recovered", "breaker", g.breaker.Name())
		}
		return
	}
	if _, change := g.breaker.RecordFailure(); change.Opened {
		g.logger.WarnContext(ctx, "summary cache disabled after repeated failures",
			"breaker", g.breaker.Name(),
			"error", err,
		)
	}
}
