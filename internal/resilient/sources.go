package resilient

import (
	"context"
	"time"

	"github.com/abhisek/conjuga/internal/curriculum"
	"github.com/abhisek/conjuga/internal/scheduler"
)

// DueSource wraps a due-item source.
type DueSource struct {
	inner scheduler.DueSource
	g     *guard[[]scheduler.DueItem]
}

// WrapDue decorates a due-item source.
func WrapDue(inner scheduler.DueSource, cfg Config) *DueSource {
	return &DueSource{inner: inner, g: newGuard[[]scheduler.DueItem]("due", cfg)}
}

func (d *DueSource) DueItems(ctx context.Context, userID string, now time.Time) ([]scheduler.DueItem, error) {
	return d.g.run(ctx, func(ctx context.Context) ([]scheduler.DueItem, error) {
		return d.inner.DueItems(ctx, userID, now)
	})
}

// AdaptiveSource wraps a recommendation source.
type AdaptiveSource struct {
	inner scheduler.AdaptiveSource
	g     *guard[*curriculum.Recommendation]
}

// WrapAdaptive decorates a recommendation source.
func WrapAdaptive(inner scheduler.AdaptiveSource, cfg Config) *AdaptiveSource {
	return &AdaptiveSource{inner: inner, g: newGuard[*curriculum.Recommendation]("adaptive", cfg)}
}

func (a *AdaptiveSource) Recommend(ctx context.Context, req curriculum.RecommendRequest) (*curriculum.Recommendation, error) {
	return a.g.run(ctx, func(ctx context.Context) (*curriculum.Recommendation, error) {
		return a.inner.Recommend(ctx, req)
	})
}

// MasterySource wraps a mastery source.
type MasterySource struct {
	inner scheduler.MasterySource
	g     *guard[[]curriculum.MasteryRecord]
}

// WrapMastery decorates a mastery source.
func WrapMastery(inner scheduler.MasterySource, cfg Config) *MasterySource {
	return &MasterySource{inner: inner, g: newGuard[[]curriculum.MasteryRecord]("mastery", cfg)}
}

func (m *MasterySource) Mastery(ctx context.Context, userID string) ([]curriculum.MasteryRecord, error) {
	return m.g.run(ctx, func(ctx context.Context) ([]curriculum.MasteryRecord, error) {
		return m.inner.Mastery(ctx, userID)
	})
}
