package scheduler

import (
	"context"
	"time"

	"github.com/abhisek/conjuga/internal/curriculum"
	"github.com/abhisek/conjuga/internal/settings"
	"github.com/abhisek/conjuga/internal/verb"
)

// ContentSource provides the form pool and direct scan access to every
// paradigm for fallbacks.
type ContentSource interface {
	// Pool returns the forms for a region. Implementations may return the
	// full pool and leave dialect filtering to the scheduler.
	Pool(ctx context.Context, region settings.Region) (*verb.Pool, error)
	// Scan calls fn for every known form until fn returns false.
	Scan(ctx context.Context, fn func(verb.Form) bool) error
}

// DueItem is a practice unit scheduled for review.
type DueItem struct {
	Mood    verb.Mood
	Tense   verb.Tense
	Person  verb.Person
	NextDue time.Time
	ItemID  string
}

// Key returns the paradigm slot of the due item.
func (d DueItem) Key() verb.Key {
	return verb.Key{Mood: d.Mood, Tense: d.Tense}
}

// DueSource reports due items for a user.
type DueSource interface {
	DueItems(ctx context.Context, userID string, now time.Time) ([]DueItem, error)
}

// AdaptiveSource recommends a curriculum target. A nil recommendation means
// no opinion.
type AdaptiveSource interface {
	Recommend(ctx context.Context, req curriculum.RecommendRequest) (*curriculum.Recommendation, error)
}

// MasterySource returns a user's mastery records.
type MasterySource interface {
	Mastery(ctx context.Context, userID string) ([]curriculum.MasteryRecord, error)
}
