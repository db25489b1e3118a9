package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit int   // max results (0 = unlimited)
	After int64 // sequence > After
}

// MasteryRow is the stored score for a (mood, tense) slot, or for one verb
// within the slot when Lemma is set.
type MasteryRow struct {
	UserID    string
	Mood      string
	Tense     string
	Lemma     string
	Score     float64
	Attempts  int
	UpdatedAt time.Time
}

// MasteryRepo persists mastery scores.
type MasteryRepo interface {
	// Get returns the row, or nil if none exists.
	Get(ctx context.Context, userID, mood, tense, lemma string) (*MasteryRow, error)
	Upsert(ctx context.Context, row MasteryRow) error
	List(ctx context.Context, userID string) ([]MasteryRow, error)
}

// ReviewRow is the stored spaced-repetition state of one paradigm cell.
type ReviewRow struct {
	UserID          string
	Mood            string
	Tense           string
	Person          string
	Stage           int
	ConsecutiveHits int
	Graduated       bool
	NextReview      time.Time
	LastReview      time.Time
}

// ReviewRepo persists review schedules.
type ReviewRepo interface {
	// Get returns the row, or nil if none exists.
	Get(ctx context.Context, userID, mood, tense, person string) (*ReviewRow, error)
	Upsert(ctx context.Context, row ReviewRow) error
	List(ctx context.Context, userID string) ([]ReviewRow, error)
	// Due returns rows with NextReview at or before now, oldest first.
	Due(ctx context.Context, userID string, now time.Time) ([]ReviewRow, error)
}

// CacheSnapshot is a serialized eligibility cache for one pool.
type CacheSnapshot struct {
	ID        int64
	Pool      string
	Version   string
	Data      []byte
	CreatedAt time.Time
}

// SnapshotRepo manages eligibility cache snapshots.
type SnapshotRepo interface {
	// Save stores a new snapshot.
	Save(ctx context.Context, snap *CacheSnapshot) error

	// Latest returns the most recent snapshot for the pool, or nil if none exist.
	Latest(ctx context.Context, pool string) (*CacheSnapshot, error)

	// Prune deletes all but the N most recent snapshots.
	Prune(ctx context.Context, keep int) error
}

// AttemptEvent records one answered item.
type AttemptEvent struct {
	Sequence  int64
	UserID    string
	SessionID string
	Lemma     string
	Mood      string
	Tense     string
	Person    string
	Correct   bool
	LatencyMs int64
	Method    string
	Timestamp time.Time
}

// EventRepo provides append access to answer events.
type EventRepo interface {
	AppendAttempt(ctx context.Context, ev AttemptEvent) error
	// Attempts returns a user's events in sequence order.
	Attempts(ctx context.Context, userID string, opts QueryOpts) ([]AttemptEvent, error)
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
