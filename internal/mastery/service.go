// Package mastery turns answered items into 0..100 mastery scores per
// (mood, tense) slot and per verb, and serves them to the curriculum.
package mastery

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/conjuga/internal/curriculum"
	"github.com/abhisek/conjuga/internal/logger"
	"github.com/abhisek/conjuga/internal/store"
	"github.com/abhisek/conjuga/internal/verb"
)

// Config tunes score updates.
type Config struct {
	// Alpha is the EMA weight of the newest attempt.
	Alpha float64
	// TargetLatency is the answer time that still earns half the speed credit.
	TargetLatency time.Duration
	// MasteredThreshold is the slot score at which a slot counts as mastered.
	MasteredThreshold float64
	// MinAttempts is required before a slot can be mastered.
	MinAttempts int
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Alpha:             0.3,
		TargetLatency:     8 * time.Second,
		MasteredThreshold: 80,
		MinAttempts:       5,
	}
}

// Attempt is one answered item.
type Attempt struct {
	UserID    string
	SessionID string
	Form      verb.Form
	Correct   bool
	Latency   time.Duration
	// Method is the selection tier that produced the item.
	Method string
	At     time.Time
}

// Service records attempts and serves mastery records.
type Service struct {
	cfg    Config
	repo   store.MasteryRepo
	events store.EventRepo
	log    *logger.Logger
}

// NewService creates a mastery service. events may be nil.
func NewService(cfg Config, repo store.MasteryRepo, events store.EventRepo, log *logger.Logger) *Service {
	if cfg.Alpha <= 0 || cfg.Alpha > 1 {
		cfg.Alpha = DefaultConfig().Alpha
	}
	return &Service{cfg: cfg, repo: repo, events: events, log: logger.OrNop(log)}
}

// RecordAttempt updates the slot score and the verb score. It returns a
// StateTransition when the slot changed state, nil otherwise.
func (s *Service) RecordAttempt(ctx context.Context, a Attempt) (*StateTransition, error) {
	if a.At.IsZero() {
		a.At = time.Now().UTC()
	}
	quality := AttemptQuality(a.Correct, a.Latency.Milliseconds(), s.cfg.TargetLatency.Milliseconds())
	mood, tense := string(a.Form.Mood), string(a.Form.Tense)

	slot, err := s.update(ctx, a, mood, tense, "", quality)
	if err != nil {
		return nil, err
	}
	if _, err := s.update(ctx, a, mood, tense, a.Form.Lemma, quality); err != nil {
		return nil, err
	}

	if s.events != nil {
		err := s.events.AppendAttempt(ctx, store.AttemptEvent{
			UserID:    a.UserID,
			SessionID: a.SessionID,
			Lemma:     a.Form.Lemma,
			Mood:      mood,
			Tense:     tense,
			Person:    string(a.Form.Person),
			Correct:   a.Correct,
			LatencyMs: a.Latency.Milliseconds(),
			Method:    a.Method,
			Timestamp: a.At,
		})
		if err != nil {
			s.log.Warn("attempt event not recorded", "error", err)
		}
	}

	t := s.transition(slot.before, slot.after, a.Form.Key().String())
	if t != nil {
		s.log.Info("mastery state changed", "user", a.UserID, "key", t.Key, "from", t.From, "to", t.To)
	}
	return t, nil
}

type change struct {
	before, after store.MasteryRow
}

func (s *Service) update(ctx context.Context, a Attempt, mood, tense, lemma string, quality float64) (change, error) {
	row, err := s.repo.Get(ctx, a.UserID, mood, tense, lemma)
	if err != nil {
		return change{}, fmt.Errorf("load mastery: %w", err)
	}
	before := store.MasteryRow{UserID: a.UserID, Mood: mood, Tense: tense, Lemma: lemma}
	if row != nil {
		before = *row
	}
	after := before
	after.Score = ema(before.Score, before.Attempts, quality, s.cfg.Alpha)
	after.Attempts++
	after.UpdatedAt = a.At
	if err := s.repo.Upsert(ctx, after); err != nil {
		return change{}, fmt.Errorf("save mastery: %w", err)
	}
	return change{before: before, after: after}, nil
}

// State classifies a stored slot row.
func (s *Service) State(row store.MasteryRow) MasteryState {
	switch {
	case row.Attempts == 0:
		return StateNew
	case row.Attempts >= s.cfg.MinAttempts && row.Score >= s.cfg.MasteredThreshold:
		return StateMastered
	default:
		return StateLearning
	}
}

func (s *Service) transition(before, after store.MasteryRow, key string) *StateTransition {
	from, to := s.State(before), s.State(after)
	if from == to {
		return nil
	}
	t := &StateTransition{Key: key, From: from, To: to}
	switch {
	case from == StateNew:
		t.Trigger = "first-attempt"
	case to == StateMastered:
		t.Trigger = "threshold-reached"
	default:
		t.Trigger = "regressed"
	}
	return t
}

// Mastery returns the stored scores as curriculum records: one tense-wide
// record per slot plus one per verb.
func (s *Service) Mastery(ctx context.Context, userID string) ([]curriculum.MasteryRecord, error) {
	rows, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list mastery: %w", err)
	}
	out := make([]curriculum.MasteryRecord, len(rows))
	for i, row := range rows {
		out[i] = curriculum.MasteryRecord{
			Mood:   verb.Mood(row.Mood),
			Tense:  verb.Tense(row.Tense),
			VerbID: row.Lemma,
			Score:  row.Score,
		}
	}
	return out, nil
}

// SlotStates returns the state of every tracked slot of a user, keyed by
// "mood|tense".
func (s *Service) SlotStates(ctx context.Context, userID string) (map[string]MasteryState, error) {
	rows, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list mastery: %w", err)
	}
	out := make(map[string]MasteryState)
	for _, row := range rows {
		if row.Lemma == "" {
			out[verb.K(verb.Mood(row.Mood), verb.Tense(row.Tense)).String()] = s.State(row)
		}
	}
	return out, nil
}
