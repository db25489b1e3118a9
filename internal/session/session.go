// Package session drives one practice session: it asks the scheduler for
// items, chains the previous result, and feeds answers back into spaced
// repetition and mastery tracking.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/conjuga/internal/logger"
	"github.com/abhisek/conjuga/internal/mastery"
	"github.com/abhisek/conjuga/internal/scheduler"
	"github.com/abhisek/conjuga/internal/settings"
	"github.com/abhisek/conjuga/internal/spacedrep"
	"github.com/abhisek/conjuga/internal/verb"
)

// Picker selects items. *scheduler.Scheduler implements it.
type Picker interface {
	Next(ctx context.Context, req scheduler.Request) (*scheduler.Result, error)
	Commit(res *scheduler.Result)
}

// ReviewRecorder schedules the next review of a cell.
type ReviewRecorder interface {
	RecordReview(ctx context.Context, userID string, cell spacedrep.Cell, correct bool, now time.Time) (*spacedrep.ReviewState, error)
}

// AttemptRecorder updates mastery scores.
type AttemptRecorder interface {
	RecordAttempt(ctx context.Context, a mastery.Attempt) (*mastery.StateTransition, error)
}

var (
	// ErrNoItem is returned by Answer when there is nothing to answer.
	ErrNoItem = errors.New("no item to answer")
	// ErrAnswerCount is returned when the results do not match the forms shown.
	ErrAnswerCount = errors.New("answer count does not match item")
)

// Options configure a session. Reviews and Mastery are optional.
type Options struct {
	UserID   string
	Settings settings.Settings
	Picker   Picker
	Reviews  ReviewRecorder
	Mastery  AttemptRecorder
	Logger   *logger.Logger
	// Now is the session clock; nil uses time.Now.
	Now func() time.Time
}

// Session is a single learner sitting. Not safe for concurrent use.
type Session struct {
	id       string
	userID   string
	settings settings.Settings
	picker   Picker
	reviews  ReviewRecorder
	mastery  AttemptRecorder
	log      *logger.Logger
	now      func() time.Time

	current   *scheduler.Result
	shownAt   time.Time
	startTime time.Time
	stats     *Stats
}

// New starts a session. The picker should be fresh or reset; its memory
// carries over otherwise.
func New(opts Options) (*Session, error) {
	if opts.Picker == nil {
		return nil, errors.New("session: picker is required")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	s := &Session{
		id:       uuid.NewString(),
		userID:   opts.UserID,
		settings: opts.Settings,
		picker:   opts.Picker,
		reviews:  opts.Reviews,
		mastery:  opts.Mastery,
		now:      now,
		stats:    newStats(),
	}
	s.log = logger.OrNop(opts.Logger).With("session", s.id)
	s.startTime = now()
	return s, nil
}

// ID returns the session identifier recorded with every attempt.
func (s *Session) ID() string {
	return s.id
}

// Current returns the item being shown, if any.
func (s *Session) Current() *scheduler.Result {
	return s.current
}

// Next presents the next item. The previous item is passed to the scheduler
// for exclusion and the new one is committed to session memory. A sentinel
// or rejected result leaves nothing to answer; a busy scheduler leaves the
// current item in place.
func (s *Session) Next(ctx context.Context) (*scheduler.Result, error) {
	res, err := s.picker.Next(ctx, scheduler.Request{
		UserID:   s.userID,
		Settings: s.settings,
		Previous: s.current,
		Now:      s.now(),
	})
	if err != nil {
		if res != nil && res.Rejected {
			s.current = nil
		}
		return res, err
	}
	s.picker.Commit(res)
	s.stats.served(res)
	if res.IsSentinel {
		s.current = nil
		return res, nil
	}
	s.current = res
	s.shownAt = s.now()
	return res, nil
}

// Answer grades the current item with one result per form. A single result
// grades every form of a double item. The latency is measured from when the
// item was shown.
func (s *Session) Answer(ctx context.Context, results ...bool) ([]*mastery.StateTransition, error) {
	res := s.current
	if res == nil {
		return nil, ErrNoItem
	}
	forms := res.Forms()
	if len(results) != 1 && len(results) != len(forms) {
		return nil, fmt.Errorf("%w: %d results for %d forms", ErrAnswerCount, len(results), len(forms))
	}
	at := s.now()
	latency := at.Sub(s.shownAt)

	var transitions []*mastery.StateTransition
	for i, f := range forms {
		correct := results[0]
		if len(results) > 1 {
			correct = results[i]
		}
		s.stats.answered(f, correct)
		if err := s.record(ctx, res, f, correct, latency, at); err != nil {
			return transitions, err
		}
		if s.mastery == nil {
			continue
		}
		tr, err := s.mastery.RecordAttempt(ctx, mastery.Attempt{
			UserID:    s.userID,
			SessionID: s.id,
			Form:      f,
			Correct:   correct,
			Latency:   latency,
			Method:    string(res.Method),
			At:        at,
		})
		if err != nil {
			return transitions, fmt.Errorf("record attempt: %w", err)
		}
		if tr != nil {
			s.log.Info("mastery transition", "key", tr.Key, "from", tr.From, "to", tr.To, "trigger", tr.Trigger)
			transitions = append(transitions, tr)
		}
	}
	return transitions, nil
}

func (s *Session) record(ctx context.Context, res *scheduler.Result, f verb.Form, correct bool, latency time.Duration, at time.Time) error {
	if s.reviews == nil {
		return nil
	}
	if _, err := s.reviews.RecordReview(ctx, s.userID, spacedrep.CellOf(f), correct, at); err != nil {
		return fmt.Errorf("record review: %w", err)
	}
	s.log.Debug("answer recorded", "form", f.ID(), "correct", correct, "latency", latency, "method", res.Method)
	return nil
}

// Summary reports the session so far.
func (s *Session) Summary() *Summary {
	return s.stats.summary(s.now().Sub(s.startTime))
}
